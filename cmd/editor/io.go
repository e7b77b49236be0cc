package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/milk9111/gladerunner/levels"
	"golang.design/x/clipboard"
)

// encode marshals the level and checks that it loads back cleanly, so a
// spawn painted over by a wall is reported before anything is written.
func (e *Editor) encode() ([]byte, error) {
	data, err := e.level.Marshal()
	if err != nil {
		return nil, err
	}
	if _, err := levels.Parse(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (e *Editor) Save() error {
	data, err := e.encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(e.filename), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(e.filename, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", e.filename, err)
	}
	e.dirty = false
	return nil
}

// CopyJSON puts the encoded level on the system clipboard.
func (e *Editor) CopyJSON() error {
	data, err := e.encode()
	if err != nil {
		return err
	}
	if !e.clipboardReady {
		if err := clipboard.Init(); err != nil {
			return fmt.Errorf("clipboard unavailable: %w", err)
		}
		e.clipboardReady = true
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}
