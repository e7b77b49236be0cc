package prefabs

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Config specs and behaviour scripts ship inside the binary. A copy under
// prefabs/ in the working directory wins, so edits apply without a rebuild.
var (
	//go:embed *.yaml
	specFS embed.FS

	//go:embed scripts/*.tengo
	scriptFS embed.FS
)

const (
	diskRoot   = "prefabs"
	scriptDir  = "scripts"
	scriptExt  = ".tengo"
	defaultExt = ".yaml"
)

// Load reads a config spec such as "navigation.yaml".
func Load(name string) ([]byte, error) {
	return readOverride(specFS, normalize(name, "", defaultExt))
}

// LoadScript reads a behaviour script by bare name ("chase") or by any
// path ending in scripts/<name>.tengo.
func LoadScript(name string) ([]byte, error) {
	return readOverride(scriptFS, normalize(name, scriptDir, scriptExt))
}

func readOverride(embedded fs.ReadFileFS, rel string) ([]byte, error) {
	if rel == "" {
		return nil, fs.ErrNotExist
	}
	if data, err := os.ReadFile(filepath.Join(diskRoot, filepath.FromSlash(rel))); err == nil {
		return data, nil
	}
	return embedded.ReadFile(rel)
}

// normalize maps a user-supplied name onto its slash path relative to the
// prefabs root. Leading prefabs/ and dir/ segments are optional; ext is
// appended when the name has no extension.
func normalize(name, dir, ext string) string {
	s := strings.TrimSpace(filepath.ToSlash(name))
	if s == "" {
		return ""
	}
	s = strings.TrimPrefix(s, diskRoot+"/")
	if dir != "" {
		s = strings.TrimPrefix(s, dir+"/")
	}
	if path.Ext(s) == "" {
		s += ext
	}
	if dir != "" {
		s = path.Join(dir, s)
	}
	return s
}
