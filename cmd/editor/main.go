package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gladerunner/levels"
)

func main() {
	levelName := flag.String("level", "glade", "Level name to load from levels/ (basename or filename, .json optional)")
	newSize := flag.String("new", "", "Start an empty level of the given size in tiles, e.g. 24x16")
	flag.Parse()

	log.Println("Editor starting...")

	var (
		lvl *levels.Level
		err error
	)
	if *newSize != "" {
		cols, rows, perr := parseDimensions(*newSize)
		if perr != nil {
			log.Fatalf("Invalid -new value: %v", perr)
		}
		lvl, err = levels.New(cols, rows, levels.DefaultTileSize)
	} else {
		lvl, err = levels.Load(*levelName)
	}
	if err != nil {
		log.Fatalf("Failed to load level %s: %v", *levelName, err)
	}

	editor := NewEditor(lvl, levels.DiskPath(*levelName))
	w, h := editor.size()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Navigation Level Editor")
	if err := ebiten.RunGame(editor); err != nil {
		log.Fatal(err)
	}
}

func parseDimensions(s string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%q is not WIDTHxHEIGHT", s)
	}
	cols, err := strconv.Atoi(ws)
	if err != nil {
		return 0, 0, err
	}
	rows, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, err
	}
	return cols, rows, nil
}
