package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gladerunner/prefabs"
	"github.com/milk9111/gladerunner/scene"
)

func main() {
	debug := flag.Bool("debug", false, "start with path debug drawing enabled")
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional)")
	watch := flag.Bool("watch", true, "reload levels and scripts when they change on disk")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	spec, err := prefabs.LoadNavigationSpec()
	if err != nil {
		log.Fatal(err)
	}

	input := newKeyboardInput()
	sc, err := scene.New(context.Background(), scene.Options{
		Spec:   spec,
		Level:  *levelName,
		Input:  input,
		Logger: logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	var watcher *prefabs.Watcher
	if *watch {
		watcher, err = prefabs.NewWatcher(logger, "levels", "prefabs", "prefabs/scripts")
		if err != nil {
			logger.Warn("hot reload disabled", "err", err)
			watcher = nil
		}
	}

	game := NewGame(sc, watcher, input, *debug, logger)
	defer game.Close()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(game.Size())
	ebiten.SetWindowTitle("gladerunner")
	ebiten.SetTPS(tickRate(spec))

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}

func tickRate(spec prefabs.NavigationSpec) int {
	if spec.TickRate <= 0 {
		return 60
	}
	return spec.TickRate
}
