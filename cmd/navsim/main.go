// Command navsim runs the navigation scene without a window at a fixed tick
// rate and logs where every agent ended up.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/milk9111/gladerunner/nav"
	"github.com/milk9111/gladerunner/prefabs"
	"github.com/milk9111/gladerunner/scene"
)

func main() {
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional)")
	ticks := flag.Int("ticks", 1200, "number of simulation ticks to run")
	route := flag.String("route", "R:90,D:90,L:90,U:90", "looping player route, DIR:TICKS legs with DIR one of U D L R S")
	realtime := flag.Bool("realtime", false, "pace ticks at the configured tick rate instead of running flat out")
	goal := flag.String("goal", "", "send every agent to this tile (\"x,y\") on the first tick")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	input, err := parseRoute(*route)
	if err != nil {
		log.Fatal(err)
	}
	spec, err := prefabs.LoadNavigationSpec()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := scene.New(ctx, scene.Options{
		Spec:   spec,
		Level:  *levelName,
		Input:  input,
		Logger: logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer sc.Dispose()

	if *goal != "" {
		x, y, err := nav.ParseNodeID(*goal)
		if err != nil {
			log.Fatalf("invalid -goal: %v", err)
		}
		if err := sc.RequestAll(nav.Tile{X: x, Y: y}); err != nil {
			logger.Warn("goal request failed", "err", err)
		}
	}

	start := time.Now()
	run(ctx, sc, *ticks, *realtime, spec.TickDuration())
	summarize(logger, sc, time.Since(start))
}

func run(ctx context.Context, sc *scene.Scene, ticks int, realtime bool, step time.Duration) {
	var tick <-chan time.Time
	if realtime {
		t := time.NewTicker(step)
		defer t.Stop()
		tick = t.C
	}
	for i := 0; i < ticks; i++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return
		}
		sc.Step()
	}
}

func summarize(logger *slog.Logger, sc *scene.Scene, elapsed time.Duration) {
	pool := sc.Pool()
	logger.Info("simulation finished",
		"ticks", sc.Ticks(),
		"elapsed", elapsed.Round(time.Millisecond),
		"level", sc.Level().Name,
		"workers", pool.Size(),
		"in_flight", pool.InFlight(),
	)
	if pos, ok := sc.Position(sc.Player); ok {
		logger.Info("player", "x", pos.X, "y", pos.Y)
	}
	positions := sc.AgentPositions()
	for i, agent := range sc.Agents() {
		attrs := []any{
			"name", agent.Name,
			"path_nodes", agent.Controller.PathLength(),
			"pending", agent.Controller.PathPending(),
		}
		if i < len(positions) {
			attrs = append(attrs, "x", positions[i].X, "y", positions[i].Y)
		}
		logger.Info("agent", attrs...)
	}
}
