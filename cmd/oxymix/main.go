// The oxymix executable loads a skinned model, drives a crowd of actors
// through its clips with crossfades taken from a YAML mix file, and logs what
// the animation states do.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-mix/config"
	"github.com/Carmen-Shannon/oxy-mix/engine"
	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/game_object"
	"github.com/Carmen-Shannon/oxy-mix/engine/loader"
	"github.com/Carmen-Shannon/oxy-mix/engine/scene"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

var errNoClips = errors.New("model has no animations")

type options struct {
	model    string
	mixes    string
	watch    bool
	actors   int
	switchDt time.Duration
	duration time.Duration
	tick     float64
	profile  bool
	level    slog.Level
}

func main() { os.Exit(Main()) }

func Main() int {
	opts, err := parseOptions(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}

	var level slog.LevelVar
	level.Set(opts.level)
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.LogAttrs(ctx, slog.LevelError, "exit", slog.Any("err", err))
		return internalError
	}
	return success
}

func parseOptions(fs *flag.FlagSet, args []string) (options, error) {
	var opts options
	fs.StringVar(&opts.model, "model", "", "glTF or GLB model with a skin and animations (required)")
	fs.StringVar(&opts.mixes, "mixes", "", "YAML file of mix durations")
	fs.BoolVar(&opts.watch, "watch", false, "reload the mix file when it changes")
	fs.IntVar(&opts.actors, "actors", 1, "number of actors sharing the mix table")
	fs.DurationVar(&opts.switchDt, "switch", 2*time.Second, "interval between clip switches per actor")
	fs.DurationVar(&opts.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	fs.Float64Var(&opts.tick, "tick", 60, "ticks per second")
	fs.BoolVar(&opts.profile, "profile", false, "log tick rate and memory statistics")
	logging := fs.String("log-level", "info", "logging level (debug, info, warn or error)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if err := opts.level.UnmarshalText([]byte(*logging)); err != nil {
		return opts, fmt.Errorf("invalid -log-level: %w", err)
	}
	switch {
	case opts.model == "":
		return opts, errors.New("-model is required")
	case opts.actors < 1:
		return opts, fmt.Errorf("-actors must be at least 1, got %d", opts.actors)
	case opts.watch && opts.mixes == "":
		return opts, errors.New("-watch requires -mixes")
	case opts.tick <= 0:
		return opts, fmt.Errorf("-tick must be positive, got %v", opts.tick)
	}
	return opts, nil
}

func run(ctx context.Context, opts options, log *slog.Logger) error {
	ldr := loader.NewLoader(loader.BackendTypeGLTF, loader.WithLogger(log))
	m, err := ldr.Load(opts.model)
	if err != nil {
		return err
	}
	clips := m.AnimationNames()
	if len(clips) == 0 {
		return fmt.Errorf("%s: %w", opts.model, errNoClips)
	}

	table := animator.NewMixTable(animator.WithMixTableLogger(log))
	lookup := config.ClipLookup(m)
	if opts.mixes != "" {
		spec, err := config.LoadMixSpec(opts.mixes)
		if err != nil {
			return err
		}
		if err := spec.Apply(table, lookup); err != nil {
			return err
		}
		log.Info("mixes loaded", "path", opts.mixes, "entries", table.Len())
	}

	if opts.watch {
		w, err := config.NewWatcher(filepath.Dir(opts.mixes))
		if err != nil {
			return fmt.Errorf("watch %s: %w", opts.mixes, err)
		}
		defer w.Close()
		go config.Reload(ctx, w, opts.mixes, table, lookup, log)
	}

	sc := scene.NewScene(m.Name(), scene.WithMixTable(table), scene.WithLogger(log))
	defer sc.Release()

	actors := make([]game_object.GameObject, 0, opts.actors)
	for i := range opts.actors {
		actors = append(actors, sc.Spawn(m,
			game_object.WithName(fmt.Sprintf("actor-%d", i)),
			game_object.WithBindPoseReset(true),
		))
	}
	dir := newDirector(log, clips, opts.switchDt, actors)
	if err := dir.start(); err != nil {
		return err
	}

	eng := engine.NewEngine(
		engine.WithTickRate(opts.tick),
		engine.WithProfiling(opts.profile),
		engine.WithLogger(log),
		engine.WithScene(0, sc),
		engine.WithTickCallback(dir.tick),
	)

	go func() {
		var timeout <-chan time.Time
		if opts.duration > 0 {
			timer := time.NewTimer(opts.duration)
			defer timer.Stop()
			timeout = timer.C
		}
		select {
		case <-ctx.Done():
		case <-timeout:
		}
		eng.Quit()
	}()

	log.Info("start", "model", m.Name(), "clips", clips, "actors", opts.actors)
	eng.Run()
	log.Info("done", "switches", dir.switches)
	return nil
}
