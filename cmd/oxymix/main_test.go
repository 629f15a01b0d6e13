package main

import (
	"flag"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/game_object"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
	"github.com/google/go-cmp/cmp"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			args: []string{"-model", "fox.glb"},
			want: options{model: "fox.glb", actors: 1, switchDt: 2 * time.Second, tick: 60, level: slog.LevelInfo},
		},
		{
			name: "all",
			args: []string{"-model", "fox.glb", "-mixes", "m.yaml", "-watch", "-actors", "8", "-switch", "500ms", "-duration", "10s", "-tick", "30", "-profile", "-log-level", "debug"},
			want: options{model: "fox.glb", mixes: "m.yaml", watch: true, actors: 8, switchDt: 500 * time.Millisecond, duration: 10 * time.Second, tick: 30, profile: true, level: slog.LevelDebug},
		},
		{name: "missing_model", args: nil, wantErr: true},
		{name: "no_actors", args: []string{"-model", "a.glb", "-actors", "0"}, wantErr: true},
		{name: "watch_without_mixes", args: []string{"-model", "a.glb", "-watch"}, wantErr: true},
		{name: "bad_level", args: []string{"-model", "a.glb", "-log-level", "loud"}, wantErr: true},
		{name: "bad_tick", args: []string{"-model", "a.glb", "-tick", "0"}, wantErr: true},
		{name: "unknown_flag", args: []string{"-model", "a.glb", "-rig", "x"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := flag.NewFlagSet("oxymix", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			got, err := parseOptions(fs, tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOptions: %v", err)
			}
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(options{})); diff != "" {
				t.Fatalf("options mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func holdClip(name string) *model.AnimationClip {
	return &model.AnimationClip{Name: name, Duration: 1}
}

func TestDirectorStaggersSwitches(t *testing.T) {
	skeleton := model.NewSkeleton([]model.Bone{{Name: "root", ParentIndex: -1, LocalTransform: model.IdentityTransform()}})
	m := model.NewModel(model.WithName("fox"), model.WithSkeleton(skeleton), model.WithAnimations(holdClip("walk"), holdClip("run")))
	walk, _ := m.Animation("walk")
	run, _ := m.Animation("run")
	table := animator.NewMixTable(animator.WithMixing(walk, run, 0.25))

	a := game_object.NewGameObject(game_object.WithName("a"), game_object.WithModel(m), game_object.WithMixTable(table))
	b := game_object.NewGameObject(game_object.WithName("b"), game_object.WithModel(m), game_object.WithMixTable(table))
	d := newDirector(slog.New(slog.DiscardHandler), []string{"walk", "run"}, time.Second, []game_object.GameObject{a, b})

	if err := d.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	current := func() []animator.Animation {
		return []animator.Animation{a.AnimationState().Animation(), b.AnimationState().Animation()}
	}
	same := cmp.Comparer(func(x, y animator.Animation) bool { return x == y })

	steps := []struct {
		dt   float32
		want []animator.Animation
	}{
		{0.5, []animator.Animation{walk, run}},
		{0.5, []animator.Animation{run, run}},
		{0.5, []animator.Animation{run, walk}},
		{0.5, []animator.Animation{walk, walk}},
	}
	for i, step := range steps {
		d.tick(step.dt)
		if diff := cmp.Diff(step.want, current(), same); diff != "" {
			t.Fatalf("step %d: clips mismatch (-want +got):\n%s", i, diff)
		}
	}
	if d.switches != 3 {
		t.Fatalf("switches = %d, want 3", d.switches)
	}
	if a.AnimationState().IsBlending() {
		t.Fatal("run→walk has no mix entry and must hard cut")
	}
}
