package main

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-mix/engine/game_object"
)

// director cycles a set of actors through a list of clips. Actor i first
// switches after interval*(1+i/n) so the actors do not all change clip on
// the same tick.
type director struct {
	log      *slog.Logger
	clips    []string
	interval float32
	elapsed  float32
	actors   []*cue
	switches int
}

type cue struct {
	obj  game_object.GameObject
	clip int
	next float32
}

func newDirector(log *slog.Logger, clips []string, interval time.Duration, actors []game_object.GameObject) *director {
	d := &director{
		log:      log,
		clips:    clips,
		interval: float32(interval.Seconds()),
	}
	for i, obj := range actors {
		d.actors = append(d.actors, &cue{
			obj:  obj,
			clip: i % len(clips),
			next: d.interval * (1 + float32(i)/float32(len(actors))),
		})
	}
	return d
}

// start plays every actor's first clip.
func (d *director) start() error {
	for _, c := range d.actors {
		if err := c.obj.Play(d.clips[c.clip], true); err != nil {
			return err
		}
	}
	return nil
}

// tick advances the director's clock and switches every actor whose cue is due.
// It must run on the goroutine that updates the actors' scene.
func (d *director) tick(deltaTime float32) {
	if d.interval <= 0 || len(d.clips) < 2 {
		return
	}
	d.elapsed += deltaTime
	for _, c := range d.actors {
		for d.elapsed >= c.next {
			c.clip = (c.clip + 1) % len(d.clips)
			c.next += d.interval
			if err := c.obj.Play(d.clips[c.clip], true); err != nil {
				d.log.Warn("switch failed", "actor", c.obj.Name(), "err", err)
				continue
			}
			d.switches++
			state := c.obj.AnimationState()
			d.log.Debug("switch", "actor", c.obj.Name(), "clip", d.clips[c.clip], "blending", state.IsBlending(), "mix", state.MixDuration())
		}
	}
}
