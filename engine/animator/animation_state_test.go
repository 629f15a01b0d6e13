package animator

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

func checkCalls(t *testing.T, rec *recorder, want []call) {
	t.Helper()
	got := rec.take()
	if !cmp.Equal(want, got, approx) {
		t.Fatalf("unexpected pose calls:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got, approx))
	}
}

func TestAnimationStateWalkToRunCrossfade(t *testing.T) {
	rec, a := newFakes("walk", "run")
	walk, run := a[0], a[1]
	state := NewAnimationState(WithMixTable(NewMixTable(WithMixing(walk, run, 0.3))))

	state.SetAnimation(walk, true)
	state.Apply(nil)
	checkCalls(t, rec, []call{{Op: "apply", Anim: "walk", Time: 0, Loop: true, Alpha: 1}})

	state.SetAnimation(run, true)
	if !state.IsBlending() || state.Previous() != walk || state.Animation() != run {
		t.Fatalf("expected Blending(walk → run), got previous=%v current=%v", state.Previous(), state.Animation())
	}
	if state.MixTime() != 0 || state.MixDuration() != 0.3 {
		t.Fatalf("expected mixTime 0 and mixDuration 0.3, got %v and %v", state.MixTime(), state.MixDuration())
	}

	state.Update(0.15)
	state.Apply(nil)
	checkCalls(t, rec, []call{
		{Op: "apply", Anim: "walk", Time: 0.15, Loop: true, Alpha: 1},
		{Op: "mix", Anim: "run", Time: 0.15, Loop: true, Alpha: 0.5},
	})
	if !state.IsBlending() {
		t.Fatal("blend must still be in progress at half way")
	}

	state.Update(0.15)
	state.Apply(nil)
	checkCalls(t, rec, []call{
		{Op: "apply", Anim: "walk", Time: 0.3, Loop: true, Alpha: 1},
		{Op: "mix", Anim: "run", Time: 0.3, Loop: true, Alpha: 1},
	})
	if state.IsBlending() || state.Previous() != nil {
		t.Fatal("blend must finish once alpha reaches 1")
	}

	state.Update(0.1)
	state.Apply(nil)
	checkCalls(t, rec, []call{{Op: "apply", Anim: "run", Time: 0.4, Loop: true, Alpha: 1}})
}

func TestAnimationStateHardCutWithoutMixing(t *testing.T) {
	rec, a := newFakes("idle", "jump")
	idle, jump := a[0], a[1]
	state := NewAnimationState()

	state.SetAnimation(idle, true)
	state.Update(1)
	state.SetAnimation(jump, false)

	if state.IsBlending() || state.Previous() != nil || state.Animation() != jump {
		t.Fatalf("expected Single(jump), got previous=%v current=%v", state.Previous(), state.Animation())
	}
	state.Apply(nil)
	checkCalls(t, rec, []call{{Op: "apply", Anim: "jump", Time: 0, Loop: false, Alpha: 1}})
}

func TestAnimationStateTransitions(t *testing.T) {
	_, a := newFakes("a", "b", "c")
	A, B, C := a[0], a[1], a[2]

	tests := []struct {
		name         string
		mixes        []Mixing
		run          func(s AnimationState)
		wantCurrent  Animation
		wantPrevious Animation
	}{
		{
			name:        "first_animation_never_blends",
			mixes:       []Mixing{{From: A, To: B, Duration: 1}},
			run:         func(s AnimationState) { s.SetAnimation(B, true) },
			wantCurrent: B,
		},
		{
			name:        "clearing_drops_blend",
			mixes:       []Mixing{{From: A, To: B, Duration: 1}},
			run:         func(s AnimationState) { s.SetAnimation(A, true); s.SetAnimation(B, true); s.SetAnimation(nil, false) },
			wantCurrent: nil,
		},
		{
			name:  "typed_nil_clears",
			mixes: []Mixing{{From: A, To: B, Duration: 1}},
			run: func(s AnimationState) {
				var none *fakeAnimation
				s.SetAnimation(A, true)
				s.SetAnimation(none, true)
			},
			wantCurrent: nil,
		},
		{
			name:         "new_blend_preempts_unfinished_blend",
			mixes:        []Mixing{{From: A, To: B, Duration: 1}, {From: B, To: C, Duration: 1}},
			run:          func(s AnimationState) { s.SetAnimation(A, true); s.SetAnimation(B, true); s.Update(0.2); s.SetAnimation(C, true) },
			wantCurrent:  C,
			wantPrevious: B,
		},
		{
			name:        "unregistered_switch_discards_unfinished_blend",
			mixes:       []Mixing{{From: A, To: B, Duration: 1}},
			run:         func(s AnimationState) { s.SetAnimation(A, true); s.SetAnimation(B, true); s.SetAnimation(C, true) },
			wantCurrent: C,
		},
		{
			name:         "reverse_direction_uses_its_own_entry",
			mixes:        []Mixing{{From: B, To: A, Duration: 0.5}},
			run:          func(s AnimationState) { s.SetAnimation(B, true); s.SetAnimation(A, true) },
			wantCurrent:  A,
			wantPrevious: B,
		},
		{
			name:         "self_transition_when_registered",
			mixes:        []Mixing{{From: A, To: A, Duration: 0.5}},
			run:          func(s AnimationState) { s.SetAnimation(A, true); s.SetAnimation(A, true) },
			wantCurrent:  A,
			wantPrevious: A,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table := NewMixTable()
			if err := table.Reset(tc.mixes...); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			s := NewAnimationState(WithMixTable(table))
			tc.run(s)

			if s.Animation() != tc.wantCurrent {
				t.Errorf("current = %v, want %v", s.Animation(), tc.wantCurrent)
			}
			if s.Previous() != tc.wantPrevious {
				t.Errorf("previous = %v, want %v", s.Previous(), tc.wantPrevious)
			}
			if s.IsBlending() != (tc.wantPrevious != nil) {
				t.Errorf("IsBlending = %v with previous %v", s.IsBlending(), tc.wantPrevious)
			}
		})
	}
}

func TestAnimationStateCarriesOutgoingTrack(t *testing.T) {
	_, a := newFakes("a", "b")
	state := NewAnimationState(WithMixTable(NewMixTable(WithMixing(a[0], a[1], 2))))

	state.SetAnimationAt(a[0], false, 0.5)
	state.Update(0.25)
	state.SetAnimationAt(a[1], true, 3)

	if state.PreviousTime() != 0.75 {
		t.Fatalf("previous time = %v, want 0.75", state.PreviousTime())
	}
	if state.Time() != 3 || !state.Loop() {
		t.Fatalf("current track = (%v, %v), want (3, true)", state.Time(), state.Loop())
	}

	rec := a[0].rec
	rec.take()
	state.Apply(nil)
	checkCalls(t, rec, []call{
		{Op: "apply", Anim: "a", Time: 0.75, Loop: false, Alpha: 1},
		{Op: "mix", Anim: "b", Time: 3, Loop: true, Alpha: 0},
	})
}

func TestAnimationStateInstantCutDurations(t *testing.T) {
	durations := []float32{0, -0.5, float32(math.NaN()), float32(math.Inf(1))}
	for _, d := range durations {
		rec, a := newFakes("from", "to")
		state := NewAnimationState(WithMixTable(NewMixTable(WithMixing(a[0], a[1], d))))

		state.SetAnimation(a[0], true)
		state.SetAnimation(a[1], true)
		if !state.IsBlending() {
			t.Fatalf("duration %v: a registered transition must enter Blending", d)
		}
		if state.BlendProgress() != 1 {
			t.Fatalf("duration %v: progress = %v, want 1", d, state.BlendProgress())
		}

		state.Apply(nil)
		checkCalls(t, rec, []call{{Op: "apply", Anim: "to", Time: 0, Loop: true, Alpha: 1}})
		if state.IsBlending() {
			t.Fatalf("duration %v: first Apply must leave Single", d)
		}
	}
}

func TestAnimationStateUpdateMonotonic(t *testing.T) {
	_, a := newFakes("a", "b")
	state := NewAnimationState(WithMixTable(NewMixTable(WithMixing(a[0], a[1], 10))))
	state.SetAnimation(a[0], true)
	state.SetAnimation(a[1], true)

	prevCur, prevPrev, prevMix := state.Time(), state.PreviousTime(), state.MixTime()
	prevAlpha := state.BlendProgress()
	for _, d := range []float32{0, 0.016, 0.5, 0, 1.25, 3} {
		state.Update(d)
		if state.Time() < prevCur || state.PreviousTime() < prevPrev || state.MixTime() < prevMix {
			t.Fatalf("timers decreased after Update(%v)", d)
		}
		alpha := state.BlendProgress()
		if alpha < prevAlpha || alpha < 0 || alpha > 1 {
			t.Fatalf("blend progress %v not monotonic in [0,1] (previous %v)", alpha, prevAlpha)
		}
		prevCur, prevPrev, prevMix, prevAlpha = state.Time(), state.PreviousTime(), state.MixTime(), alpha
	}
}

func TestAnimationStateNegativeDelta(t *testing.T) {
	rec, a := newFakes("a", "b")
	state := NewAnimationState(WithMixTable(NewMixTable(WithMixing(a[0], a[1], 1))))
	state.SetAnimation(a[0], true)
	state.SetAnimation(a[1], true)

	state.Update(-0.5)
	if state.Time() != -0.5 || state.MixTime() != -0.5 {
		t.Fatalf("negative delta must move time back, got time %v mix %v", state.Time(), state.MixTime())
	}
	if state.BlendProgress() != 0 {
		t.Fatalf("progress = %v, want clamped 0", state.BlendProgress())
	}

	rec.take()
	state.Apply(nil)
	checkCalls(t, rec, []call{
		{Op: "apply", Anim: "a", Time: -0.5, Loop: true, Alpha: 1},
		{Op: "mix", Anim: "b", Time: -0.5, Loop: true, Alpha: 0},
	})
}

func TestAnimationStateBlendStaysFinished(t *testing.T) {
	rec, a := newFakes("a", "b")
	state := NewAnimationState(WithMixTable(NewMixTable(WithMixing(a[0], a[1], 0.25))))
	state.SetAnimation(a[0], true)
	state.SetAnimation(a[1], false)

	for range 3 {
		state.Update(0.1)
	}
	state.Apply(nil)
	if state.IsBlending() {
		t.Fatal("expected Single after cumulative updates exceed the duration")
	}
	rec.take()

	for range 3 {
		state.Update(0.1)
		state.Apply(nil)
		if state.IsBlending() {
			t.Fatal("state must stay Single without a new SetAnimation")
		}
	}
	for _, c := range rec.take() {
		if c.Anim != "b" || c.Op != "apply" {
			t.Fatalf("unexpected call after blend finished: %+v", c)
		}
	}
}

func TestAnimationStateNoCurrentIsNoop(t *testing.T) {
	rec, _ := newFakes()
	state := NewAnimationState()
	state.Update(1)
	state.Apply(model.NewSkeleton(nil))
	if len(rec.take()) != 0 {
		t.Fatal("Apply without a current animation must not pose")
	}
	if state.MixTable() == nil {
		t.Fatal("state must own a private mix table when none is given")
	}
}

func TestAnimationStateTypedNilStartIsNoop(t *testing.T) {
	state := NewAnimationState(WithAnimation((*fakeAnimation)(nil), true))
	if state.Animation() != nil {
		t.Fatalf("a typed nil start must leave no current animation, got %v", state.Animation())
	}
	state.Update(0.5)
	state.Apply(nil)
}

func TestAnimationStateWithClips(t *testing.T) {
	skel := model.NewSkeleton([]model.Bone{{Name: "root", ParentIndex: -1, LocalTransform: model.IdentityTransform()}})
	hold := func(name string, x float32) *model.AnimationClip {
		return &model.AnimationClip{
			Name:     name,
			Duration: 1,
			Channels: []model.AnimationChannel{{
				BoneIndex: 0,
				PositionKeys: []model.VectorKeyframe{
					{Time: 0, Value: [3]float32{x, 0, 0}},
					{Time: 1, Value: [3]float32{x, 0, 0}},
				},
			}},
		}
	}
	walk, run := hold("walk", 0), hold("run", 10)

	state := NewAnimationState(
		WithMixTable(NewMixTable(WithMixing(walk, run, 0.4))),
		WithAnimation(walk, true),
	)
	state.Apply(skel)
	state.SetAnimation(run, true)

	steps := []struct {
		delta float32
		wantX float32
	}{
		{0.1, 2.5},
		{0.1, 5},
		{0.2, 10},
	}
	for _, st := range steps {
		state.Update(st.delta)
		state.Apply(skel)
		if got := skel.Bones[0].LocalTransform.Translation[0]; !cmp.Equal(st.wantX, got, approx) {
			t.Fatalf("after mixTime %v: x = %v, want %v", state.MixTime(), got, st.wantX)
		}
	}
	if state.IsBlending() {
		t.Fatal("expected blend to be finished")
	}
}
