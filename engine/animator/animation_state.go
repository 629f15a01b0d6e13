package animator

import (
	"log/slog"
	"math"

	"github.com/Carmen-Shannon/oxy-mix/common"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// animationState is the implementation of the AnimationState interface.
type animationState struct {
	mixes MixTable
	log   *slog.Logger

	current, previous         Animation
	currentTime, previousTime float32
	currentLoop, previousLoop bool
	mixTime, mixDuration      float32
}

// AnimationState defines the playback state of a single animated subject.
//
// The state is either Single (only a current animation) or Blending (a
// current animation fading in over a previous one). SetAnimation is the only
// way to start a new state; Apply is the only way a blend finishes.
//
// An AnimationState is not safe for concurrent use. The host calls Update and
// then Apply once per tick from one goroutine at a time.
type AnimationState interface {
	// SetAnimation makes animation current, starting at time 0.
	// It is equivalent to SetAnimationAt(animation, loop, 0).
	//
	// Parameters:
	//   - animation: the animation to play, or nil to clear
	//   - loop: whether the animation's time wraps when sampled
	SetAnimation(animation Animation, loop bool)

	// SetAnimationAt makes animation current, starting at startTime.
	// Any in-progress blend is discarded. If a current animation exists and the
	// MixTable holds a duration for (current → animation), a new blend begins
	// with the old current animation fading out; otherwise the switch is a hard cut.
	//
	// Parameters:
	//   - animation: the animation to play, or nil to clear
	//   - loop: whether the animation's time wraps when sampled
	//   - startTime: the initial playback time in seconds
	SetAnimationAt(animation Animation, loop bool, startTime float32)

	// Update advances the current track, the previous track and the blend timer by delta seconds.
	// Negative deltas are accepted and move time backwards.
	//
	// Parameters:
	//   - delta: elapsed time in seconds
	Update(delta float32)

	// Apply poses the skeleton. With no current animation this is a no-op.
	// While blending, the previous animation is applied first and the current
	// one is mixed over it by the blend progress; once progress reaches 1 the
	// previous animation is released.
	//
	// Parameters:
	//   - skeleton: the skeleton to pose
	Apply(skeleton *model.Skeleton)

	// Animation returns the current animation.
	//
	// Returns:
	//   - Animation: the current animation, or nil
	Animation() Animation

	// Time returns the playback time of the current animation.
	//
	// Returns:
	//   - float32: the current track time in seconds
	Time() float32

	// Loop reports whether the current animation loops.
	//
	// Returns:
	//   - bool: the current track's loop flag
	Loop() bool

	// Previous returns the animation being faded out.
	//
	// Returns:
	//   - Animation: the previous animation, or nil when not blending
	Previous() Animation

	// PreviousTime returns the playback time of the previous animation.
	// Only meaningful while IsBlending reports true.
	//
	// Returns:
	//   - float32: the previous track time in seconds
	PreviousTime() float32

	// IsBlending reports whether a crossfade is in progress.
	//
	// Returns:
	//   - bool: true if a previous animation is set
	IsBlending() bool

	// MixTime returns the time elapsed since the current blend began.
	//
	// Returns:
	//   - float32: the blend timer in seconds
	MixTime() float32

	// MixDuration returns the total duration of the current blend.
	//
	// Returns:
	//   - float32: the blend duration in seconds
	MixDuration() float32

	// BlendProgress returns the weight the next Apply will mix the current animation with.
	//
	// Returns:
	//   - float32: progress in [0, 1], or 0 when not blending
	BlendProgress() float32

	// MixTable returns the registry this state consults on SetAnimation.
	//
	// Returns:
	//   - MixTable: the shared mix table
	MixTable() MixTable
}

var _ AnimationState = &animationState{}

// NewAnimationState creates a new AnimationState with no current animation.
// Without WithMixTable the state gets a private empty table and every switch
// is a hard cut.
//
// Parameters:
//   - options: variadic list of AnimationStateBuilderOption functions
//
// Returns:
//   - AnimationState: the new state
func NewAnimationState(options ...AnimationStateBuilderOption) AnimationState {
	s := &animationState{
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.mixes == nil {
		s.mixes = NewMixTable()
	}
	return s
}

func (s *animationState) SetAnimation(animation Animation, loop bool) {
	s.SetAnimationAt(animation, loop, 0)
}

func (s *animationState) SetAnimationAt(animation Animation, loop bool, startTime float32) {
	if absent(animation) {
		animation = nil
	}

	s.previous = nil
	if animation != nil && s.current != nil {
		if d, ok := s.mixes.Mixing(s.current, animation); ok {
			s.previous = s.current
			s.previousTime = s.currentTime
			s.previousLoop = s.currentLoop
			s.mixTime = 0
			s.mixDuration = d
			s.log.Debug("blend started",
				"from", animationName(s.previous),
				"to", animationName(animation),
				"duration", d)
		} else {
			s.log.Debug("hard cut", "from", animationName(s.current), "to", animationName(animation))
		}
	}

	s.current = animation
	s.currentLoop = loop
	s.currentTime = startTime
}

func (s *animationState) Update(delta float32) {
	s.currentTime += delta
	s.previousTime += delta
	s.mixTime += delta
}

func (s *animationState) Apply(skeleton *model.Skeleton) {
	if s.current == nil {
		return
	}
	if s.previous == nil {
		s.current.Apply(skeleton, s.currentTime, s.currentLoop)
		return
	}
	if !fadeable(s.mixDuration) {
		s.current.Apply(skeleton, s.currentTime, s.currentLoop)
		s.endBlend()
		return
	}

	s.previous.Apply(skeleton, s.previousTime, s.previousLoop)
	alpha := common.Clamp(s.mixTime/s.mixDuration, 0, 1)
	s.current.Mix(skeleton, s.currentTime, s.currentLoop, alpha)
	if alpha == 1 {
		s.endBlend()
	}
}

// fadeable reports whether a blend of duration d can progress. Zero,
// negative and non-finite durations resolve as a cut on the next Apply.
func fadeable(d float32) bool {
	return d > 0 && !math.IsInf(float64(d), 1)
}

// endBlend releases the previous animation once its fade-out is complete.
func (s *animationState) endBlend() {
	s.log.Debug("blend finished", "from", animationName(s.previous), "to", animationName(s.current))
	s.previous = nil
}

func (s *animationState) Animation() Animation {
	return s.current
}

func (s *animationState) Time() float32 {
	return s.currentTime
}

func (s *animationState) Loop() bool {
	return s.currentLoop
}

func (s *animationState) Previous() Animation {
	return s.previous
}

func (s *animationState) PreviousTime() float32 {
	return s.previousTime
}

func (s *animationState) IsBlending() bool {
	return s.previous != nil
}

func (s *animationState) MixTime() float32 {
	return s.mixTime
}

func (s *animationState) MixDuration() float32 {
	return s.mixDuration
}

func (s *animationState) BlendProgress() float32 {
	if s.previous == nil {
		return 0
	}
	if !fadeable(s.mixDuration) {
		return 1
	}
	return common.Clamp(s.mixTime/s.mixDuration, 0, 1)
}

func (s *animationState) MixTable() MixTable {
	return s.mixes
}
