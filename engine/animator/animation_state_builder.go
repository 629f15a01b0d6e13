package animator

import (
	"log/slog"
)

// AnimationStateBuilderOption is a functional option for configuring an AnimationState during construction.
type AnimationStateBuilderOption func(*animationState)

// WithMixTable is an option builder that sets the shared MixTable consulted on every SetAnimation.
// The state keeps a reference; it never modifies the table.
//
// Parameters:
//   - t: the mix table to share
//
// Returns:
//   - AnimationStateBuilderOption: a function that applies the mix table option to an animation state
func WithMixTable(t MixTable) AnimationStateBuilderOption {
	return func(s *animationState) {
		s.mixes = t
	}
}

// WithStateLogger is an option builder that sets the logger used for transition events.
//
// Parameters:
//   - log: the logger; nil keeps the default discard logger
//
// Returns:
//   - AnimationStateBuilderOption: a function that applies the logger option to an animation state
func WithStateLogger(log *slog.Logger) AnimationStateBuilderOption {
	return func(s *animationState) {
		if log != nil {
			s.log = log
		}
	}
}

// WithAnimation is an option builder that starts the state on an animation, as a hard cut.
//
// Parameters:
//   - animation: the initial animation
//   - loop: whether the animation's time wraps when sampled
//
// Returns:
//   - AnimationStateBuilderOption: a function that sets the initial animation on an animation state
func WithAnimation(animation Animation, loop bool) AnimationStateBuilderOption {
	return func(s *animationState) {
		if absent(animation) {
			animation = nil
		}
		s.current = animation
		s.currentLoop = loop
		s.currentTime = 0
	}
}
