package animator

import (
	"fmt"
	"log/slog"
)

// MixTableBuilderOption is a functional option for configuring a MixTable during construction.
type MixTableBuilderOption func(*mixTable)

// WithMixing is an option builder that registers a transition during construction.
// It panics if either animation is absent, mirroring a configuration error at startup.
//
// Parameters:
//   - from: the animation being left
//   - to: the animation being entered
//   - duration: the blend duration in seconds
//
// Returns:
//   - MixTableBuilderOption: a function that registers the transition on a mix table
func WithMixing(from, to Animation, duration float32) MixTableBuilderOption {
	return func(t *mixTable) {
		if err := t.SetMixing(from, to, duration); err != nil {
			panic(fmt.Sprintf("animator: WithMixing: %v", err))
		}
	}
}

// WithMixTableLogger is an option builder that sets the logger used by the MixTable.
//
// Parameters:
//   - log: the logger; nil keeps the default discard logger
//
// Returns:
//   - MixTableBuilderOption: a function that applies the logger option to a mix table
func WithMixTableLogger(log *slog.Logger) MixTableBuilderOption {
	return func(t *mixTable) {
		if log != nil {
			t.log = log
		}
	}
}
