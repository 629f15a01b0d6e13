package game_object

import (
	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the display name of the GameObject.
//
// Parameters:
//   - name: the name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithEnabled sets whether the GameObject is animated by its scene. Objects are enabled by default.
//
// Parameters:
//   - enabled: true to animate the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the Model for this GameObject. Unless WithSkeleton is also
// given, the object poses a clone of the model's skeleton.
//
// Parameters:
//   - m: the Model to associate
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mdl = m
	}
}

// WithSkeleton sets the skeleton the GameObject poses. The object takes ownership of it.
//
// Parameters:
//   - s: the skeleton
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the skeleton
func WithSkeleton(s *model.Skeleton) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.skeleton = s
	}
}

// WithMixTable sets the shared mix table the object's AnimationState reads.
// Ignored when WithAnimationState is given.
//
// Parameters:
//   - table: the shared table
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the mix table
func WithMixTable(table animator.MixTable) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mixes = table
	}
}

// WithAnimationState sets a preconfigured AnimationState.
//
// Parameters:
//   - state: the state machine
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the animation state
func WithAnimationState(state animator.AnimationState) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.state = state
	}
}

// WithTimeScale sets the factor applied to every delta passed to Animate.
//
// Parameters:
//   - scale: the time scale
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the time scale
func WithTimeScale(scale float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.timeScale = scale
	}
}

// WithBindPoseReset makes Animate restore the bind pose before applying
// animations, so bones the current clips do not key return to rest instead
// of keeping the last written value.
//
// Parameters:
//   - reset: true to reset every frame
//
// Returns:
//   - GameObjectBuilderOption: functional option to set bind pose reset
func WithBindPoseReset(reset bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.bindPoseReset = reset
	}
}
