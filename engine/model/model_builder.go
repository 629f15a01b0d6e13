package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithSkeleton is an option builder that sets the bone hierarchy of the Model.
//
// Parameters:
//   - s: the skeleton in its bind pose
//
// Returns:
//   - ModelBuilderOption: a function that applies the skeleton option to a model
func WithSkeleton(s *Skeleton) ModelBuilderOption {
	return func(m *model) {
		m.skeleton = s
	}
}

// WithAnimations is an option builder that sets the animation clips of the Model.
// When two clips share a name, Animation(name) resolves to the first.
//
// Parameters:
//   - clips: the animation clips
//
// Returns:
//   - ModelBuilderOption: a function that applies the animations option to a model
func WithAnimations(clips ...*AnimationClip) ModelBuilderOption {
	return func(m *model) {
		m.animations = append(m.animations, clips...)
	}
}
