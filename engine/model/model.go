package model

// model is the implementation of the Model interface.
type model struct {
	name       string
	skeleton   *Skeleton
	animations []*AnimationClip
	byName     map[string]*AnimationClip
}

// Model defines the interface for a loaded, animatable asset.
// A Model bundles a skeleton with the animation clips authored for it. It is
// produced by the Loader and shared read-only by every instance that plays it;
// instances pose a Clone of the skeleton, never the Model's own.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Skeleton retrieves the bone hierarchy in its bind pose.
	// Returns nil for models without a skin.
	//
	// Returns:
	//   - *Skeleton: the skeleton or nil
	Skeleton() *Skeleton

	// Animations retrieves all animation clips bundled with this model.
	//
	// Returns:
	//   - []*AnimationClip: the animation clips
	Animations() []*AnimationClip

	// AnimationCount returns the number of available animation clips.
	//
	// Returns:
	//   - int: the animation count
	AnimationCount() int

	// AnimationNames returns the names of all animation clips in load order.
	//
	// Returns:
	//   - []string: the clip names
	AnimationNames() []string

	// Animation retrieves a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - *AnimationClip: the clip
	//   - bool: false if no clip has that name
	Animation(name string) (*AnimationClip, bool)
}

var _ Model = &model{}

// NewModel creates a new Model configured by the provided options.
//
// Parameters:
//   - options: variadic list of ModelBuilderOption functions
//
// Returns:
//   - Model: the new model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	m.byName = make(map[string]*AnimationClip, len(m.animations))
	for _, clip := range m.animations {
		if clip == nil {
			continue
		}
		if _, dup := m.byName[clip.Name]; !dup {
			m.byName[clip.Name] = clip
		}
	}
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) Animations() []*AnimationClip {
	return m.animations
}

func (m *model) AnimationCount() int {
	return len(m.animations)
}

func (m *model) AnimationNames() []string {
	names := make([]string, 0, len(m.animations))
	for _, clip := range m.animations {
		if clip != nil {
			names = append(names, clip.Name)
		}
	}
	return names
}

func (m *model) Animation(name string) (*AnimationClip, bool) {
	clip, ok := m.byName[name]
	return clip, ok
}
