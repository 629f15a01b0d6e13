// Package game_object provides the animated scene entity: a posable skeleton
// driven by an AnimationState.
package game_object

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// ErrNoSuchAnimation is returned by Play when the object's model has no clip of the requested name.
var ErrNoSuchAnimation = errors.New("no such animation")

type gameObject struct {
	id            uint64
	name          string
	enabled       atomic.Bool
	mdl           model.Model
	skeleton      *model.Skeleton
	state         animator.AnimationState
	mixes         animator.MixTable
	timeScale     float32
	bindPoseReset bool
}

// GameObject defines the interface for a scene entity that owns a skeleton
// and plays animations on it through an AnimationState.
//
// A GameObject is not safe for concurrent use except for Enabled/SetEnabled;
// a Scene animates each object from exactly one task per frame.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's display name.
	//
	// Returns:
	//   - string: the name, possibly empty
	Name() string

	// Enabled returns whether this object is animated by its scene.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the Model this object was built from, or nil if not set.
	//
	// Returns:
	//   - model.Model: the associated model or nil
	Model() model.Model

	// Skeleton returns the skeleton this object poses.
	// It is the object's own copy, never the Model's shared skeleton.
	//
	// Returns:
	//   - *model.Skeleton: the skeleton, or nil if the object has none
	Skeleton() *model.Skeleton

	// AnimationState returns the state machine driving this object.
	//
	// Returns:
	//   - animator.AnimationState: the animation state
	AnimationState() animator.AnimationState

	// TimeScale returns the factor applied to every delta passed to Animate.
	//
	// Returns:
	//   - float32: the time scale, 1 by default
	TimeScale() float32

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object is animated by its scene.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetTimeScale sets the factor applied to every delta passed to Animate.
	// Zero freezes the object; negative values play time backwards.
	//
	// Parameters:
	//   - scale: the new time scale
	SetTimeScale(scale float32)

	// Play switches to the named clip of the object's model, crossfading when
	// the mix table holds a duration for the transition.
	//
	// Parameters:
	//   - name: the clip name
	//   - loop: whether the clip wraps at its end
	//
	// Returns:
	//   - error: an error wrapping ErrNoSuchAnimation if the model has no such clip
	Play(name string, loop bool) error

	// Animate advances the animation state by deltaTime scaled by TimeScale and
	// poses the skeleton. When bind pose reset is enabled the skeleton is
	// restored to its bind pose first. An object without a skeleton still
	// advances its state but poses nothing.
	//
	// Parameters:
	//   - deltaTime: the elapsed time in seconds
	Animate(deltaTime float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// An object built from a Model poses a clone of the model's skeleton unless
// WithSkeleton supplies one. Without WithAnimationState the object gets a
// state reading the table given by WithMixTable, or a private empty table.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		timeScale: 1,
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}

	if obj.skeleton == nil && obj.mdl != nil && obj.mdl.Skeleton() != nil {
		obj.skeleton = obj.mdl.Skeleton().Clone()
	}
	if obj.state == nil {
		var stateOptions []animator.AnimationStateBuilderOption
		if obj.mixes != nil {
			stateOptions = append(stateOptions, animator.WithMixTable(obj.mixes))
		}
		obj.state = animator.NewAnimationState(stateOptions...)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Skeleton() *model.Skeleton {
	return g.skeleton
}

func (g *gameObject) AnimationState() animator.AnimationState {
	return g.state
}

func (g *gameObject) TimeScale() float32 {
	return g.timeScale
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetTimeScale(scale float32) {
	g.timeScale = scale
}

func (g *gameObject) Play(name string, loop bool) error {
	if g.mdl == nil {
		return fmt.Errorf("game_object %d: %w %q: no model", g.id, ErrNoSuchAnimation, name)
	}
	clip, ok := g.mdl.Animation(name)
	if !ok {
		return fmt.Errorf("game_object %d: %w %q in model %q", g.id, ErrNoSuchAnimation, name, g.mdl.Name())
	}
	g.state.SetAnimation(clip, loop)
	return nil
}

func (g *gameObject) Animate(deltaTime float32) {
	g.state.Update(deltaTime * g.timeScale)
	if g.skeleton == nil {
		return
	}
	if g.bindPoseReset {
		g.skeleton.SetToBindPose()
	}
	g.state.Apply(g.skeleton)
}
