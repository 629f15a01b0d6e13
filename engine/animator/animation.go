// Package animator drives which animation clips pose a skeleton over time and
// crossfades between a previous and a newly activated clip.
//
// A MixTable declares how long each ordered transition (from → to) blends.
// An AnimationState tracks the current clip, the outgoing clip while a blend
// is in progress, their playback times and the blend progress. Hosts call
// Update then Apply once per tick.
package animator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// ErrInvalidArgument is returned when a required animation reference is absent
// or cannot be used as a mix key.
var ErrInvalidArgument = errors.New("invalid argument")

// Animation is the pose capability the state machine drives. Implementations
// must be immutable while in use and comparable, since they key MixTable
// entries; *model.AnimationClip is the engine's implementation.
type Animation interface {
	// Apply samples the animation at time and writes the pose onto the skeleton.
	//
	// Parameters:
	//   - skeleton: the skeleton to pose
	//   - time: the playback time in seconds
	//   - loop: whether time wraps at the animation's duration
	Apply(skeleton *model.Skeleton, time float32, loop bool)

	// Mix samples the animation at time and blends it into the skeleton's
	// existing pose by alpha (0 = unchanged, 1 = fully replaced).
	//
	// Parameters:
	//   - skeleton: the skeleton to pose
	//   - time: the playback time in seconds
	//   - loop: whether time wraps at the animation's duration
	//   - alpha: the blend weight in [0, 1]
	Mix(skeleton *model.Skeleton, time float32, loop bool, alpha float32)
}

var _ Animation = (*model.AnimationClip)(nil)

// absent reports whether a holds no animation, including a typed nil.
func absent(a Animation) bool {
	if a == nil {
		return true
	}
	v := reflect.ValueOf(a)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// animationName returns a printable name for log attributes.
func animationName(a Animation) string {
	if a == nil {
		return "<none>"
	}
	switch v := a.(type) {
	case *model.AnimationClip:
		if v != nil {
			return v.Name
		}
	case fmt.Stringer:
		return v.String()
	}
	return reflect.TypeOf(a).String()
}
