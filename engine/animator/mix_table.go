package animator

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// mixKey is an ordered (from, to) pair of animations.
type mixKey struct {
	from, to Animation
}

// Mixing is a single registered transition and its blend duration in seconds.
type Mixing struct {
	From     Animation
	To       Animation
	Duration float32
}

// mixTable is the implementation of the MixTable interface.
type mixTable struct {
	mu  sync.RWMutex
	log *slog.Logger

	durations map[mixKey]float32
}

// MixTable defines the registry of crossfade durations between ordered pairs
// of animations.
//
// A MixTable is typically populated once during setup and then shared,
// read-only, by every AnimationState in a scene. It is safe for concurrent
// use; lookups never block one another.
type MixTable interface {
	// SetMixing records that switching from one animation to another blends over duration seconds.
	// Any previous duration for the same ordered pair is overwritten; the reverse pair is unaffected.
	// The duration is not range-checked: zero or negative values make the transition an instant cut.
	//
	// Parameters:
	//   - from: the animation being left (must not be nil)
	//   - to: the animation being entered (must not be nil)
	//   - duration: the blend duration in seconds
	//
	// Returns:
	//   - error: an error wrapping ErrInvalidArgument if from or to is absent or not comparable
	SetMixing(from, to Animation, duration float32) error

	// Mixing looks up the blend duration for an ordered pair.
	//
	// Parameters:
	//   - from: the animation being left
	//   - to: the animation being entered
	//
	// Returns:
	//   - float32: the registered duration
	//   - bool: false if no duration is registered for the pair
	Mixing(from, to Animation) (float32, bool)

	// Reset atomically replaces every registered transition with the given entries.
	// All entries are validated first; on error the table is left unchanged.
	//
	// Parameters:
	//   - entries: the transitions to register; later entries overwrite earlier ones for the same pair
	//
	// Returns:
	//   - error: an error wrapping ErrInvalidArgument if any entry is invalid
	Reset(entries ...Mixing) error

	// Mixings returns a snapshot of all registered transitions in no particular order.
	//
	// Returns:
	//   - []Mixing: the registered transitions
	Mixings() []Mixing

	// Len returns the number of registered transitions.
	//
	// Returns:
	//   - int: the entry count
	Len() int
}

var _ MixTable = &mixTable{}

// NewMixTable creates an empty MixTable configured with the provided options.
// Options that register transitions panic if given an absent animation; use
// SetMixing to handle the error instead.
//
// Parameters:
//   - options: variadic list of MixTableBuilderOption functions
//
// Returns:
//   - MixTable: the new table
func NewMixTable(options ...MixTableBuilderOption) MixTable {
	t := &mixTable{
		log:       slog.New(slog.DiscardHandler),
		durations: make(map[mixKey]float32),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *mixTable) SetMixing(from, to Animation, duration float32) error {
	key, err := newMixKey(from, to)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.durations[key] = duration
	t.mu.Unlock()

	t.log.Debug("mixing set", "from", animationName(from), "to", animationName(to), "duration", duration)
	return nil
}

func (t *mixTable) Mixing(from, to Animation) (float32, bool) {
	if from == nil || to == nil {
		return 0, false
	}
	if !reflect.TypeOf(from).Comparable() || !reflect.TypeOf(to).Comparable() {
		return 0, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.durations[mixKey{from: from, to: to}]
	return d, ok
}

func (t *mixTable) Reset(entries ...Mixing) error {
	durations := make(map[mixKey]float32, len(entries))
	for i, e := range entries {
		key, err := newMixKey(e.From, e.To)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		durations[key] = e.Duration
	}

	t.mu.Lock()
	t.durations = durations
	t.mu.Unlock()

	t.log.Debug("mix table reset", "entries", len(durations))
	return nil
}

func (t *mixTable) Mixings() []Mixing {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Mixing, 0, len(t.durations))
	for k, d := range t.durations {
		out = append(out, Mixing{From: k.from, To: k.to, Duration: d})
	}
	return out
}

func (t *mixTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.durations)
}

// newMixKey validates both ends of a transition and builds its key.
func newMixKey(from, to Animation) (mixKey, error) {
	if absent(from) {
		return mixKey{}, fmt.Errorf("%w: from cannot be nil", ErrInvalidArgument)
	}
	if absent(to) {
		return mixKey{}, fmt.Errorf("%w: to cannot be nil", ErrInvalidArgument)
	}
	if !reflect.TypeOf(from).Comparable() {
		return mixKey{}, fmt.Errorf("%w: from type %T is not comparable", ErrInvalidArgument, from)
	}
	if !reflect.TypeOf(to).Comparable() {
		return mixKey{}, fmt.Errorf("%w: to type %T is not comparable", ErrInvalidArgument, to)
	}
	return mixKey{from: from, to: to}, nil
}
