// Package config loads crossfade durations from YAML and keeps a MixTable in
// sync with the file while it changes.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidSpec is returned when a mix file is well-formed YAML but declares an unusable entry.
	ErrInvalidSpec = errors.New("invalid mix spec")

	// ErrUnknownAnimation is returned when an entry names an animation the lookup cannot resolve.
	ErrUnknownAnimation = errors.New("unknown animation")
)

// Lookup resolves an animation by name.
type Lookup func(name string) (animator.Animation, bool)

// MixSpec is the document form of a MixTable:
//
//	mixes:
//	  - from: walk
//	    to: run
//	    duration: 0.3
//	  - from: idle
//	    to: walk
//	    duration: 250ms
//	    bidirectional: true
type MixSpec struct {
	Mixes []MixEntry `yaml:"mixes"`
}

// MixEntry declares one transition. Bidirectional also registers to → from
// with the same duration.
type MixEntry struct {
	From          string  `yaml:"from"`
	To            string  `yaml:"to"`
	Duration      Seconds `yaml:"duration"`
	Bidirectional bool    `yaml:"bidirectional"`
}

// Seconds is a duration in seconds that unmarshals from a plain number
// (0.3) or a Go duration string (300ms).
type Seconds float32

func (s *Seconds) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, line %d", value.Line)
	}

	raw := strings.TrimSpace(value.Value)
	if f, err := strconv.ParseFloat(raw, 32); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("duration %q must be finite, line %d", value.Value, value.Line)
		}
		*s = Seconds(f)
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q, line %d", value.Value, value.Line)
	}
	*s = Seconds(d.Seconds())
	return nil
}

// ParseMixSpec decodes and validates a mix document.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *MixSpec: the decoded spec
//   - error: a decode error, or an error wrapping ErrInvalidSpec
func ParseMixSpec(data []byte) (*MixSpec, error) {
	var spec MixSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("config: unmarshal mixes: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadMixSpec reads and parses a mix file.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - *MixSpec: the decoded spec
//   - error: a read, decode or validation error
func LoadMixSpec(path string) (*MixSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	spec, err := ParseMixSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// Validate checks that every entry names both animations.
func (s *MixSpec) Validate() error {
	var errs []error
	for i, e := range s.Mixes {
		if strings.TrimSpace(e.From) == "" {
			errs = append(errs, fmt.Errorf("config: mixes[%d]: %w: from is empty", i, ErrInvalidSpec))
		}
		if strings.TrimSpace(e.To) == "" {
			errs = append(errs, fmt.Errorf("config: mixes[%d]: %w: to is empty", i, ErrInvalidSpec))
		}
	}
	return errors.Join(errs...)
}

// Resolve turns the named entries into Mixings. Every unresolvable name is
// reported, not just the first.
//
// Parameters:
//   - lookup: resolves animation names
//
// Returns:
//   - []animator.Mixing: the transitions in declaration order, reverse pairs directly after their entry
//   - error: an error wrapping ErrUnknownAnimation
func (s *MixSpec) Resolve(lookup Lookup) ([]animator.Mixing, error) {
	var (
		mixings = make([]animator.Mixing, 0, len(s.Mixes))
		errs    []error
	)
	resolve := func(i int, name string) animator.Animation {
		anim, ok := lookup(name)
		if !ok {
			errs = append(errs, fmt.Errorf("config: mixes[%d]: %w %q", i, ErrUnknownAnimation, name))
		}
		return anim
	}

	for i, e := range s.Mixes {
		from, to := resolve(i, e.From), resolve(i, e.To)
		if from == nil || to == nil {
			continue
		}
		mixings = append(mixings, animator.Mixing{From: from, To: to, Duration: float32(e.Duration)})
		if e.Bidirectional {
			mixings = append(mixings, animator.Mixing{From: to, To: from, Duration: float32(e.Duration)})
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return mixings, nil
}

// Apply replaces the contents of table with the spec's transitions. On error
// the table is left as it was.
//
// Parameters:
//   - table: the table to overwrite
//   - lookup: resolves animation names
//
// Returns:
//   - error: a resolution error or the table's validation error
func (s *MixSpec) Apply(table animator.MixTable, lookup Lookup) error {
	mixings, err := s.Resolve(lookup)
	if err != nil {
		return err
	}
	if err := table.Reset(mixings...); err != nil {
		return fmt.Errorf("config: apply mixes: %w", err)
	}
	return nil
}

// ClipLookup resolves names against the animation clips of the given models.
// Earlier models take precedence when several define the same clip name.
//
// Parameters:
//   - models: the models whose clips can be named
//
// Returns:
//   - Lookup: the name resolver
func ClipLookup(models ...model.Model) Lookup {
	return func(name string) (animator.Animation, bool) {
		for _, m := range models {
			if m == nil {
				continue
			}
			if clip, ok := m.Animation(name); ok {
				return clip, true
			}
		}
		return nil, false
	}
}
