package animator

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMixTableSetMixingRejectsAbsentAnimations(t *testing.T) {
	_, a := newFakes("walk")
	var typedNil *fakeAnimation

	cases := []struct {
		name     string
		from, to Animation
	}{
		{"nil_from", nil, a[0]},
		{"nil_to", a[0], nil},
		{"both_nil", nil, nil},
		{"typed_nil_from", typedNil, a[0]},
		{"typed_nil_to", a[0], typedNil},
		{"not_comparable_from", sliceAnimation{}, a[0]},
		{"not_comparable_to", a[0], sliceAnimation{frames: []float32{1}}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			table := NewMixTable()
			err := table.SetMixing(c.from, c.to, 0.2)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if table.Len() != 0 {
				t.Fatalf("expected empty table after rejected entry, got %d entries", table.Len())
			}
		})
	}
}

func TestMixTableLookup(t *testing.T) {
	_, a := newFakes("walk", "run", "idle")
	walk, run, idle := a[0], a[1], a[2]

	table := NewMixTable()
	if err := table.SetMixing(walk, run, 0.3); err != nil {
		t.Fatalf("SetMixing: %v", err)
	}
	if err := table.SetMixing(idle, walk, 0); err != nil {
		t.Fatalf("SetMixing: %v", err)
	}
	if err := table.SetMixing(run, idle, -1); err != nil {
		t.Fatalf("SetMixing: %v", err)
	}

	tests := []struct {
		name     string
		from, to Animation
		want     float32
		wantOK   bool
	}{
		{"registered", walk, run, 0.3, true},
		{"reverse_is_independent", run, walk, 0, false},
		{"zero_is_found", idle, walk, 0, true},
		{"negative_is_stored", run, idle, -1, true},
		{"unregistered", walk, idle, 0, false},
		{"self", walk, walk, 0, false},
		{"nil_from", nil, walk, 0, false},
		{"not_comparable", sliceAnimation{}, walk, 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := table.Mixing(tc.from, tc.to)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("Mixing = (%v, %v), want (%v, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestMixTableOverwrite(t *testing.T) {
	_, a := newFakes("a", "b")
	table := NewMixTable()

	for _, d := range []float32{0.1, 0.5} {
		if err := table.SetMixing(a[0], a[1], d); err != nil {
			t.Fatalf("SetMixing: %v", err)
		}
	}

	if got, ok := table.Mixing(a[0], a[1]); !ok || got != 0.5 {
		t.Fatalf("expected overwritten duration 0.5, got (%v, %v)", got, ok)
	}
	if _, ok := table.Mixing(a[1], a[0]); ok {
		t.Fatal("reverse pair must stay unregistered")
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", table.Len())
	}
}

func TestMixTableReset(t *testing.T) {
	_, a := newFakes("walk", "run", "jump")
	walk, run, jump := a[0], a[1], a[2]

	table := NewMixTable(WithMixing(walk, run, 0.3))

	t.Run("invalid_entry_leaves_table_unchanged", func(t *testing.T) {
		err := table.Reset(Mixing{From: run, To: jump, Duration: 1}, Mixing{From: nil, To: walk, Duration: 1})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if d, ok := table.Mixing(walk, run); !ok || d != 0.3 {
			t.Fatalf("original entry lost: (%v, %v)", d, ok)
		}
		if _, ok := table.Mixing(run, jump); ok {
			t.Fatal("partial reset must not be visible")
		}
	})

	t.Run("replaces_all_entries", func(t *testing.T) {
		err := table.Reset(
			Mixing{From: run, To: jump, Duration: 0.1},
			Mixing{From: jump, To: run, Duration: 0.2},
			Mixing{From: jump, To: run, Duration: 0.4},
		)
		if err != nil {
			t.Fatalf("Reset: %v", err)
		}
		if _, ok := table.Mixing(walk, run); ok {
			t.Fatal("entry absent from the reset set must be removed")
		}

		got := table.Mixings()
		sort.Slice(got, func(i, j int) bool { return got[i].Duration < got[j].Duration })
		want := []Mixing{
			{From: run, To: jump, Duration: 0.1},
			{From: jump, To: run, Duration: 0.4},
		}
		if !cmp.Equal(want, got, approx, sameAnim) {
			t.Fatalf("unexpected entries:\n--- want:\n+++ got:\n%s", cmp.Diff(want, got, approx, sameAnim))
		}
	})
}

func TestWithMixingPanicsOnAbsentAnimation(t *testing.T) {
	_, a := newFakes("walk")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for nil animation")
		}
	}()
	NewMixTable(WithMixing(a[0], nil, 1))
}
