package scene

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-mix/engine/animator"
	"github.com/Carmen-Shannon/oxy-mix/engine/game_object"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
	"github.com/google/go-cmp/cmp"
)

func holdClip(name string, x float32) *model.AnimationClip {
	return &model.AnimationClip{
		Name:     name,
		Duration: 1,
		Channels: []model.AnimationChannel{{
			BoneIndex:    0,
			PositionKeys: []model.VectorKeyframe{{Time: 0, Value: [3]float32{x, 0, 0}}},
		}},
	}
}

func foxModel() model.Model {
	skeleton := model.NewSkeleton([]model.Bone{
		{Name: "root", ParentIndex: -1, LocalTransform: model.IdentityTransform()},
	})
	return model.NewModel(
		model.WithName("fox"),
		model.WithSkeleton(skeleton),
		model.WithAnimations(holdClip("walk", 0), holdClip("run", 4)),
	)
}

func ids(objs []game_object.GameObject) []uint64 {
	out := make([]uint64, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.ID())
	}
	return out
}

func TestRegistry(t *testing.T) {
	preset := game_object.NewGameObject(game_object.WithID(5))
	s := NewScene("forest", WithObjects(game_object.NewGameObject(), preset), WithComputeWorkers(2))
	defer s.Release()

	if s.Name() != "forest" || !s.Active() || s.MixTable() == nil {
		t.Fatalf("unexpected defaults: name=%q active=%v", s.Name(), s.Active())
	}
	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}

	id := s.Add(game_object.NewGameObject())
	if s.Get(id) == nil {
		t.Fatalf("Get(%d) = nil after Add", id)
	}
	if diff := cmp.Diff([]uint64{1, 2, 5}, ids(s.GameObjects())); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}

	if !s.Remove(5) || s.Remove(5) {
		t.Fatal("Remove must report whether an object was removed")
	}
	if s.Get(5) != nil {
		t.Fatal("removed object is still registered")
	}

	s.Clear()
	if s.Count() != 0 {
		t.Fatalf("Count after Clear = %d", s.Count())
	}
}

func TestAddSkipsTakenIDs(t *testing.T) {
	s := NewScene("ids", WithObjects(game_object.NewGameObject(game_object.WithID(1))))
	defer s.Release()

	if id := s.Add(game_object.NewGameObject()); id != 2 {
		t.Fatalf("Add assigned %d, want 2", id)
	}
}

func TestAddNilPanics(t *testing.T) {
	s := NewScene("nil")
	defer s.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected Add(nil) to panic")
		}
	}()
	s.Add(nil)
}

func TestSpawnSharesMixTable(t *testing.T) {
	table := animator.NewMixTable()
	s := NewScene("shared", WithMixTable(table))
	defer s.Release()

	a := s.Spawn(foxModel(), game_object.WithName("a"))
	b := s.Spawn(foxModel())

	if a.AnimationState().MixTable() != table || b.AnimationState().MixTable() != table {
		t.Fatal("spawned objects must read the scene's table")
	}
	if a.Name() != "a" || s.Count() != 2 {
		t.Fatalf("unexpected spawn result: name=%q count=%d", a.Name(), s.Count())
	}
}

func TestUpdateAnimatesEnabledObjects(t *testing.T) {
	m := foxModel()
	walk, _ := m.Animation("walk")
	run, _ := m.Animation("run")
	s := NewScene("crowd", WithMixTable(animator.NewMixTable(animator.WithMixing(walk, run, 1))), WithComputeWorkers(4))
	defer s.Release()

	const actors = 40
	for i := range actors {
		obj := s.Spawn(m, game_object.WithName(fmt.Sprintf("fox-%d", i)))
		if err := obj.Play("walk", true); err != nil {
			t.Fatal(err)
		}
	}
	disabled := s.Spawn(m, game_object.WithEnabled(false))
	if err := disabled.Play("walk", true); err != nil {
		t.Fatal(err)
	}

	s.Update(0)
	for _, obj := range s.GameObjects() {
		if err := obj.Play("run", true); err != nil {
			t.Fatal(err)
		}
	}
	s.Update(0.5)

	for _, obj := range s.GameObjects() {
		x := obj.Skeleton().Bones[0].LocalTransform.Translation[0]
		if obj.ID() == disabled.ID() {
			if obj.AnimationState().MixTime() != 0 {
				t.Errorf("disabled object advanced: mix time %v", obj.AnimationState().MixTime())
			}
			continue
		}
		if x != 2 {
			t.Errorf("%s: root x = %v, want 2 halfway through the crossfade", obj.Name(), x)
		}
	}
}

func TestReleaseStopsUpdates(t *testing.T) {
	s := NewScene("done")
	obj := s.Spawn(foxModel())
	if err := obj.Play("run", true); err != nil {
		t.Fatal(err)
	}

	s.Release()
	s.Release()
	s.Update(0.5)

	if obj.AnimationState().Time() != 0 {
		t.Fatalf("a released scene must not animate, time=%v", obj.AnimationState().Time())
	}
}
