package animator

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// call is one pose operation observed by a fakeAnimation.
type call struct {
	Op    string
	Anim  string
	Time  float32
	Loop  bool
	Alpha float32
}

// recorder collects pose operations in call order across animations.
type recorder struct {
	calls []call
}

func (r *recorder) take() []call {
	c := r.calls
	r.calls = nil
	return c
}

type fakeAnimation struct {
	name string
	rec  *recorder
}

func (f *fakeAnimation) Apply(_ *model.Skeleton, time float32, loop bool) {
	f.rec.calls = append(f.rec.calls, call{Op: "apply", Anim: f.name, Time: time, Loop: loop, Alpha: 1})
}

func (f *fakeAnimation) Mix(_ *model.Skeleton, time float32, loop bool, alpha float32) {
	f.rec.calls = append(f.rec.calls, call{Op: "mix", Anim: f.name, Time: time, Loop: loop, Alpha: alpha})
}

func (f *fakeAnimation) String() string { return f.name }

// sliceAnimation is an Animation whose dynamic type cannot be a map key.
type sliceAnimation struct {
	frames []float32
}

func (sliceAnimation) Apply(*model.Skeleton, float32, bool)        {}
func (sliceAnimation) Mix(*model.Skeleton, float32, bool, float32) {}

var (
	approx   = cmpopts.EquateApprox(0, 1e-5)
	sameAnim = cmp.Comparer(func(a, b *fakeAnimation) bool { return a == b })
)

func newFakes(names ...string) (*recorder, []*fakeAnimation) {
	rec := &recorder{}
	anims := make([]*fakeAnimation, len(names))
	for i, n := range names {
		anims[i] = &fakeAnimation{name: n, rec: rec}
	}
	return rec, anims
}
