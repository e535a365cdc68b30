package h2d

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// recordingScript logs its lifecycle calls into a shared slice.
type recordingScript struct {
	name         string
	log          *[]string
	initErr      error
	disposeErr   error
	panicDispose bool
	acts         int
}

func (s *recordingScript) Init(e Entity) error {
	*s.log = append(*s.log, "init:"+s.name)
	return s.initErr
}

func (s *recordingScript) Act(dt float64) {
	s.acts++
}

func (s *recordingScript) Dispose() error {
	*s.log = append(*s.log, "dispose:"+s.name)
	if s.panicDispose {
		panic("dispose " + s.name)
	}
	return s.disposeErr
}

// newTestWorld returns a world with a bound index and a coordinator that has
// no physics, lights or renderer.
func newTestWorld(t *testing.T) (*World, *ComponentIndex, *LifecycleCoordinator) {
	t.Helper()
	w := NewWorld(0, nil)
	ci := NewComponentIndex()
	ci.Initialize(w)
	c := NewLifecycleCoordinator(ci, nil, nil, nil, nil)
	w.AddHooks(c)
	return w, ci, c
}

// newItem creates an active-on-next-flush item with the base components.
func newItem(w *World, name string) Entity {
	e := w.Create(MainItem, Transform, Dimensions, Tint, ZIndex)
	MainItem.SetValue(w.Entry(e), MainItemData{Name: name, Visible: true, Type: EntityImage})
	return e
}

func assertEntities(t *testing.T, got, want []Entity) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v vs %v)", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func assertLog(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("log = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
