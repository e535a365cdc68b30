package h2d

import "testing"

func TestCreateIsActiveAfterFlush(t *testing.T) {
	w, _, _ := newTestWorld(t)
	e := w.Create()
	if got := w.State(e); got != StateUninitialized {
		t.Errorf("State before Flush = %v, want %v", got, StateUninitialized)
	}
	w.Flush()
	if got := w.State(e); got != StateActive {
		t.Errorf("State after Flush = %v, want %v", got, StateActive)
	}
	if w.Len() != 1 {
		t.Errorf("Len = %d, want 1", w.Len())
	}
}

func TestDeleteIsDeferredUntilFlush(t *testing.T) {
	w, _, _ := newTestWorld(t)
	e := w.Create()
	w.Flush()

	w.Delete(e)
	if !w.Valid(e) {
		t.Fatal("entity removed before Flush")
	}
	if w.Alive(e) {
		t.Error("Alive = true after Delete, want false")
	}
	w.Flush()
	if w.Valid(e) {
		t.Error("Valid = true after Flush, want false")
	}
	if got := w.State(e); got != StateRemoved {
		t.Errorf("State = %v, want %v", got, StateRemoved)
	}
}

func TestDeleteTwiceIsNoop(t *testing.T) {
	w, _, _ := newTestWorld(t)
	e := w.Create()
	w.Flush()

	removed := 0
	OnEntityRemoved(w, func(EntityRemovedEvent) { removed++ })
	w.Delete(e)
	w.Delete(e)
	w.Process(0)
	if removed != 1 {
		t.Errorf("removed events = %d, want 1", removed)
	}
}

func TestDeleteAll(t *testing.T) {
	w, _, _ := newTestWorld(t)
	for i := 0; i < 5; i++ {
		w.Create()
	}
	w.Flush()
	w.DeleteAll()
	w.Flush()
	if w.Len() != 0 {
		t.Errorf("Len = %d, want 0", w.Len())
	}
}

type orderSystem struct {
	name string
	log  *[]string
}

func (s *orderSystem) Update(w *World, dt float64) {
	*s.log = append(*s.log, s.name)
}

func TestEntitiesKeepCreationOrderAcrossIdReuse(t *testing.T) {
	w, _, _ := newTestWorld(t)
	a := w.Create()
	b := w.Create()
	w.Flush()
	w.Delete(a)
	w.Flush()

	// c may take over a's recycled id.
	c := w.Create()
	w.Flush()

	got := w.Entities()
	if len(got) != 2 || got[0] != b || got[1] != c {
		t.Errorf("Entities = %v, want [%v %v]", got, b, c)
	}
}

func TestSystemsRunByPriority(t *testing.T) {
	w, _, _ := newTestWorld(t)
	var log []string
	w.AddSystem(PriorityLow, &orderSystem{"low", &log})
	w.AddSystem(PriorityHigh, &orderSystem{"high", &log})
	w.AddSystem(PriorityNormal, &orderSystem{"normal-a", &log})
	w.AddSystem(PriorityNormal, &orderSystem{"normal-b", &log})

	w.Process(0.016)
	assertLog(t, log, "high", "normal-a", "normal-b", "low")
}

type deletingSystem struct {
	target Entity
}

func (s *deletingSystem) Update(w *World, dt float64) {
	w.Delete(s.target)
}

func TestProcessFlushesAfterEachSystem(t *testing.T) {
	w, _, _ := newTestWorld(t)
	e := w.Create()
	var seen []bool
	w.AddSystem(PriorityHigh, &deletingSystem{target: e})
	w.AddSystem(PriorityLow, SystemFunc(func(w *World, dt float64) {
		seen = append(seen, w.Valid(e))
	}))
	w.Process(0)
	if len(seen) != 1 || seen[0] {
		t.Errorf("entity still valid in the next system: %v", seen)
	}
}

func TestEntityStateString(t *testing.T) {
	tests := []struct {
		s    EntityState
		want string
	}{
		{StateUninitialized, "uninitialized"},
		{StateInserted, "inserted"},
		{StateActive, "active"},
		{StateRemoved, "removed"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
