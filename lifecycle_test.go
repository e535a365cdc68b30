package h2d

import (
	"errors"
	"testing"

	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/physics"
)

func TestRemovalCascadesThroughDeepTree(t *testing.T) {
	w, _, _ := newTestWorld(t)
	root := newItem(w, "root")
	chain := []Entity{root}
	for i := 0; i < 20; i++ {
		e := newItem(w, "child")
		AddChild(w, chain[len(chain)-1], e)
		chain = append(chain, e)
	}
	sibling := newItem(w, "sibling")
	AddChild(w, root, sibling)
	w.Flush()

	w.Delete(root)
	w.Flush()

	for i, e := range append(chain, sibling) {
		if w.Valid(e) {
			t.Errorf("entity %d still valid after cascade", i)
		}
	}
	if w.Len() != 0 {
		t.Errorf("Len = %d, want 0", w.Len())
	}
}

func TestRemovalDetachesFromParent(t *testing.T) {
	w, _, _ := newTestWorld(t)
	parent := newItem(w, "parent")
	a := newItem(w, "a")
	b := newItem(w, "b")
	AddChild(w, parent, a)
	AddChild(w, parent, b)
	w.Flush()

	w.Delete(a)
	w.Flush()

	assertEntities(t, Children(w, parent), []Entity{b})
	if !w.Alive(parent) {
		t.Error("parent removed with child")
	}
}

func TestRemovalReleasesPhysicsBody(t *testing.T) {
	w := NewWorld(0, nil)
	ci := NewComponentIndex()
	ci.Initialize(w)
	phys := physics.New(0, -10)
	w.AddHooks(NewLifecycleCoordinator(ci, phys, nil, nil, nil))

	parent := newItem(w, "parent")
	child := newItem(w, "child")
	AddChild(w, parent, child)
	body := phys.CreateBody(physics.BodyDef{Type: physics.BodyDynamic, Width: 1, Height: 1, Density: 1})
	setComponent(w.Entry(child), PhysicsBody, PhysicsBodyData{Body: body})
	w.Flush()

	var released bool
	OnEntityRemoved(w, func(ev EntityRemovedEvent) {
		if ev.Entity == child {
			released = !phys.HasBody(body)
		}
	})
	w.Delete(parent)
	w.Process(0)

	if phys.HasBody(body) {
		t.Error("body still in physics world")
	}
	if phys.BodyCount() != 0 {
		t.Errorf("BodyCount = %d, want 0", phys.BodyCount())
	}
	if !released {
		t.Error("body not released before the removal event")
	}
}

func TestRemovalReleasesLights(t *testing.T) {
	w := NewWorld(0, nil)
	ci := NewComponentIndex()
	ci.Initialize(w)
	sim := lighting.New(lighting.Options{Diffuse: true})
	w.AddHooks(NewLifecycleCoordinator(ci, nil, sim, nil, nil))

	e := newItem(w, "lamp")
	obj := lighting.NewPointLight(sim, 8, lighting.Color{R: 1, G: 1, B: 1, A: 1}, 5, 0, 0)
	attached := lighting.NewPointLight(sim, 8, lighting.Color{R: 1, G: 1, B: 1, A: 1}, 5, 0, 0)
	setComponent(w.Entry(e), LightObject, LightObjectData{Light: obj})
	setComponent(w.Entry(e), LightBody, LightBodyData{Light: attached})
	w.Flush()

	w.Delete(e)
	w.Flush()

	if sim.Contains(obj) || sim.Contains(attached) {
		t.Error("lights still registered after removal")
	}
	if len(sim.Lights()) != 0 {
		t.Errorf("lights = %d, want 0", len(sim.Lights()))
	}
}

func TestScriptInitBeforeDisposeInSameFlush(t *testing.T) {
	w, _, _ := newTestWorld(t)
	var log []string
	e := newItem(w, "short-lived")
	AttachScript(w, e, &recordingScript{name: "a", log: &log})

	w.Delete(e)
	w.Flush()

	assertLog(t, log, "init:a", "dispose:a")
}

func TestScriptsInitOnceInOrder(t *testing.T) {
	w, _, _ := newTestWorld(t)
	var log []string
	e := newItem(w, "e")
	AttachScript(w, e, &recordingScript{name: "a", log: &log})
	AttachScript(w, e, &recordingScript{name: "b", log: &log})
	w.Flush()
	w.Flush()

	assertLog(t, log, "init:a", "init:b")
}

func TestFailedInitIsStillDisposed(t *testing.T) {
	w, _, _ := newTestWorld(t)
	var log []string
	e := newItem(w, "e")
	AttachScript(w, e, &recordingScript{name: "a", log: &log, initErr: errors.New("bad init")})
	w.Flush()

	w.Delete(e)
	w.Flush()

	assertLog(t, log, "init:a", "dispose:a")
}

func TestDisposeFailuresAreIsolated(t *testing.T) {
	w, _, c := newTestWorld(t)
	var log []string
	errA := errors.New("dispose a")
	e := newItem(w, "e")
	AttachScript(w, e, &recordingScript{name: "a", log: &log, disposeErr: errA})
	AttachScript(w, e, &recordingScript{name: "b", log: &log, panicDispose: true})
	AttachScript(w, e, &recordingScript{name: "c", log: &log})
	w.Flush()

	w.Delete(e)
	w.Flush()

	assertLog(t, log, "init:a", "init:b", "init:c", "dispose:a", "dispose:b", "dispose:c")
	err := c.LastRemovalError()
	if !errors.Is(err, errA) {
		t.Errorf("LastRemovalError = %v, want it to wrap %v", err, errA)
	}
	if w.Valid(e) {
		t.Error("entity still valid after failed dispose")
	}
}

func TestDisposeFailuresOfOneFlushAreKept(t *testing.T) {
	w, _, c := newTestWorld(t)
	var log []string
	errA := errors.New("dispose a")
	errB := errors.New("dispose b")
	a := newItem(w, "a")
	b := newItem(w, "b")
	AttachScript(w, a, &recordingScript{name: "a", log: &log, disposeErr: errA})
	AttachScript(w, b, &recordingScript{name: "b", log: &log, disposeErr: errB})
	w.Flush()

	w.Delete(a)
	w.Delete(b)
	w.Flush()

	err := c.LastRemovalError()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("LastRemovalError = %v, want it to wrap %v and %v", err, errA, errB)
	}

	// The next Flush with work starts clean.
	newItem(w, "c")
	w.Flush()
	if err := c.LastRemovalError(); err != nil {
		t.Errorf("LastRemovalError after clean Flush = %v, want nil", err)
	}
}

func TestRemovedEventCarriesName(t *testing.T) {
	w, _, _ := newTestWorld(t)
	e := newItem(w, "enemy")
	w.Flush()

	var got []EntityRemovedEvent
	OnEntityRemoved(w, func(ev EntityRemovedEvent) { got = append(got, ev) })
	w.Delete(e)
	w.Process(0)

	if len(got) != 1 {
		t.Fatalf("events = %d, want 1", len(got))
	}
	if got[0].Name != "enemy" || got[0].Type != EntityImage {
		t.Errorf("event = %+v, want name enemy, type image", got[0])
	}
}
