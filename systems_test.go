package h2d

import "testing"

func TestScriptSystemActs(t *testing.T) {
	w, ci, c := newTestWorld(t)
	var log []string
	early := &recordingScript{name: "early", log: &log}
	e := newItem(w, "e")
	AttachScript(w, e, early)
	w.Flush()

	sys := &ScriptSystem{coord: c, index: ci}
	sys.Update(w, 0.016)
	if early.acts != 1 {
		t.Errorf("acts = %d, want 1", early.acts)
	}

	// Attached to an active entity: initialized by the next update.
	late := &recordingScript{name: "late", log: &log}
	AttachScript(w, e, late)
	sys.Update(w, 0.016)
	assertLog(t, log, "init:early", "init:late")
	if early.acts != 2 || late.acts != 1 {
		t.Errorf("acts = %d, %d, want 2, 1", early.acts, late.acts)
	}
}

func TestScriptSystemSkipsPendingEntities(t *testing.T) {
	w, ci, c := newTestWorld(t)
	var log []string
	s := &recordingScript{name: "s", log: &log}
	e := newItem(w, "e")
	AttachScript(w, e, s)

	(&ScriptSystem{coord: c, index: ci}).Update(w, 0.016)
	if s.acts != 0 || len(log) != 0 {
		t.Errorf("script ran before its entity was inserted: acts %d, log %v", s.acts, log)
	}
}

func TestCullingSystem(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", NewStretchViewport(4, 2), false); err != nil {
		t.Fatal(err)
	}
	l.Physics().SetEnabled(false)
	l.Update(0)

	w := l.World()
	want := map[string]bool{"ground": false, "enemy": true, "group": false, "inner": false}
	for _, e := range w.Entities() {
		mi := MainItem.Get(w.Entry(e))
		culled, ok := want[mi.Name]
		if !ok {
			continue
		}
		if mi.Culled != culled {
			t.Errorf("%s culled = %v, want %v", mi.Name, mi.Culled, culled)
		}
	}
}

func TestPhysicsSystemCopiesBodyPosition(t *testing.T) {
	l := newTestLoader(t)
	if _, err := l.LoadScene("Level1", nil, false); err != nil {
		t.Fatal(err)
	}
	w := l.World()
	enemy := l.EntitiesByTag("enemy")[0]
	ground := Children(w, l.Root())[0]

	for i := 0; i < 10; i++ {
		l.Update(1.0 / 60)
	}
	if y := Transform.Get(w.Entry(enemy)).Y; y >= 4 {
		t.Errorf("enemy Y = %v, want below 4 after falling", y)
	}
	if y := Transform.Get(w.Entry(ground)).Y; y != 0 {
		t.Errorf("static ground Y = %v, want 0", y)
	}

	sys, _ := l.cfg.System(&PhysicsSystem{})
	sys.(*PhysicsSystem).SetPhysicsOn(false)
	before := Transform.Get(w.Entry(enemy)).Y
	l.Update(1.0 / 60)
	if after := Transform.Get(w.Entry(enemy)).Y; after != before {
		t.Errorf("enemy moved while physics off: %v -> %v", before, after)
	}
}
