package physics

import "testing"

func TestNewWorldGravity(t *testing.T) {
	w := New(0, -10)
	x, y := w.Gravity()
	if x != 0 || y != -10 {
		t.Errorf("Gravity = (%v, %v), want (0, -10)", x, y)
	}
	if !w.Enabled() {
		t.Error("Enabled = false, want true")
	}
}

func TestSetGravity(t *testing.T) {
	w := New(0, -10)
	w.SetGravity(1, 2)
	x, y := w.Gravity()
	if x != 1 || y != 2 {
		t.Errorf("Gravity = (%v, %v), want (1, 2)", x, y)
	}
}

func TestCreateAndDestroyBody(t *testing.T) {
	w := New(0, -10)
	b := w.CreateBody(BodyDef{Type: BodyDynamic, X: 1, Y: 2, Width: 1, Height: 1, Density: 1})
	if !w.HasBody(b) {
		t.Fatal("HasBody = false after CreateBody")
	}
	if w.BodyCount() != 1 {
		t.Errorf("BodyCount = %d, want 1", w.BodyCount())
	}
	p := b.Position()
	if p.X != 1 || p.Y != 2 {
		t.Errorf("Position = (%v, %v), want (1, 2)", p.X, p.Y)
	}

	w.DestroyBody(b)
	if w.HasBody(b) {
		t.Error("HasBody = true after DestroyBody")
	}
	if w.BodyCount() != 0 {
		t.Errorf("BodyCount = %d, want 0", w.BodyCount())
	}
	// Second destroy is ignored.
	w.DestroyBody(b)
	w.DestroyBody(nil)
}

func TestStepMovesDynamicBodyWhenEnabled(t *testing.T) {
	w := New(0, -10)
	b := w.CreateBody(BodyDef{Type: BodyDynamic, Width: 1, Height: 1, Density: 1})

	w.SetEnabled(false)
	w.Step(1.0 / 60)
	if b.Position().Y != 0 {
		t.Errorf("Y = %v after disabled step, want 0", b.Position().Y)
	}

	w.SetEnabled(true)
	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60)
	}
	if b.Position().Y >= 0 {
		t.Errorf("Y = %v after enabled steps, want < 0", b.Position().Y)
	}
}

func TestStaticBodyDoesNotFall(t *testing.T) {
	w := New(0, -10)
	b := w.CreateBody(BodyDef{Type: BodyStatic, Y: 5, Width: 2, Height: 1})
	w.Step(1.0 / 60)
	if b.Position().Y != 5 {
		t.Errorf("Y = %v, want 5", b.Position().Y)
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	w := New(0, -10)
	w.CreateBody(BodyDef{Type: BodyDynamic, Width: 1, Height: 1})
	w.CreateBody(BodyDef{Type: BodyStatic, Width: 1, Height: 1})
	w.Dispose()
	w.Dispose()
	if w.BodyCount() != 0 {
		t.Errorf("BodyCount = %d, want 0", w.BodyCount())
	}
	if !w.Disposed() {
		t.Error("Disposed = false")
	}
}

func TestParseBodyType(t *testing.T) {
	if ParseBodyType("dynamic") != BodyDynamic {
		t.Error("dynamic")
	}
	if ParseBodyType("KINEMATIC") != BodyKinematic {
		t.Error("kinematic")
	}
	if ParseBodyType("whatever") != BodyStatic {
		t.Error("default should be static")
	}
}
