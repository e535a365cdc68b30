package h2d

import "testing"

func TestLocalTransformTranslation(t *testing.T) {
	m := localTransform(&TransformData{X: 3, Y: 4, ScaleX: 1, ScaleY: 1})
	x, y := transformPoint(m, 1, 1)
	if !approxEqual(x, 4, epsilon) || !approxEqual(y, 5, epsilon) {
		t.Errorf("point = (%v, %v), want (4, 5)", x, y)
	}
}

func TestLocalTransformRotatesAroundOrigin(t *testing.T) {
	td := &TransformData{OriginX: 1, OriginY: 1, ScaleX: 1, ScaleY: 1, Rotation: 90}
	m := localTransform(td)

	// The origin is a fixed point.
	x, y := transformPoint(m, 1, 1)
	if !approxEqual(x, 1, epsilon) || !approxEqual(y, 1, epsilon) {
		t.Errorf("origin = (%v, %v), want (1, 1)", x, y)
	}
	// (2, 1) is one unit right of the origin; counter-clockwise 90 puts it above.
	x, y = transformPoint(m, 2, 1)
	if !approxEqual(x, 1, epsilon) || !approxEqual(y, 2, epsilon) {
		t.Errorf("point = (%v, %v), want (1, 2)", x, y)
	}
}

func TestLocalTransformScale(t *testing.T) {
	m := localTransform(&TransformData{ScaleX: 2, ScaleY: 3})
	x, y := transformPoint(m, 1, 1)
	if !approxEqual(x, 2, epsilon) || !approxEqual(y, 3, epsilon) {
		t.Errorf("point = (%v, %v), want (2, 3)", x, y)
	}
}

func TestInvertAffineRoundTrip(t *testing.T) {
	m := localTransform(&TransformData{X: 5, Y: -2, OriginX: 1, ScaleX: 2, ScaleY: 0.5, Rotation: 30})
	inv := invertAffine(m)
	x, y := transformPoint(m, 3, 7)
	x, y = transformPoint(inv, x, y)
	if !approxEqual(x, 3, 1e-9) || !approxEqual(y, 7, 1e-9) {
		t.Errorf("round trip = (%v, %v), want (3, 7)", x, y)
	}
}

func TestWorldTransformComposesParents(t *testing.T) {
	w, _, _ := newTestWorld(t)
	p := newItem(w, "p")
	c := newItem(w, "c")
	AddChild(w, p, c)
	SetPosition(w, p, 10, 20)
	SetScale(w, p, 2, 2)
	SetPosition(w, c, 1, 1)

	x, y := LocalToWorld(w, c, 0, 0)
	if !approxEqual(x, 12, epsilon) || !approxEqual(y, 22, epsilon) {
		t.Errorf("LocalToWorld = (%v, %v), want (12, 22)", x, y)
	}
	lx, ly := WorldToLocal(w, c, x, y)
	if !approxEqual(lx, 0, epsilon) || !approxEqual(ly, 0, epsilon) {
		t.Errorf("WorldToLocal = (%v, %v), want (0, 0)", lx, ly)
	}
}

func TestWorldAABB(t *testing.T) {
	m := localTransform(&TransformData{X: 1, Y: 2, ScaleX: 1, ScaleY: 1, Rotation: 90})
	r := worldAABB(m, 4, 2)
	// Rotating (0,0)-(4,2) by 90 about (0,0) spans x in [-2, 0], y in [0, 4].
	want := Rect{X: -1, Y: 2, Width: 2, Height: 4}
	if !approxEqual(r.X, want.X, 1e-9) || !approxEqual(r.Y, want.Y, 1e-9) ||
		!approxEqual(r.Width, want.Width, 1e-9) || !approxEqual(r.Height, want.Height, 1e-9) {
		t.Errorf("worldAABB = %+v, want %+v", r, want)
	}
}
