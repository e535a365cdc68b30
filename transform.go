package h2d

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// localTransform computes the local affine matrix [a, b, c, d, tx, ty] of an
// item. Scale and rotation pivot around the origin; rotation is in degrees.
//
//	Translate(-Origin) -> Scale -> Rotate -> Translate(X + OriginX, Y + OriginY)
func localTransform(t *TransformData) [6]float64 {
	sin, cos := math.Sincos(t.Rotation * math.Pi / 180)
	sx, sy := t.ScaleX, t.ScaleY
	ox, oy := t.OriginX, t.OriginY

	a := cos * sx
	b := sin * sx
	c := -sin * sy
	d := cos * sy
	return [6]float64{
		a, b, c, d,
		-(a*ox + c*oy) + t.X + ox,
		-(b*ox + d*oy) + t.Y + oy,
	}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine returns the inverse of m, or the identity when m is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if math.Abs(det) < 1e-12 {
		return identityTransform
	}
	inv := 1 / det
	a, b := m[3]*inv, -m[1]*inv
	c, d := -m[2]*inv, m[0]*inv
	return [6]float64{a, b, c, d, -(a*m[4] + c*m[5]), -(b*m[4] + d*m[5])}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// worldAABB returns the bounding box of the rectangle (0, 0, w, h) under m.
func worldAABB(m [6]float64, w, h float64) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x, y := transformPoint(m, p[0], p[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// LocalTransform returns the local matrix of e, or the identity when e has
// no Transform.
func LocalTransform(w *World, e Entity) [6]float64 {
	if !w.Valid(e) {
		return identityTransform
	}
	entry := w.Entry(e)
	if !entry.HasComponent(Transform) {
		return identityTransform
	}
	return localTransform(Transform.Get(entry))
}

// WorldTransform returns the matrix mapping e's local space to the root's
// space by composing the transforms of e and its ancestors.
func WorldTransform(w *World, e Entity) [6]float64 {
	m := LocalTransform(w, e)
	for p, ok := Parent(w, e); ok; p, ok = Parent(w, p) {
		m = multiplyAffine(LocalTransform(w, p), m)
	}
	return m
}

// LocalToWorld converts a point in e's local space to root space.
func LocalToWorld(w *World, e Entity, lx, ly float64) (float64, float64) {
	return transformPoint(WorldTransform(w, e), lx, ly)
}

// WorldToLocal converts a point in root space to e's local space.
func WorldToLocal(w *World, e Entity, wx, wy float64) (float64, float64) {
	return transformPoint(invertAffine(WorldTransform(w, e)), wx, wy)
}

// --- Transform property setters ---

// SetPosition sets the local X and Y of e.
func SetPosition(w *World, e Entity, x, y float64) {
	t := Transform.Get(w.Entry(e))
	t.X, t.Y = x, y
}

// SetScale sets the ScaleX and ScaleY of e.
func SetScale(w *World, e Entity, sx, sy float64) {
	t := Transform.Get(w.Entry(e))
	t.ScaleX, t.ScaleY = sx, sy
}

// SetRotation sets the rotation of e in degrees.
func SetRotation(w *World, e Entity, deg float64) {
	Transform.Get(w.Entry(e)).Rotation = deg
}
