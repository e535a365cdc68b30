package h2d

import (
	"math"
	"slices"

	"github.com/phanxgames/h2d/resources"
)

// PolygonSprite is a fan-triangulated textured polygon. Local vertices are in
// region pixel space, y-up; source coordinates are atlas page pixels and may
// extend past the region, in which case the region shader wraps them.
//
// The world position of a local vertex v is
//
//	Rotate((v - Origin) * Scale) + (X + OriginX, Y + OriginY)
type PolygonSprite struct {
	Region *resources.Region

	X, Y             float64
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
	Rotation         float64 // degrees
	Color            Color

	local   []Vec2
	src     []Vec2
	indices []uint16
}

// NewPolygonSprite builds a sprite from a polygon given in region pixels
// relative to the region's bottom-left corner. offset is subtracted from
// every local vertex so the mesh can be centered. Returns nil when the
// polygon has fewer than 3 points or the region is empty.
func NewPolygonSprite(region *resources.Region, points []Vec2, offset Vec2) *PolygonSprite {
	if region == nil || region.RegionWidth() == 0 || len(points) < 3 {
		return nil
	}
	n := len(points)
	ps := &PolygonSprite{
		Region:  region,
		ScaleX:  1,
		ScaleY:  1,
		Color:   ColorWhite,
		local:   make([]Vec2, n),
		src:     make([]Vec2, n),
		indices: make([]uint16, 0, (n-2)*3),
	}
	rh := float64(region.RegionHeight())
	for i, p := range points {
		ps.local[i] = Vec2{p.X - offset.X, p.Y - offset.Y}
		// Page images are y-down.
		ps.src[i] = Vec2{float64(region.X) + p.X, float64(region.Y) + rh - p.Y}
	}
	// Fan triangulation: vertex 0 is the hub.
	for i := 0; i < n-2; i++ {
		ps.indices = append(ps.indices, 0, uint16(i+1), uint16(i+2))
	}
	return ps
}

// SetOrigin sets the pivot in local units.
func (ps *PolygonSprite) SetOrigin(x, y float64) {
	ps.OriginX, ps.OriginY = x, y
}

// SetPosition sets the sprite position.
func (ps *PolygonSprite) SetPosition(x, y float64) {
	ps.X, ps.Y = x, y
}

// SetScale sets a uniform scale.
func (ps *PolygonSprite) SetScale(s float64) {
	ps.ScaleX, ps.ScaleY = s, s
}

// Len returns the number of vertices.
func (ps *PolygonSprite) Len() int {
	return len(ps.local)
}

// Indices returns the triangle indices. The returned slice MUST NOT be mutated.
func (ps *PolygonSprite) Indices() []uint16 {
	return ps.indices
}

// LocalVertices returns the local vertices. The returned slice MUST NOT be
// mutated.
func (ps *PolygonSprite) LocalVertices() []Vec2 {
	return ps.local
}

// SourceVertices returns the page pixel coordinates of every vertex.
func (ps *PolygonSprite) SourceVertices() []Vec2 {
	return ps.src
}

// WorldVertices returns the transformed vertices, appended to dst.
func (ps *PolygonSprite) WorldVertices(dst []Vec2) []Vec2 {
	sin, cos := math.Sincos(ps.Rotation * math.Pi / 180)
	wx, wy := ps.X+ps.OriginX, ps.Y+ps.OriginY
	for _, v := range ps.local {
		lx := (v.X - ps.OriginX) * ps.ScaleX
		ly := (v.Y - ps.OriginY) * ps.ScaleY
		dst = append(dst, Vec2{cos*lx - sin*ly + wx, sin*lx + cos*ly + wy})
	}
	return dst
}

// Bounds returns the axis-aligned bounds of the world vertices.
func (ps *PolygonSprite) Bounds() Rect {
	verts := ps.WorldVertices(nil)
	if len(verts) == 0 {
		return Rect{}
	}
	minX, minY := verts[0].X, verts[0].Y
	maxX, maxY := minX, minY
	for _, v := range verts[1:] {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// rectPolygon returns the corners of a w x h rectangle, counter-clockwise
// from the bottom-left.
func rectPolygon(w, h float64) []Vec2 {
	return []Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// --- TextureRegion refresh ---

// SetRegion replaces the region and schedules a mesh rebuild.
func (t *TextureRegionData) SetRegion(r *resources.Region) {
	t.Region = r
	t.dirty = true
}

// SetRepeat toggles tiling and schedules a mesh rebuild.
func (t *TextureRegionData) SetRepeat(on bool) {
	t.IsRepeat = on
	t.dirty = true
}

// MarkDirty schedules a mesh rebuild on the next draw.
func (t *TextureRegionData) MarkDirty() {
	t.dirty = true
}

// Sprite returns the prepared polygon sprite, or nil.
func (t *TextureRegionData) Sprite() *PolygonSprite {
	return t.sprite
}

// Refresh rebuilds the polygon sprite when it is dirty or the item's size or
// outline changed. A sprite is built for polygon items, and for
// repeating items as a rectangle. Items without a region, or with a region
// of zero width, never get one.
func (t *TextureRegionData) Refresh(dim *DimensionsData) {
	if t.Region == nil || dim == nil || t.Region.RegionWidth() == 0 {
		t.sprite = nil
		t.dirty = false
		return
	}
	if !t.dirty && t.builtWidth == dim.Width && t.builtHeight == dim.Height &&
		slices.Equal(t.builtPolygon, dim.Polygon) {
		return
	}
	t.dirty = false
	t.builtWidth, t.builtHeight = dim.Width, dim.Height
	t.builtPolygon = slices.Clone(dim.Polygon)
	t.sprite = nil

	ppwu := dim.Width / float64(t.Region.RegionWidth())
	if ppwu == 0 {
		return
	}

	var poly []Vec2
	switch {
	case t.IsPolygon && len(dim.Polygon) >= 3:
		poly = dim.Polygon
	case t.IsRepeat:
		poly = rectPolygon(dim.Width, dim.Height)
	default:
		return
	}
	pixels := make([]Vec2, len(poly))
	for i, p := range poly {
		pixels[i] = Vec2{p.X / ppwu, p.Y / ppwu}
	}
	center := Vec2{dim.Width / 2 / ppwu, dim.Height / 2 / ppwu}
	t.sprite = NewPolygonSprite(t.Region, pixels, center)
}
