package h2d

import (
	"github.com/phanxgames/h2d/lighting"
	"github.com/yohamta/donburi"
)

// Entity is the identity every component of a scene item is attached to.
// Destroyed identities carry a new generation when recycled, so a stale
// Entity never resolves to a live object.
type Entity = donburi.Entity

// NoEntity is the zero entity, used where a parent is absent.
var NoEntity = donburi.Null

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorFromSlice builds a Color from an authored [r, g, b, a] slice.
// Missing components default to 1.
func ColorFromSlice(s []float64) Color {
	c := ColorWhite
	if len(s) > 0 {
		c.R = s[0]
	}
	if len(s) > 1 {
		c.G = s[1]
	}
	if len(s) > 2 {
		c.B = s[2]
	}
	if len(s) > 3 {
		c.A = s[3]
	}
	return c
}

func (c Color) light() lighting.Color {
	return lighting.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world units. World space is y-up, so
// (X, Y) is the bottom-left corner.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// RenderingLayer selects the pass an item is drawn in.
type RenderingLayer uint8

const (
	LayerScreen  RenderingLayer = iota // drawn before lights, affected by them
	LayerOverlay                       // drawn after lights
)

// ParseRenderingLayer maps an authored layer name to a RenderingLayer.
// Unknown names map to LayerScreen.
func ParseRenderingLayer(s string) RenderingLayer {
	if s == "OVERLAY" || s == "overlay" {
		return LayerOverlay
	}
	return LayerScreen
}

// EntityType distinguishes how the factory builds an item and which
// drawable renders it. External item types use values >= EntityExternal.
type EntityType uint16

const (
	EntityUnknown   EntityType = iota
	EntityComposite            // container with a Node component
	EntityImage                // textured quad or tiled polygon
	EntityLight                // point or cone light
	EntityExternal  EntityType = 100
)

// String returns the authored type name.
func (t EntityType) String() string {
	switch t {
	case EntityComposite:
		return "composite"
	case EntityImage:
		return "image"
	case EntityLight:
		return "light"
	case EntityUnknown:
		return "unknown"
	default:
		return "external"
	}
}
