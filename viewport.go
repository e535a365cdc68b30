package h2d

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Viewport is a stretch viewport: a fixed world area scaled to fill the
// screen. The camera position is the world point shown at the screen center.
// World space is y-up; screen space is y-down.
type Viewport struct {
	WorldWidth, WorldHeight   float64
	ScreenWidth, ScreenHeight float64

	// X and Y are the world position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in).
	Zoom float64

	scrollTween *scrollAnim

	invViewMatrix [6]float64
}

// NewStretchViewport creates a viewport showing worldW x worldH world units,
// centered on that area. The screen size equals the world size until Update
// is called.
func NewStretchViewport(worldW, worldH float64) *Viewport {
	return &Viewport{
		WorldWidth:   worldW,
		WorldHeight:  worldH,
		ScreenWidth:  worldW,
		ScreenHeight: worldH,
		X:            worldW / 2,
		Y:            worldH / 2,
		Zoom:         1,
	}
}

// Update sets the screen size in pixels.
func (v *Viewport) Update(screenW, screenH int) {
	if float64(screenW) == v.ScreenWidth && float64(screenH) == v.ScreenHeight {
		return
	}
	v.ScreenWidth = float64(screenW)
	v.ScreenHeight = float64(screenH)
}

// SetPosition moves the camera center.
func (v *Viewport) SetPosition(x, y float64) {
	v.X, v.Y = x, y
}

// SetZoom sets the zoom factor. Non-positive values are ignored.
func (v *Viewport) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	v.Zoom = z
}

// ScrollTo animates the camera to the given world position over duration seconds.
func (v *Viewport) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	v.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(v.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(v.Y), float32(y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is running.
func (v *Viewport) Scrolling() bool {
	return v.scrollTween != nil
}

// Advance steps a running scroll animation by dt seconds.
func (v *Viewport) Advance(dt float64) {
	s := v.scrollTween
	if s == nil {
		return
	}
	if !s.doneX {
		val, done := s.tweenX.Update(float32(dt))
		v.X = float64(val)
		s.doneX = done
	}
	if !s.doneY {
		val, done := s.tweenY.Update(float32(dt))
		v.Y = float64(val)
		s.doneY = done
	}
	if s.doneX && s.doneY {
		v.scrollTween = nil
	}
}

func (v *Viewport) scale() (sx, sy float64) {
	sx, sy = v.Zoom, v.Zoom
	if v.WorldWidth > 0 {
		sx *= v.ScreenWidth / v.WorldWidth
	}
	if v.WorldHeight > 0 {
		sy *= v.ScreenHeight / v.WorldHeight
	}
	return sx, sy
}

// Projection returns the world -> screen matrix.
//
//	[sx, 0, 0, -sy, W/2 - X*sx, H/2 + Y*sy]
func (v *Viewport) Projection() [6]float64 {
	sx, sy := v.scale()
	m := [6]float64{
		sx, 0, 0, -sy,
		v.ScreenWidth/2 - v.X*sx,
		v.ScreenHeight/2 + v.Y*sy,
	}
	v.invViewMatrix = invertAffine(m)
	return m
}

// WorldToScreen converts world coordinates to screen pixels.
func (v *Viewport) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(v.Projection(), wx, wy)
}

// ScreenToWorld converts screen pixels to world coordinates.
func (v *Viewport) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	v.Projection()
	return transformPoint(v.invViewMatrix, sx, sy)
}

// VisibleBounds returns the world rect shown on screen.
func (v *Viewport) VisibleBounds() Rect {
	v.Projection()
	inv := v.invViewMatrix
	x0, y0 := transformPoint(inv, 0, 0)
	x1, y1 := transformPoint(inv, v.ScreenWidth, v.ScreenHeight)
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}
