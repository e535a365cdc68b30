package lighting

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Options configures a new Simulation.
type Options struct {
	Diffuse         bool
	GammaCorrection bool
}

// Simulation renders a light map for a set of lights over an ambient color
// and composites it over a rendered scene. With diffuse lighting the light
// map multiplies the scene; otherwise it modulates at double strength so
// lights can brighten above the base colors.
//
// Ray casting against physics geometry is not performed; the shadows flag is
// carried for callers that query it.
type Simulation struct {
	lights []*Light

	ambient  Color
	diffuse  bool
	gamma    bool
	pseudo3d bool
	blur     bool
	blurNum  int
	culling  bool
	shadows  bool

	// world -> screen affine and the visible world rect used for culling.
	combined   [6]float64
	viewBounds [4]float64
	haveView   bool

	width, height int
	lightMap      *ebiten.Image
	blurMap       *ebiten.Image
	white         *ebiten.Image
	circleCache   map[int]*ebiten.Image
	coneCache     map[int]*ebiten.Image
	op            ebiten.DrawImageOptions

	diffuseSwitches int
	visible         int
	disposed        bool
}

// New creates a simulation with full-bright ambient light.
func New(opts Options) *Simulation {
	return &Simulation{
		ambient:  Color{1, 1, 1, 1},
		diffuse:  opts.Diffuse,
		gamma:    opts.GammaCorrection,
		combined: [6]float64{1, 0, 0, 1, 0, 0},
	}
}

// SetAmbientLight sets the ambient color the light map is cleared to.
func (s *Simulation) SetAmbientLight(c Color) {
	s.ambient = c
}

// AmbientLight returns the ambient color.
func (s *Simulation) AmbientLight() Color {
	return s.ambient
}

// SetDiffuse switches between diffuse and bright compositing.
func (s *Simulation) SetDiffuse(diffuse bool) {
	s.diffuse = diffuse
	s.diffuseSwitches++
}

// Diffuse reports whether diffuse compositing is active.
func (s *Simulation) Diffuse() bool {
	return s.diffuse
}

// DiffuseSwitches returns how many times SetDiffuse has been called.
func (s *Simulation) DiffuseSwitches() int {
	return s.diffuseSwitches
}

// SetPseudo3d toggles height attenuation of directional lights.
func (s *Simulation) SetPseudo3d(on bool) { s.pseudo3d = on }

// Pseudo3d reports whether pseudo-3D shading is on.
func (s *Simulation) Pseudo3d() bool { return s.pseudo3d }

// SetBlur toggles light map blurring.
func (s *Simulation) SetBlur(on bool) { s.blur = on }

// Blur reports whether blurring is on.
func (s *Simulation) Blur() bool { return s.blur }

// SetBlurNum sets the number of blur passes. Negative values are clamped to 0.
func (s *Simulation) SetBlurNum(n int) {
	if n < 0 {
		n = 0
	}
	s.blurNum = n
}

// BlurNum returns the number of blur passes.
func (s *Simulation) BlurNum() int { return s.blurNum }

// SetCulling toggles skipping lights outside the view.
func (s *Simulation) SetCulling(on bool) { s.culling = on }

// Culling reports whether culling is on.
func (s *Simulation) Culling() bool { return s.culling }

// SetShadows toggles shadows.
func (s *Simulation) SetShadows(on bool) { s.shadows = on }

// Shadows reports whether shadows are on.
func (s *Simulation) Shadows() bool { return s.shadows }

// Add registers a light. Adding a light that is already present is a no-op.
func (s *Simulation) Add(l *Light) {
	if s.Contains(l) {
		return
	}
	l.sim = s
	l.removed = false
	s.lights = append(s.lights, l)
}

// Remove unregisters a light and marks it removed. It returns false when the
// light was not registered.
func (s *Simulation) Remove(l *Light) bool {
	for i, existing := range s.lights {
		if existing == l {
			copy(s.lights[i:], s.lights[i+1:])
			s.lights[len(s.lights)-1] = nil
			s.lights = s.lights[:len(s.lights)-1]
			l.removed = true
			l.sim = nil
			return true
		}
	}
	return false
}

// Contains reports whether l is registered.
func (s *Simulation) Contains(l *Light) bool {
	for _, existing := range s.lights {
		if existing == l {
			return true
		}
	}
	return false
}

// Lights returns the registered lights. The returned slice MUST NOT be mutated.
func (s *Simulation) Lights() []*Light {
	return s.lights
}

// Clear removes every light.
func (s *Simulation) Clear() {
	for _, l := range s.lights {
		l.removed = true
		l.sim = nil
	}
	s.lights = s.lights[:0]
}

// SetCombinedMatrix sets the world -> screen transform ([a, b, c, d, tx, ty])
// and the visible world rect used for culling.
func (s *Simulation) SetCombinedMatrix(m [6]float64, viewX, viewY, viewW, viewH float64) {
	s.combined = m
	s.viewBounds = [4]float64{viewX, viewY, viewW, viewH}
	s.haveView = true
}

// ResizeFBO resizes the light map. The next Render reallocates it.
func (s *Simulation) ResizeFBO(w, h int) {
	if w == s.width && h == s.height {
		return
	}
	s.width = w
	s.height = h
	s.deallocMaps()
}

// Size returns the current light map size.
func (s *Simulation) Size() (int, int) {
	return s.width, s.height
}

// Update recomputes which lights are visible.
func (s *Simulation) Update() {
	s.visible = 0
	for _, l := range s.lights {
		if s.inView(l) {
			s.visible++
		}
	}
}

// Visible returns the number of lights that passed culling in the last Update.
func (s *Simulation) Visible() int {
	return s.visible
}

func (s *Simulation) inView(l *Light) bool {
	if !l.Active {
		return false
	}
	if l.Kind == KindDirectional || !s.culling || !s.haveView {
		return true
	}
	vx, vy, vw, vh := s.viewBounds[0], s.viewBounds[1], s.viewBounds[2], s.viewBounds[3]
	r := l.Distance
	return l.X+r >= vx && l.X-r <= vx+vw && l.Y+r >= vy && l.Y-r <= vy+vh
}

// Render draws the light map and composites it over dst.
func (s *Simulation) Render(dst *ebiten.Image) {
	if s.disposed || dst == nil {
		return
	}
	b := dst.Bounds()
	if s.width == 0 || s.height == 0 {
		s.width, s.height = b.Dx(), b.Dy()
	}
	if s.lightMap == nil {
		s.lightMap = ebiten.NewImage(s.width, s.height)
	}

	lm := s.lightMap
	lm.Fill(toNRGBA(s.ambient))

	op := &s.op
	for _, l := range s.lights {
		if !s.inView(l) {
			continue
		}
		switch l.Kind {
		case KindDirectional:
			c := l.Color
			f := l.Intensity
			if s.pseudo3d {
				f *= l.heightFactor()
			}
			a := float32(clamp01(c.A) * f)
			op.GeoM.Reset()
			op.GeoM.Scale(float64(s.width), float64(s.height))
			op.ColorScale.Reset()
			op.ColorScale.Scale(float32(c.R)*a, float32(c.G)*a, float32(c.B)*a, a)
			op.Blend = ebiten.BlendLighter
			lm.DrawImage(s.whitePixel(), op)
		default:
			s.drawRadial(lm, l)
		}
	}

	if s.blur {
		s.blurPasses()
	}

	op.GeoM.Reset()
	op.GeoM.Scale(float64(b.Dx())/float64(s.width), float64(b.Dy())/float64(s.height))
	op.ColorScale.Reset()
	op.Filter = ebiten.FilterLinear
	if s.diffuse {
		op.Blend = blendMultiply
	} else {
		op.Blend = blendModulate2x
	}
	dst.DrawImage(lm, op)
	op.Filter = ebiten.FilterNearest
}

func (s *Simulation) drawRadial(lm *ebiten.Image, l *Light) {
	if l.Distance <= 0 {
		return
	}
	m := s.combined
	scale := math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
	radius := l.Distance * scale
	if radius < 1 {
		return
	}
	sx := m[0]*l.X + m[2]*l.Y + m[4]
	sy := m[1]*l.X + m[3]*l.Y + m[5]

	var img *ebiten.Image
	if l.Kind == KindCone {
		img = s.cone(l.ConeDegree)
	} else {
		img = s.circle()
	}
	size := float64(img.Bounds().Dx())

	op := &s.op
	op.GeoM.Reset()
	op.GeoM.Translate(-size/2, -size/2)
	op.GeoM.Scale(radius*2/size, radius*2/size)
	if l.Kind == KindCone {
		// y-up world degrees to y-down screen radians.
		op.GeoM.Rotate(-l.Direction * math.Pi / 180)
	}
	op.GeoM.Translate(sx, sy)
	op.ColorScale.Reset()
	a := float32(clamp01(l.Color.A) * clamp01(l.Intensity))
	op.ColorScale.Scale(float32(l.Color.R)*a, float32(l.Color.G)*a, float32(l.Color.B)*a, a)
	op.Blend = ebiten.BlendLighter
	lm.DrawImage(img, op)
}

func (s *Simulation) ensureBlurMap() *ebiten.Image {
	if s.blurMap == nil {
		w, h := s.width/2, s.height/2
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		s.blurMap = ebiten.NewImage(w, h)
	}
	return s.blurMap
}

// blurPasses softens the light map by round-tripping it through a half-size
// buffer with linear filtering.
func (s *Simulation) blurPasses() {
	bm := s.ensureBlurMap()
	op := &s.op
	for i := 0; i < s.blurNum; i++ {
		bm.Clear()
		op.GeoM.Reset()
		op.GeoM.Scale(0.5, 0.5)
		op.ColorScale.Reset()
		op.Blend = ebiten.BlendCopy
		op.Filter = ebiten.FilterLinear
		bm.DrawImage(s.lightMap, op)

		op.GeoM.Reset()
		op.GeoM.Scale(2, 2)
		s.lightMap.DrawImage(bm, op)
	}
	op.Filter = ebiten.FilterNearest
}

// Dispose releases the light map and all cached textures. Safe to call more
// than once.
func (s *Simulation) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.deallocMaps()
	for _, img := range s.circleCache {
		img.Deallocate()
	}
	for _, img := range s.coneCache {
		img.Deallocate()
	}
	if s.white != nil {
		s.white.Deallocate()
		s.white = nil
	}
	s.circleCache = nil
	s.coneCache = nil
	s.Clear()
}

// Disposed reports whether Dispose has been called.
func (s *Simulation) Disposed() bool {
	return s.disposed
}

func (s *Simulation) deallocMaps() {
	if s.lightMap != nil {
		s.lightMap.Deallocate()
		s.lightMap = nil
	}
	if s.blurMap != nil {
		s.blurMap.Deallocate()
		s.blurMap = nil
	}
}

func (s *Simulation) whitePixel() *ebiten.Image {
	if s.white == nil {
		s.white = ebiten.NewImage(1, 1)
		s.white.Fill(color.White)
	}
	return s.white
}

const lightTextureRadius = 64

func (s *Simulation) circle() *ebiten.Image {
	if s.circleCache == nil {
		s.circleCache = make(map[int]*ebiten.Image)
	}
	if img, ok := s.circleCache[lightTextureRadius]; ok {
		return img
	}
	img := generateFalloff(lightTextureRadius, 360)
	s.circleCache[lightTextureRadius] = img
	return img
}

func (s *Simulation) cone(degree float64) *ebiten.Image {
	key := int(math.Round(degree))
	if s.coneCache == nil {
		s.coneCache = make(map[int]*ebiten.Image)
	}
	if img, ok := s.coneCache[key]; ok {
		return img
	}
	img := generateFalloff(lightTextureRadius, float64(key))
	s.coneCache[key] = img
	return img
}

// generateFalloff creates a feathered white disc, or a wedge of the given
// half-angle in degrees pointing along +X. Uses smoothstep falloff and
// premultiplied alpha.
func generateFalloff(radius int, halfAngle float64) *ebiten.Image {
	size := radius * 2
	img := ebiten.NewImage(size, size)
	img.WritePixels(falloffPixels(radius, halfAngle))
	return img
}

func falloffPixels(radius int, halfAngle float64) []byte {
	size := radius * 2
	pix := make([]byte, size*size*4)
	r := float64(radius)
	limit := halfAngle * math.Pi / 180
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			dist := math.Sqrt(dx*dx+dy*dy) / r

			var alpha float64
			if dist < 1 && (halfAngle >= 180 || math.Abs(math.Atan2(-dy, dx)) <= limit) {
				// smoothstep: 1 at center, 0 at edge
				t := 1 - dist
				alpha = t * t * (3 - 2*t)
			}

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	return pix
}

var blendMultiply = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorZero,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

var blendModulate2x = ebiten.Blend{
	BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
	BlendFactorSourceAlpha:      ebiten.BlendFactorZero,
	BlendFactorDestinationRGB:   ebiten.BlendFactorSourceColor,
	BlendFactorDestinationAlpha: ebiten.BlendFactorOne,
	BlendOperationRGB:           ebiten.BlendOperationAdd,
	BlendOperationAlpha:         ebiten.BlendOperationAdd,
}

func toNRGBA(c Color) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
