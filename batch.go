package h2d

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/h2d/resources"
)

// Batch accumulates textured geometry and submits it in as few draw calls as
// possible. Coordinates passed to Draw and DrawPolygon are in the space set
// by SetTransform.
type Batch interface {
	Color() Color
	SetColor(c Color)

	// Draw queues a region quad at (x, y) of size (width, height), scaled
	// and rotated (degrees) around (originX, originY).
	Draw(region *resources.Region, x, y, originX, originY, width, height, scaleX, scaleY, rotation float64)
	// DrawPolygon queues a polygon sprite with its own color.
	DrawPolygon(ps *PolygonSprite)
	// Flush submits queued geometry.
	Flush()

	SetUniform(name string, value any)
	Uniform(name string) any

	Transform() [6]float64
	SetTransform(m [6]float64)

	// SetShader selects a custom shader; nil restores the region shader.
	SetShader(s *ebiten.Shader)
}

// defaultBatchVertices is the vertex budget of a SpriteBatch created with
// a non-positive size.
const defaultBatchVertices = 2000

// SpriteBatch is the ebiten Batch. Geometry is grouped by atlas page and
// drawn with the region shader; it is flushed on page or shader change and
// when the vertex budget is reached.
type SpriteBatch struct {
	target      *ebiten.Image
	shader      *ebiten.Shader
	custom      *ebiten.Shader
	page        *ebiten.Image
	transform   [6]float64
	color       Color
	uniforms    map[string]any
	verts       []ebiten.Vertex
	inds        []uint32
	maxVertices int
	blend       ebiten.Blend

	drawCalls int
	scratch   []Vec2
}

// NewSpriteBatch creates a batch holding up to maxVertices vertices between
// flushes.
func NewSpriteBatch(maxVertices int) *SpriteBatch {
	if maxVertices <= 0 {
		maxVertices = defaultBatchVertices
	}
	return &SpriteBatch{
		transform:   identityTransform,
		color:       ColorWhite,
		uniforms:    defaultUniforms(),
		maxVertices: maxVertices,
		verts:       make([]ebiten.Vertex, 0, maxVertices),
		inds:        make([]uint32, 0, maxVertices*3/2),
		blend:       ebiten.BlendSourceOver,
	}
}

// Begin directs subsequent draws at target and resets the draw call count.
func (b *SpriteBatch) Begin(target *ebiten.Image) {
	b.target = target
	b.drawCalls = 0
}

// End flushes and detaches the target.
func (b *SpriteBatch) End() {
	b.Flush()
	b.target = nil
}

// Target returns the image being drawn to.
func (b *SpriteBatch) Target() *ebiten.Image {
	return b.target
}

// SetTarget flushes and redirects draws to target.
func (b *SpriteBatch) SetTarget(target *ebiten.Image) {
	b.Flush()
	b.target = target
}

// DrawCalls returns the number of submissions since Begin.
func (b *SpriteBatch) DrawCalls() int {
	return b.drawCalls
}

func (b *SpriteBatch) Color() Color { return b.color }

func (b *SpriteBatch) SetColor(c Color) { b.color = c }

func (b *SpriteBatch) Transform() [6]float64 { return b.transform }

// SetTransform flushes and sets the matrix applied to queued coordinates.
func (b *SpriteBatch) SetTransform(m [6]float64) {
	if m == b.transform {
		return
	}
	b.Flush()
	b.transform = m
}

// SetUniform sets a shader uniform. Queued geometry is flushed first so it
// keeps the values it was queued with.
func (b *SpriteBatch) SetUniform(name string, value any) {
	b.Flush()
	b.uniforms[name] = value
}

func (b *SpriteBatch) Uniform(name string) any {
	return b.uniforms[name]
}

func (b *SpriteBatch) SetShader(s *ebiten.Shader) {
	if s == b.custom {
		return
	}
	b.Flush()
	b.custom = s
}

// SetBlend flushes and sets the blend mode of subsequent submissions.
func (b *SpriteBatch) SetBlend(bl ebiten.Blend) {
	if bl == b.blend {
		return
	}
	b.Flush()
	b.blend = bl
}

func (b *SpriteBatch) Draw(region *resources.Region, x, y, originX, originY, width, height, scaleX, scaleY, rotation float64) {
	if region == nil || region.Page == nil {
		return
	}
	b.prepare(region.Page, 4)

	// Local corners relative to the origin: BL, BR, TR, TL (y-up).
	lx := [4]float64{-originX, width - originX, width - originX, -originX}
	ly := [4]float64{-originY, -originY, height - originY, height - originY}
	// Page images are y-down: the bottom edge samples Y+Height.
	rx, ry := float32(region.X), float32(region.Y)
	rw, rh := float32(region.Width), float32(region.Height)
	sx := [4]float32{rx, rx + rw, rx + rw, rx}
	sy := [4]float32{ry + rh, ry + rh, ry, ry}

	sin, cos := math.Sincos(rotation * math.Pi / 180)
	wx, wy := x+originX, y+originY
	cr, cg, cb, ca := premultiplied(b.color)
	base := uint32(len(b.verts))
	for i := 0; i < 4; i++ {
		px := lx[i] * scaleX
		py := ly[i] * scaleY
		dx, dy := transformPoint(b.transform, cos*px-sin*py+wx, sin*px+cos*py+wy)
		b.verts = append(b.verts, ebiten.Vertex{
			DstX: float32(dx), DstY: float32(dy),
			SrcX: sx[i], SrcY: sy[i],
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	b.inds = append(b.inds, base, base+1, base+2, base, base+2, base+3)
}

func (b *SpriteBatch) DrawPolygon(ps *PolygonSprite) {
	if ps == nil || ps.Region == nil || ps.Region.Page == nil || ps.Len() == 0 {
		return
	}
	b.prepare(ps.Region.Page, ps.Len())

	b.scratch = ps.WorldVertices(b.scratch[:0])
	src := ps.SourceVertices()
	cr, cg, cb, ca := premultiplied(ps.Color)
	base := uint32(len(b.verts))
	for i, v := range b.scratch {
		dx, dy := transformPoint(b.transform, v.X, v.Y)
		b.verts = append(b.verts, ebiten.Vertex{
			DstX: float32(dx), DstY: float32(dy),
			SrcX: float32(src[i].X), SrcY: float32(src[i].Y),
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	for _, idx := range ps.Indices() {
		b.inds = append(b.inds, base+uint32(idx))
	}
}

// prepare flushes when the page changes or n more vertices would exceed the
// budget.
func (b *SpriteBatch) prepare(page *ebiten.Image, n int) {
	if page != b.page || len(b.verts)+n > b.maxVertices {
		b.Flush()
	}
	b.page = page
}

func (b *SpriteBatch) Flush() {
	if len(b.verts) == 0 {
		return
	}
	if b.target == nil || b.page == nil {
		b.verts = b.verts[:0]
		b.inds = b.inds[:0]
		return
	}
	shader := b.custom
	if shader == nil {
		if b.shader == nil {
			b.shader = ensureRegionShader()
		}
		shader = b.shader
	}

	var op ebiten.DrawTrianglesShaderOptions
	op.Images[0] = b.page
	op.Blend = b.blend
	op.Uniforms = make(map[string]any, len(b.uniforms))
	for k, v := range b.uniforms {
		op.Uniforms[k] = v
	}
	b.target.DrawTrianglesShader32(b.verts, b.inds, shader, &op)
	b.drawCalls++

	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

// premultiplied returns c as premultiplied float32 components.
func premultiplied(c Color) (r, g, b, a float32) {
	a = float32(c.A)
	return float32(c.R) * a, float32(c.G) * a, float32(c.B) * a, a
}
