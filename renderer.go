package h2d

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/h2d/lighting"
	"go.uber.org/zap"
)

// screenBufferName is the frame buffer the screen pass is drawn into when
// lights are on.
const screenBufferName = "screen"

// specialEntity is the cached shader state of an item with a Shader
// component.
type specialEntity struct {
	name   string
	shader *ebiten.Shader
}

// childRef is one entry of a composite's sorted draw order.
type childRef struct {
	e     Entity
	layer int
	z     int
	order int
}

// Renderer draws the scene graph under a root composite. Children are drawn
// by (layer order, z-index, insertion order); hidden items, culled items and
// items on hidden layers are skipped. The screen pass is drawn first, then
// the light map, then the overlay pass.
type Renderer struct {
	world  *World
	index  *ComponentIndex
	batch  *SpriteBatch
	fbm    *FrameBufferManager
	lights *lighting.Simulation
	log    *zap.Logger

	root      Entity
	useLights bool
	ppwu      float64
	width     int
	height    int

	drawables map[EntityType]Drawable
	shaders   map[string]*ebiten.Shader
	special   map[Entity]*specialEntity

	debug    bool
	stats    debugStats
	sortBuf  []childRef
	disposed bool
}

// NewRenderer creates a renderer drawing w's entities through batch.
// lights may be nil.
func NewRenderer(w *World, index *ComponentIndex, batch *SpriteBatch, lights *lighting.Simulation, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if batch == nil {
		batch = NewSpriteBatch(defaultBatchVertices)
	}
	r := &Renderer{
		world:     w,
		index:     index,
		batch:     batch,
		fbm:       NewFrameBufferManager(),
		lights:    lights,
		log:       log,
		root:      NoEntity,
		ppwu:      1,
		drawables: make(map[EntityType]Drawable),
		shaders:   make(map[string]*ebiten.Shader),
		special:   make(map[Entity]*specialEntity),
	}
	r.drawables[EntityImage] = NewTextureRegionDrawLogic(index)
	return r
}

// SetRoot sets the composite drawn by Render.
func (r *Renderer) SetRoot(e Entity) {
	r.root = e
}

// Root returns the composite drawn by Render.
func (r *Renderer) Root() Entity {
	return r.root
}

// SetPixelsPerWU sets the number of screen pixels per world unit at the
// original resolution.
func (r *Renderer) SetPixelsPerWU(ppwu float64) {
	if ppwu <= 0 {
		ppwu = 1
	}
	r.ppwu = ppwu
}

// PixelsPerWU returns the pixels-per-world-unit factor.
func (r *Renderer) PixelsPerWU() float64 {
	return r.ppwu
}

// SetUseLights turns the light pass on or off.
func (r *Renderer) SetUseLights(on bool) {
	r.useLights = on
}

// UseLights reports whether the light pass runs.
func (r *Renderer) UseLights() bool {
	return r.useLights
}

// SetDebug enables per-frame stats logging at debug level.
func (r *Renderer) SetDebug(on bool) {
	r.debug = on
}

// SetDrawable registers the drawable for an entity type, replacing any
// previous one. A nil drawable removes it.
func (r *Renderer) SetDrawable(t EntityType, d Drawable) {
	if d == nil {
		delete(r.drawables, t)
		return
	}
	r.drawables[t] = d
}

// Drawable returns the drawable registered for t.
func (r *Renderer) Drawable(t EntityType) (Drawable, bool) {
	d, ok := r.drawables[t]
	return d, ok
}

// RegisterShader compiles a Kage shader and registers it under name.
func (r *Renderer) RegisterShader(name string, src []byte) error {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return fmt.Errorf("h2d: compile shader %q: %w", name, err)
	}
	if old, ok := r.shaders[name]; ok {
		old.Deallocate()
	}
	r.shaders[name] = s
	// Cached entries may hold the replaced shader.
	clear(r.special)
	return nil
}

// RemoveSpecialEntity drops the cached shader state of e.
func (r *Renderer) RemoveSpecialEntity(e Entity) {
	delete(r.special, e)
}

// SpecialEntities returns the number of entities with cached shader state.
func (r *Renderer) SpecialEntities() int {
	return len(r.special)
}

// Batch returns the sprite batch.
func (r *Renderer) Batch() *SpriteBatch {
	return r.batch
}

// FrameBufferManager returns the renderer's offscreen buffers.
func (r *Renderer) FrameBufferManager() *FrameBufferManager {
	return r.fbm
}

// Resize adapts the screen buffer, the light map and the root viewport to a
// new screen size.
func (r *Renderer) Resize(w, h int) {
	if r.disposed || w <= 0 || h <= 0 {
		return
	}
	r.width, r.height = w, h
	r.fbm.Resize(screenBufferName, w, h)
	if r.lights != nil {
		r.lights.ResizeFBO(w, h)
	}
	if vp := r.viewport(); vp != nil {
		vp.Update(w, h)
	}
}

// Size returns the last size passed to Resize.
func (r *Renderer) Size() (w, h int) {
	return r.width, r.height
}

// Dispose releases the offscreen buffers and shaders. Safe to call more than
// once.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.fbm.DisposeAll()
	for name, s := range r.shaders {
		s.Deallocate()
		delete(r.shaders, name)
	}
	clear(r.special)
}

// Disposed reports whether Dispose has been called.
func (r *Renderer) Disposed() bool {
	return r.disposed
}

func (r *Renderer) viewport() *Viewport {
	if vpd, ok := Lookup[ViewPortData](r.index, r.root, KindViewPort); ok {
		return vpd.Viewport
	}
	return nil
}

// projection returns the world -> screen matrix of the root viewport.
func (r *Renderer) projection() [6]float64 {
	if vp := r.viewport(); vp != nil {
		return vp.Projection()
	}
	return identityTransform
}

// Render draws the scene onto screen.
func (r *Renderer) Render(screen *ebiten.Image) {
	if r.disposed || !r.world.Valid(r.root) {
		return
	}
	r.stats = debugStats{}
	var t0 time.Time
	if r.debug {
		t0 = time.Now()
	}

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if w != r.width || h != r.height {
		r.Resize(w, h)
	}
	proj := r.projection()
	lit := r.useLights && r.lights != nil

	target := screen
	if lit {
		if fb := r.fbm.Begin(screenBufferName); fb != nil {
			target = fb
		} else {
			lit = false
		}
	}
	r.batch.Begin(target)
	r.DrawPass(r.batch, LayerScreen, proj)
	r.batch.End()
	r.stats.drawCalls += r.batch.DrawCalls()

	if lit {
		screen.DrawImage(target, nil)
		r.fbm.End()
		view := Rect{Width: float64(w), Height: float64(h)}
		if vp := r.viewport(); vp != nil {
			view = vp.VisibleBounds()
		}
		r.lights.SetCombinedMatrix(proj, view.X, view.Y, view.Width, view.Height)
		r.lights.Render(screen)
		r.stats.lights = r.lights.Visible()
	}

	r.batch.Begin(screen)
	r.DrawPass(r.batch, LayerOverlay, proj)
	r.batch.End()
	r.stats.drawCalls += r.batch.DrawCalls()

	if r.debug {
		r.stats.frameTime = time.Since(t0)
		r.debugLog(r.stats)
	}
}

// DrawPass draws every item of the given rendering layer into batch, with
// transform as the root's parent transform.
func (r *Renderer) DrawPass(batch Batch, layer RenderingLayer, transform [6]float64) {
	if !r.world.Valid(r.root) {
		return
	}
	saved := batch.Transform()
	r.traverse(batch, r.root, layer, transform, 1)
	batch.SetTransform(saved)
	batch.SetShader(nil)
}

func (r *Renderer) traverse(batch Batch, e Entity, layer RenderingLayer, parent [6]float64, parentAlpha float64) {
	mi, ok := Lookup[MainItemData](r.index, e, KindMainItem)
	if !ok || !mi.Visible || mi.Culled {
		return
	}
	alpha := parentAlpha
	if tint, ok := Lookup[TintData](r.index, e, KindTint); ok {
		alpha *= tint.Color.A
	}

	if node, ok := Lookup[NodeData](r.index, e, KindNode); ok {
		world := multiplyAffine(parent, LocalTransform(r.world, e))
		for _, c := range r.sortedChildren(e, node) {
			r.traverse(batch, c, layer, world, alpha)
		}
		return
	}

	if r.itemLayer(e) != layer {
		return
	}
	d, ok := r.drawables[mi.Type]
	if !ok {
		return
	}
	batch.SetTransform(parent)
	shader := r.specialShader(e)
	if shader != nil {
		batch.SetShader(shader)
	}
	d.Draw(batch, e, parentAlpha)
	if shader != nil {
		batch.SetShader(nil)
	}
	r.stats.entities++
}

// itemLayer returns the rendering layer of a leaf item.
func (r *Renderer) itemLayer(e Entity) RenderingLayer {
	if sh, ok := Lookup[ShaderData](r.index, e, KindShader); ok {
		return sh.RenderingLayer
	}
	return LayerScreen
}

// specialShader returns the custom shader of e, caching the lookup.
func (r *Renderer) specialShader(e Entity) *ebiten.Shader {
	sh, ok := Lookup[ShaderData](r.index, e, KindShader)
	if !ok || sh.ShaderName == "" {
		return nil
	}
	if s, ok := r.special[e]; ok && s.name == sh.ShaderName {
		return s.shader
	}
	s := &specialEntity{name: sh.ShaderName, shader: r.shaders[sh.ShaderName]}
	r.special[e] = s
	return s.shader
}

// sortedChildren returns the visible children of a composite in draw order.
// The returned slice is only valid until the next call.
func (r *Renderer) sortedChildren(e Entity, node *NodeData) []Entity {
	layers, _ := Lookup[LayerMapData](r.index, e, KindLayerMap)

	refs := r.sortBuf[:0]
	for i, c := range node.Children {
		ref := childRef{e: c, order: i}
		if z, ok := Lookup[ZIndexData](r.index, c, KindZIndex); ok {
			if layers != nil {
				if !layers.Visible(z.LayerName) {
					continue
				}
				z.LayerIndex = layers.Index(z.LayerName)
			}
			ref.layer, ref.z = z.LayerIndex, z.ZIndex
		}
		refs = append(refs, ref)
	}
	// Stable insertion sort: children are usually already in order.
	for i := 1; i < len(refs); i++ {
		key := refs[i]
		j := i - 1
		for j >= 0 && childAfter(refs[j], key) {
			refs[j+1] = refs[j]
			j--
		}
		refs[j+1] = key
	}
	r.sortBuf = refs

	out := make([]Entity, len(refs))
	for i, ref := range refs {
		out[i] = ref.e
	}
	return out
}

func childAfter(a, b childRef) bool {
	if a.layer != b.layer {
		return a.layer > b.layer
	}
	if a.z != b.z {
		return a.z > b.z
	}
	return a.order > b.order
}
