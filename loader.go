package h2d

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/physics"
	"github.com/phanxgames/h2d/resources"
	"github.com/yohamta/donburi"
	"go.uber.org/zap"
)

// SceneLoader owns the world, the physics world, the lighting simulation and
// the renderer, and turns scene descriptions into entity trees.
type SceneLoader struct {
	cfg     *SceneConfiguration
	rm      resources.Retriever
	physics *physics.World
	lights  *lighting.Simulation
	log     *zap.Logger

	world       *World
	index       *ComponentIndex
	coordinator *LifecycleCoordinator
	factory     *EntityFactory
	renderer    *Renderer
	actions     *ActionFactory

	root        Entity
	sceneVO     *resources.SceneVO
	directional *lighting.Light
	resolution  string
	ppwu        float64
	disposed    bool
}

// NewSceneLoader creates a loader. A nil cfg uses NewSceneConfiguration(nil).
// CreateEngine must be called before loading scenes.
func NewSceneLoader(cfg *SceneConfiguration) *SceneLoader {
	if cfg == nil {
		cfg = NewSceneConfiguration(nil)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &SceneLoader{
		cfg:        cfg,
		rm:         cfg.Retriever,
		physics:    cfg.Physics,
		lights:     cfg.Lights,
		log:        log,
		index:      NewComponentIndex(),
		actions:    NewActionFactory(nil),
		root:       NoEntity,
		resolution: "orig",
		ppwu:       1,
	}
}

// CreateEngine builds the world, the lifecycle coordinator, the factory and
// the renderer and registers the configured systems. Calling it again
// replaces the previous world.
func (l *SceneLoader) CreateEngine() *World {
	if l.world != nil {
		l.world.DeleteAll()
		l.world.Flush()
	}
	l.world = NewWorld(l.cfg.ExpectedEntityCount, l.log.Named("world"))
	l.index.Initialize(l.world)

	batch := NewSpriteBatch(l.cfg.BatchVertices)
	l.renderer = NewRenderer(l.world, l.index, batch, l.lights, l.log.Named("renderer"))
	l.renderer.SetDebug(l.cfg.Debug)

	var bodies BodyDestroyer
	if l.physics != nil {
		bodies = l.physics
	}
	var lights LightRemover
	if l.lights != nil {
		lights = l.lights
	}
	l.coordinator = NewLifecycleCoordinator(l.index, bodies, lights, l.renderer, l.log.Named("lifecycle"))
	l.world.AddHooks(l.coordinator)

	l.factory = NewEntityFactory(l.world, l.index, l.rm, l.physics, l.lights, l.cfg.Scripts, l.log.Named("factory"))
	l.factory.SetDebug(l.cfg.Debug)

	for _, cs := range l.cfg.systems {
		if es, ok := cs.system.(engineSystem); ok {
			es.bindEngine(l)
		}
		l.world.AddSystem(cs.priority, cs.system)
	}
	for _, t := range l.cfg.externalTypes {
		l.injectExternal(t)
	}
	l.root = NoEntity
	return l.world
}

// InjectExternalItemType registers an external item type with the factory,
// the world's systems and the renderer.
func (l *SceneLoader) InjectExternalItemType(t ExternalItemType) {
	l.cfg.AddExternalItemType(t)
	if l.world != nil {
		l.injectExternal(t)
	}
}

func (l *SceneLoader) injectExternal(t ExternalItemType) {
	l.factory.AddExternalFactory(t)
	if t.System != nil {
		if es, ok := t.System.(engineSystem); ok {
			es.bindEngine(l)
		}
		l.world.AddSystem(t.SystemPriority, t.System)
	}
	if t.Drawable != nil {
		l.renderer.SetDrawable(t.TypeID, t.Drawable)
	}
}

// SetResolution selects the resolution used by LoadSceneDefault. Unknown
// names are ignored.
func (l *SceneLoader) SetResolution(name string) {
	if l.rm == nil || l.rm.ProjectVO() == nil {
		return
	}
	if _, ok := l.rm.ProjectVO().Resolution(name); ok {
		l.resolution = name
	}
}

// LoadSceneDefault loads a scene with a stretch viewport sized to the
// selected resolution in world units.
func (l *SceneLoader) LoadSceneDefault(name string, customLight bool) (*resources.SceneVO, error) {
	if l.rm == nil || l.rm.ProjectVO() == nil {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, name)
	}
	p := l.rm.ProjectVO()
	res, ok := p.Resolution(l.resolution)
	if !ok {
		res = p.OriginalResolution
	}
	ppwu := float64(p.PixelToWorld)
	if ppwu <= 0 {
		ppwu = 1
	}
	vp := NewStretchViewport(float64(res.Width)/ppwu, float64(res.Height)/ppwu)
	return l.LoadScene(name, vp, customLight)
}

// LoadScene replaces the current scene with the named one. Every existing
// entity is deleted and the removal committed before the new tree is built.
// The new entities are active when LoadScene returns.
func (l *SceneLoader) LoadScene(name string, viewport *Viewport, customLight bool) (*resources.SceneVO, error) {
	if l.world == nil {
		return nil, ErrEngineNotInitialized
	}

	l.world.DeleteAll()
	l.factory.Clean()
	l.world.Process(0)
	l.root = NoEntity
	l.renderer.SetRoot(NoEntity)

	if l.rm == nil {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, name)
	}
	if p := l.rm.ProjectVO(); p != nil && p.PixelToWorld > 0 {
		l.ppwu = float64(p.PixelToWorld)
	}
	l.renderer.SetPixelsPerWU(l.ppwu)
	l.factory.SetPixelsPerWU(l.ppwu)

	vo, ok := l.rm.SceneVO(name)
	if !ok || vo == nil {
		return nil, fmt.Errorf("%w: %q", ErrSceneNotFound, name)
	}
	l.sceneVO = vo

	if l.physics != nil {
		pp := vo.PhysicsProperties
		l.physics.SetGravity(pp.GravityX, pp.GravityY)
		l.physics.SetEnabled(pp.Enabled)
	}

	if vo.Composite == nil {
		vo.Composite = &resources.ItemVO{Type: resources.ItemComposite}
	}
	if viewport == nil {
		viewport = NewStretchViewport(1, 1)
	}
	root, err := l.factory.CreateRootEntity(vo.Composite, viewport)
	if err != nil {
		return nil, fmt.Errorf("h2d: load scene %q: %w", name, err)
	}
	if err := l.factory.InitAllChildren(root, vo.Composite); err != nil {
		l.world.Delete(root)
		l.world.Flush()
		return nil, fmt.Errorf("h2d: load scene %q: %w", name, err)
	}
	l.root = root
	l.renderer.SetRoot(root)
	if w, h := l.renderer.Size(); w > 0 && h > 0 {
		viewport.Update(w, h)
	}

	if !customLight {
		l.SetAmbientInfo(vo, false)
	}

	var library map[string]*resources.ActionVO
	if p := l.rm.ProjectVO(); p != nil {
		library = p.LibraryActions
	}
	l.actions = NewActionFactory(library)

	l.world.Flush()
	SceneLoadedEventType.Publish(l.world.Donburi(), SceneLoadedEvent{Name: name, Root: root})
	l.log.Info("scene loaded",
		zap.String("scene", name),
		zap.Int("entities", l.world.Len()))
	return vo, nil
}

// SceneVO returns the description of the loaded scene, or nil.
func (l *SceneLoader) SceneVO() *resources.SceneVO {
	return l.sceneVO
}

// SetAmbientInfo applies the scene's light settings. With override set, or
// when the scene has lights disabled, the simulation is reset to diffuse
// full-bright ambient light.
func (l *SceneLoader) SetAmbientInfo(vo *resources.SceneVO, override bool) {
	if l.directional != nil {
		l.directional.Remove()
		l.directional = nil
	}
	lp := vo.LightsProperties
	if l.renderer != nil {
		l.renderer.SetUseLights(lp.Enabled)
	}
	if l.lights == nil {
		return
	}

	diffuse := lp.LightType != resources.LightTypeBright
	if override || !lp.Enabled {
		if !l.lights.Diffuse() {
			l.lights.SetDiffuse(true)
		}
		l.lights.SetAmbientLight(lighting.Color{R: 1, G: 1, B: 1, A: 1})
		return
	}
	if diffuse != l.lights.Diffuse() {
		l.lights.SetDiffuse(diffuse)
	}
	l.lights.SetPseudo3d(lp.Pseudo3d)

	if lp.AmbientColor == nil {
		return
	}
	if lp.LightType == resources.LightTypeDirectional {
		c := ColorFromSlice(lp.DirectionalColor)
		l.directional = lighting.NewDirectionalLight(l.lights, lp.DirectionalRays, c.light(), lp.DirectionalDegree)
		l.directional.SetHeight(lp.DirectionalHeight)
	}
	l.lights.SetAmbientLight(ColorFromSlice(lp.AmbientColor).light())
	l.lights.SetBlurNum(lp.BlurNum)
}

// LoadFromLibrary creates a parentless entity from the named library item.
// Its insertion hooks run at the next flush.
func (l *SceneLoader) LoadFromLibrary(name string) (Entity, error) {
	if l.world == nil {
		return NoEntity, ErrEngineNotInitialized
	}
	vo, err := l.LoadVoFromLibrary(name)
	if err != nil {
		return NoEntity, err
	}
	e := l.world.Create(MainItem, Transform, Dimensions, Tint, ZIndex)
	if err := l.factory.InitializeEntity(NoEntity, false, e, vo); err != nil {
		l.world.Delete(e)
		return NoEntity, err
	}
	if err := l.factory.InitAllChildren(e, vo); err != nil {
		l.world.Delete(e)
		return NoEntity, err
	}
	return e, nil
}

// LoadVoFromLibrary returns the named library item description.
func (l *SceneLoader) LoadVoFromLibrary(name string) (*resources.ItemVO, error) {
	if l.rm == nil || l.rm.ProjectVO() == nil {
		return nil, fmt.Errorf("%w: %q", ErrLibraryItemNotFound, name)
	}
	vo, ok := l.rm.ProjectVO().LibraryItems[name]
	if !ok || vo == nil {
		return nil, fmt.Errorf("%w: %q", ErrLibraryItemNotFound, name)
	}
	return vo, nil
}

// LoadActionFromLibrary builds the named library action.
func (l *SceneLoader) LoadActionFromLibrary(name string) (Action, error) {
	return l.actions.LoadFromLibrary(name)
}

// ActionFactory returns the factory for the loaded project's actions.
func (l *SceneLoader) ActionFactory() *ActionFactory {
	return l.actions
}

// EntitiesByTag returns the live entities carrying tag, in creation order.
func (l *SceneLoader) EntitiesByTag(tag string) []Entity {
	if l.world == nil {
		return nil
	}
	var out []Entity
	for _, e := range l.world.Entities() {
		if !l.world.Alive(e) {
			continue
		}
		if mi, ok := Lookup[MainItemData](l.index, e, KindMainItem); ok && mi.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}

// AddComponentByTagName adds ct to every entity carrying tag.
func (l *SceneLoader) AddComponentByTagName(tag string, ct donburi.IComponentType) {
	for _, e := range l.EntitiesByTag(tag) {
		entry := l.world.Entry(e)
		if !entry.HasComponent(ct) {
			entry.AddComponent(ct)
		}
	}
}

// AddActionByTagName starts the action built by newAction on every entity
// carrying tag. Each entity gets its own action instance.
func (l *SceneLoader) AddActionByTagName(tag string, newAction func() Action) {
	for _, e := range l.EntitiesByTag(tag) {
		AddAction(l.world, e, newAction())
	}
}

// AddActionByTagNameFromLibrary starts the named library action on every
// entity carrying tag.
func (l *SceneLoader) AddActionByTagNameFromLibrary(tag, action string) error {
	if _, err := l.actions.LoadFromLibrary(action); err != nil {
		return err
	}
	for _, e := range l.EntitiesByTag(tag) {
		a, err := l.actions.LoadFromLibrary(action)
		if err != nil {
			return err
		}
		AddAction(l.world, e, a)
	}
	return nil
}

// Update runs one frame of the world's systems.
func (l *SceneLoader) Update(dt float64) {
	if l.world == nil || l.disposed {
		return
	}
	l.world.Process(dt)
}

// Draw renders the loaded scene onto screen.
func (l *SceneLoader) Draw(screen *ebiten.Image) {
	if l.renderer == nil || l.disposed {
		return
	}
	l.renderer.Render(screen)
}

// Resize adapts the light map and the renderer to a new screen size.
func (l *SceneLoader) Resize(w, h int) {
	if l.lights != nil {
		l.lights.ResizeFBO(w, h)
	}
	if l.renderer != nil {
		l.renderer.Resize(w, h)
	}
}

// Dispose releases the renderer, the lighting simulation and the physics
// world. Safe to call more than once.
func (l *SceneLoader) Dispose() {
	if l.disposed {
		return
	}
	l.disposed = true
	if l.renderer != nil {
		l.renderer.Dispose()
	}
	if l.lights != nil {
		l.lights.Dispose()
	}
	if l.physics != nil {
		l.physics.Dispose()
	}
}

// World returns the world created by CreateEngine, or nil.
func (l *SceneLoader) World() *World { return l.world }

// Index returns the component index bound to the world.
func (l *SceneLoader) Index() *ComponentIndex { return l.index }

// Renderer returns the renderer created by CreateEngine, or nil.
func (l *SceneLoader) Renderer() *Renderer { return l.renderer }

// Factory returns the entity factory created by CreateEngine, or nil.
func (l *SceneLoader) Factory() *EntityFactory { return l.factory }

// Coordinator returns the lifecycle coordinator created by CreateEngine.
func (l *SceneLoader) Coordinator() *LifecycleCoordinator { return l.coordinator }

// Physics returns the physics world.
func (l *SceneLoader) Physics() *physics.World { return l.physics }

// Lights returns the lighting simulation.
func (l *SceneLoader) Lights() *lighting.Simulation { return l.lights }

// Retriever returns the resource retriever.
func (l *SceneLoader) Retriever() resources.Retriever { return l.rm }

// Root returns the root composite of the loaded scene, or NoEntity.
func (l *SceneLoader) Root() Entity { return l.root }

// PixelsPerWU returns the pixels-per-world-unit factor of the project.
func (l *SceneLoader) PixelsPerWU() float64 { return l.ppwu }

// Batch returns the renderer's sprite batch.
func (l *SceneLoader) Batch() *SpriteBatch {
	if l.renderer == nil {
		return nil
	}
	return l.renderer.Batch()
}

// FrameBufferManager returns the renderer's offscreen buffers.
func (l *SceneLoader) FrameBufferManager() *FrameBufferManager {
	if l.renderer == nil {
		return nil
	}
	return l.renderer.FrameBufferManager()
}
