package h2d

import (
	"fmt"
	"math"

	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/physics"
	"github.com/phanxgames/h2d/resources"
	"go.uber.org/zap"
)

// defaultLayerName is the layer of items that do not name one.
const defaultLayerName = "Default"

// ExternalItemType plugs an additional item type into the factory, the
// system list and the renderer.
type ExternalItemType struct {
	// TypeID is the entity type of created items. Must be >= EntityExternal.
	TypeID EntityType
	// TypeName is matched against ItemVO.Type.
	TypeName string
	// Initialize attaches the type's components. Base components, the parent
	// link, physics and scripts are handled by the factory.
	Initialize func(w *World, e Entity, vo *resources.ItemVO) error
	// System, when non-nil, is registered with the world at SystemPriority.
	System         System
	SystemPriority int
	// Drawable, when non-nil, draws items of this type.
	Drawable Drawable
}

// EntityFactory materializes scene items into entities.
type EntityFactory struct {
	world   *World
	index   *ComponentIndex
	rm      resources.Retriever
	physics *physics.World
	lights  *lighting.Simulation
	scripts ScriptProvider
	log     *zap.Logger

	external map[string]ExternalItemType
	regions  map[string]*resources.Region
	ppwu     float64
	debug    bool
}

// NewEntityFactory creates a factory. physics, lights and scripts may be nil;
// the corresponding parts of scene items are then ignored.
func NewEntityFactory(w *World, index *ComponentIndex, rm resources.Retriever, phys *physics.World, lights *lighting.Simulation, scripts ScriptProvider, log *zap.Logger) *EntityFactory {
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityFactory{
		world:    w,
		index:    index,
		rm:       rm,
		physics:  phys,
		lights:   lights,
		scripts:  scripts,
		log:      log,
		external: make(map[string]ExternalItemType),
		regions:  make(map[string]*resources.Region),
		ppwu:     1,
	}
}

// SetPixelsPerWU sets the pixel-to-world ratio used to size images that do
// not declare dimensions.
func (f *EntityFactory) SetPixelsPerWU(ppwu float64) {
	if ppwu <= 0 {
		ppwu = 1
	}
	f.ppwu = ppwu
}

// SetDebug enables tree depth and child count warnings.
func (f *EntityFactory) SetDebug(on bool) {
	f.debug = on
}

// AddExternalFactory registers an external item type.
func (f *EntityFactory) AddExternalFactory(t ExternalItemType) {
	f.external[t.TypeName] = t
}

// Clean drops caches held between scene loads.
func (f *EntityFactory) Clean() {
	clear(f.regions)
}

// CreateEntity creates an entity for vo under parent. Pass NoEntity for a
// parentless item. The entity is deleted again when initialization fails.
func (f *EntityFactory) CreateEntity(parent Entity, vo *resources.ItemVO) (Entity, error) {
	e := f.world.Create(MainItem, Transform, Dimensions, Tint, ZIndex)
	if err := f.InitializeEntity(parent, parent != NoEntity, e, vo); err != nil {
		f.world.Delete(e)
		return NoEntity, err
	}
	return e, nil
}

// CreateRootEntity creates the root composite of a scene and attaches the
// viewport to it.
func (f *EntityFactory) CreateRootEntity(vo *resources.ItemVO, viewport *Viewport) (Entity, error) {
	if vo.Type == "" {
		vo.Type = resources.ItemComposite
	}
	e, err := f.CreateEntity(NoEntity, vo)
	if err != nil {
		return NoEntity, err
	}
	setComponent(f.world.Entry(e), ViewPort, ViewPortData{Viewport: viewport})
	return e, nil
}

// InitAllChildren creates the children of vo under root, depth-first, in
// declared order.
func (f *EntityFactory) InitAllChildren(root Entity, vo *resources.ItemVO) error {
	type job struct {
		parent Entity
		vo     *resources.ItemVO
	}
	stack := []job{{root, vo}}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		created := make([]job, 0, len(j.vo.Children))
		for _, child := range j.vo.Children {
			if child == nil {
				continue
			}
			e, err := f.CreateEntity(j.parent, child)
			if err != nil {
				return fmt.Errorf("h2d: create %q: %w", child.Name, err)
			}
			if len(child.Children) > 0 {
				created = append(created, job{e, child})
			}
		}
		if f.debug {
			debugCheckChildCount(f.world, j.parent, f.log)
		}
		// Push in reverse so siblings expand in declared order.
		for i := len(created) - 1; i >= 0; i-- {
			stack = append(stack, created[i])
		}
	}
	return nil
}

// InitializeEntity attaches the components described by vo to e and, when
// hasParent is set, links it under parent.
func (f *EntityFactory) InitializeEntity(parent Entity, hasParent bool, e Entity, vo *resources.ItemVO) error {
	typ, ext, err := f.itemType(vo.Type)
	if err != nil {
		return err
	}
	entry := f.world.Entry(e)

	setComponent(entry, MainItem, MainItemData{
		UniqueID:   vo.UniqueID,
		Identifier: vo.Identifier,
		Name:       vo.Name,
		Tags:       append([]string(nil), vo.Tags...),
		CustomVars: copyVars(vo.CustomVars),
		Type:       typ,
		Visible:    !vo.Hidden,
	})
	setComponent(entry, Transform, TransformData{
		X: vo.X, Y: vo.Y,
		OriginX: vo.OriginX, OriginY: vo.OriginY,
		ScaleX: scaleOrOne(vo.ScaleX), ScaleY: scaleOrOne(vo.ScaleY),
		Rotation: vo.Rotation,
	})
	setComponent(entry, Dimensions, DimensionsData{
		Width:   vo.Width,
		Height:  vo.Height,
		Polygon: polygonVec(vo.Polygon),
	})
	setComponent(entry, Tint, TintData{Color: ColorFromSlice(vo.Tint)})
	layer := vo.Layer
	if layer == "" {
		layer = defaultLayerName
	}
	setComponent(entry, ZIndex, ZIndexData{LayerName: layer, ZIndex: vo.ZIndex})
	if vo.Shader != "" || vo.Overlay {
		rl := LayerScreen
		if vo.Overlay {
			rl = LayerOverlay
		}
		setComponent(entry, Shader, ShaderData{ShaderName: vo.Shader, RenderingLayer: rl})
	}

	if hasParent && parent != NoEntity && f.world.Valid(parent) {
		AddChild(f.world, parent, e)
		if f.debug {
			debugCheckTreeDepth(f.world, e, f.log)
		}
	}

	switch {
	case ext != nil:
		if ext.Initialize != nil {
			if err := ext.Initialize(f.world, e, vo); err != nil {
				return fmt.Errorf("h2d: initialize %s item: %w", ext.TypeName, err)
			}
		}
	case typ == EntityComposite:
		f.initComposite(e, vo)
	case typ == EntityImage:
		f.initImage(e, vo)
	}

	if vo.Physics != nil && f.physics != nil {
		f.initPhysics(e, vo)
	}
	if typ == EntityLight {
		f.initLight(e, vo)
	}
	if len(vo.Scripts) > 0 {
		f.initScripts(e, vo)
	}
	return nil
}

func (f *EntityFactory) itemType(name string) (EntityType, *ExternalItemType, error) {
	switch name {
	case resources.ItemComposite:
		return EntityComposite, nil, nil
	case resources.ItemImage:
		return EntityImage, nil, nil
	case resources.ItemLight:
		return EntityLight, nil, nil
	}
	if ext, ok := f.external[name]; ok {
		return ext.TypeID, &ext, nil
	}
	return EntityUnknown, nil, fmt.Errorf("%w: %q", ErrUnknownItemType, name)
}

func (f *EntityFactory) initComposite(e Entity, vo *resources.ItemVO) {
	entry := f.world.Entry(e)
	if !entry.HasComponent(Node) {
		entry.AddComponent(Node)
	}
	layers := append([]resources.LayerVO(nil), vo.Layers...)
	if len(layers) == 0 {
		layers = []resources.LayerVO{{Name: defaultLayerName, Visible: true}}
	}
	setComponent(entry, LayerMap, LayerMapData{Layers: layers})
}

func (f *EntityFactory) initImage(e Entity, vo *resources.ItemVO) {
	entry := f.world.Entry(e)
	region := f.region(vo.ImageName)
	if region == nil {
		f.log.Warn("texture region not found",
			zap.String("item", vo.Name),
			zap.String("region", vo.ImageName))
	}
	dim := Dimensions.Get(entry)
	if region != nil && (dim.Width == 0 || dim.Height == 0) {
		dim.Width = float64(region.RegionWidth()) / f.ppwu
		dim.Height = float64(region.RegionHeight()) / f.ppwu
	}
	setComponent(entry, TextureRegion, TextureRegionData{
		Region:     region,
		RegionName: vo.ImageName,
		IsRepeat:   vo.Repeat,
		IsPolygon:  len(dim.Polygon) >= 3,
		dirty:      true,
	})
}

func (f *EntityFactory) region(name string) *resources.Region {
	if name == "" || f.rm == nil {
		return nil
	}
	if r, ok := f.regions[name]; ok {
		return r
	}
	r, ok := f.rm.TextureRegion(name)
	if !ok {
		return nil
	}
	f.regions[name] = r
	return r
}

func (f *EntityFactory) initPhysics(e Entity, vo *resources.ItemVO) {
	entry := f.world.Entry(e)
	t := Transform.Get(entry)
	dim := Dimensions.Get(entry)
	pv := vo.Physics
	body := f.physics.CreateBody(physics.BodyDef{
		Type:        physics.ParseBodyType(pv.BodyType),
		X:           t.X + t.OriginX,
		Y:           t.Y + t.OriginY,
		Angle:       t.Rotation * math.Pi / 180,
		Width:       dim.Width * math.Abs(t.ScaleX),
		Height:      dim.Height * math.Abs(t.ScaleY),
		Density:     pv.Density,
		Friction:    pv.Friction,
		Restitution: pv.Restitution,
		Sensor:      pv.Sensor,
		UserData:    e,
	})
	setComponent(entry, PhysicsBody, PhysicsBodyData{
		BodyType:    pv.BodyType,
		Density:     pv.Density,
		Friction:    pv.Friction,
		Restitution: pv.Restitution,
		Sensor:      pv.Sensor,
		Body:        body,
	})
}

func (f *EntityFactory) initLight(e Entity, vo *resources.ItemVO) {
	if f.lights == nil {
		return
	}
	lv := vo.Light
	if lv == nil {
		lv = &resources.LightVO{Type: "POINT", Rays: 12, Distance: 300}
	}
	c := ColorWhite
	if lv.Color != nil {
		c = ColorFromSlice(lv.Color)
	}
	x, y := LocalToWorld(f.world, e, 0, 0)
	distance := lv.Distance
	if distance <= 0 {
		distance = 1
	}

	var l *lighting.Light
	if lv.Type == "CONE" {
		l = lighting.NewConeLight(f.lights, lv.Rays, c.light(), distance, x, y, lv.Direction, lv.ConeDegree)
	} else {
		l = lighting.NewPointLight(f.lights, lv.Rays, c.light(), distance, x, y)
	}
	l.Soft = lv.Soft
	l.Static = lv.Static
	l.XRay = lv.XRay
	l.SetHeight(lv.Height)
	if lv.Intensity > 0 {
		l.Intensity = lv.Intensity
	}

	entry := f.world.Entry(e)
	if lv.Attached && entry.HasComponent(PhysicsBody) {
		setComponent(entry, LightBody, LightBodyData{Light: l})
		return
	}
	setComponent(entry, LightObject, LightObjectData{Light: l})
}

func (f *EntityFactory) initScripts(e Entity, vo *resources.ItemVO) {
	if f.scripts == nil {
		f.log.Warn("scripts declared but no script provider configured",
			zap.String("item", vo.Name))
		return
	}
	for _, name := range vo.Scripts {
		s, err := f.scripts.NewScript(name)
		if err != nil {
			f.log.Warn("script not attached",
				zap.String("item", vo.Name),
				zap.String("script", name),
				zap.Error(err))
			continue
		}
		AttachScript(f.world, e, s)
	}
}

func scaleOrOne(s float64) float64 {
	if s == 0 {
		return 1
	}
	return s
}

func copyVars(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func polygonVec(pts [][]float64) []Vec2 {
	if len(pts) == 0 {
		return nil
	}
	out := make([]Vec2, 0, len(pts))
	for _, p := range pts {
		if len(p) < 2 {
			continue
		}
		out = append(out, Vec2{p[0], p[1]})
	}
	return out
}
