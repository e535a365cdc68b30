package h2d

import (
	"github.com/jakecoffman/cp"
	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/resources"
	"github.com/yohamta/donburi"
)

// MainItemData identifies a scene item and carries its authored metadata.
type MainItemData struct {
	UniqueID   int
	Identifier string
	Name       string
	Tags       []string
	CustomVars map[string]string
	Type       EntityType
	Visible    bool
	// Culled is set by the culling system when the item is outside the view.
	Culled bool
}

// HasTag reports whether the item carries tag.
func (m *MainItemData) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TransformData is the local placement of an item. Rotation is in degrees,
// counter-clockwise in the y-up world. Origin is the pivot for rotation and
// scale, relative to the item's bottom-left corner.
type TransformData struct {
	X, Y             float64
	OriginX, OriginY float64
	ScaleX, ScaleY   float64
	Rotation         float64
}

// DimensionsData is the item size in world units, plus an optional convex
// polygon (world units, relative to the bottom-left corner).
type DimensionsData struct {
	Width, Height float64
	Polygon       []Vec2
}

// TintData is the item color, multiplied into everything it draws.
type TintData struct {
	Color Color
}

// ZIndexData orders an item among its siblings.
type ZIndexData struct {
	LayerName  string
	ZIndex     int
	LayerIndex int
}

// NodeData lists the children of a composite in draw order.
type NodeData struct {
	Children []Entity
}

// ParentNodeData refers back to the owning composite. It never implies
// ownership and is only read during lookups and removal.
type ParentNodeData struct {
	Parent Entity
}

// LayerMapData holds the ordered layers of a composite.
type LayerMapData struct {
	Layers []resources.LayerVO
}

// Index returns the position of the named layer, or -1.
func (l *LayerMapData) Index(name string) int {
	for i, layer := range l.Layers {
		if layer.Name == name {
			return i
		}
	}
	return -1
}

// Visible reports whether the named layer is drawn. Unknown layers are visible.
func (l *LayerMapData) Visible(name string) bool {
	i := l.Index(name)
	return i < 0 || l.Layers[i].Visible
}

// ViewPortData attaches a viewport to the root composite.
type ViewPortData struct {
	Viewport *Viewport
}

// TextureRegionData holds the region an image draws and the lazily rebuilt
// polygon sprite used for tiled and polygon drawing.
type TextureRegionData struct {
	Region     *resources.Region
	RegionName string
	IsRepeat   bool
	IsPolygon  bool

	sprite *PolygonSprite
	dirty  bool
	// Size and outline the sprite was built for; any change rebuilds it.
	builtWidth, builtHeight float64
	builtPolygon            []Vec2
}

// ShaderData selects a custom shader and the pass the item is drawn in.
type ShaderData struct {
	ShaderName     string
	RenderingLayer RenderingLayer
	Uniforms       map[string]any
}

// ScriptData holds the behaviors attached to an entity, in attachment order.
type ScriptData struct {
	Scripts []Script
	// initialized[i] is set once Scripts[i].Init has been invoked.
	initialized []bool
}

// PhysicsBodyData owns a body in the physics world. Body is nil once released.
type PhysicsBodyData struct {
	BodyType    string
	Density     float64
	Friction    float64
	Restitution float64
	Sensor      bool
	Body        *cp.Body
}

// LightObjectData owns a light in the lighting simulation.
type LightObjectData struct {
	Light *lighting.Light
}

// LightBodyData owns a light that follows the entity's physics body.
// Light is nil once released.
type LightBodyData struct {
	Light *lighting.Light
}

// ActionData holds the actions running on an entity.
type ActionData struct {
	Actions []Action
}

var (
	MainItem      = donburi.NewComponentType[MainItemData]()
	Transform     = donburi.NewComponentType[TransformData](TransformData{ScaleX: 1, ScaleY: 1})
	Dimensions    = donburi.NewComponentType[DimensionsData]()
	Tint          = donburi.NewComponentType[TintData](TintData{Color: ColorWhite})
	ZIndex        = donburi.NewComponentType[ZIndexData]()
	Node          = donburi.NewComponentType[NodeData]()
	ParentNode    = donburi.NewComponentType[ParentNodeData]()
	LayerMap      = donburi.NewComponentType[LayerMapData]()
	ViewPort      = donburi.NewComponentType[ViewPortData]()
	TextureRegion = donburi.NewComponentType[TextureRegionData]()
	Shader        = donburi.NewComponentType[ShaderData]()
	ScriptComp    = donburi.NewComponentType[ScriptData]()
	PhysicsBody   = donburi.NewComponentType[PhysicsBodyData]()
	LightObject   = donburi.NewComponentType[LightObjectData]()
	LightBody     = donburi.NewComponentType[LightBodyData]()
	ActionComp    = donburi.NewComponentType[ActionData]()
)

// setComponent adds ct to the entry when missing and stores v.
func setComponent[T any](entry *donburi.Entry, ct *donburi.ComponentType[T], v T) {
	if !entry.HasComponent(ct) {
		entry.AddComponent(ct)
	}
	ct.SetValue(entry, v)
}
