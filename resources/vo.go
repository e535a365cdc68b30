package resources

// ProjectInfoVO holds project-wide metadata shared by every scene.
type ProjectInfoVO struct {
	PixelToWorld       int                  `yaml:"pixel_to_world"`
	OriginalResolution ResolutionEntryVO    `yaml:"original_resolution"`
	Resolutions        []ResolutionEntryVO  `yaml:"resolutions"`
	Scenes             []string             `yaml:"scenes"`
	LibraryItems       map[string]*ItemVO   `yaml:"library_items"`
	LibraryActions     map[string]*ActionVO `yaml:"library_actions"`
}

// Resolution returns the named resolution entry. "orig" resolves to the
// original resolution.
func (p *ProjectInfoVO) Resolution(name string) (ResolutionEntryVO, bool) {
	if name == "orig" || name == p.OriginalResolution.Name {
		return p.OriginalResolution, true
	}
	for _, r := range p.Resolutions {
		if r.Name == name {
			return r, true
		}
	}
	return ResolutionEntryVO{}, false
}

// ResolutionEntryVO is one authored target resolution.
type ResolutionEntryVO struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Base   int    `yaml:"base"`
}

// SceneVO is the pre-parsed description of one scene.
type SceneVO struct {
	Name              string              `yaml:"name"`
	Composite         *ItemVO             `yaml:"composite"`
	PhysicsProperties PhysicsPropertiesVO `yaml:"physics"`
	LightsProperties  LightsPropertiesVO  `yaml:"lights"`
}

// PhysicsPropertiesVO configures the physics world for a scene.
type PhysicsPropertiesVO struct {
	Enabled  bool    `yaml:"enabled"`
	GravityX float64 `yaml:"gravity_x"`
	GravityY float64 `yaml:"gravity_y"`
}

// Light types accepted in LightsPropertiesVO.LightType.
const (
	LightTypeBright      = "BRIGHT"
	LightTypeDirectional = "DIRECTIONAL"
)

// LightsPropertiesVO configures ambient and directional lighting for a scene.
type LightsPropertiesVO struct {
	Enabled           bool      `yaml:"enabled"`
	LightType         string    `yaml:"light_type"`
	AmbientColor      []float64 `yaml:"ambient_color"`
	DirectionalColor  []float64 `yaml:"directional_color"`
	DirectionalRays   int       `yaml:"directional_rays"`
	DirectionalDegree float64   `yaml:"directional_degree"`
	DirectionalHeight float64   `yaml:"directional_height"`
	BlurNum           int       `yaml:"blur_num"`
	Pseudo3d          bool      `yaml:"pseudo3d"`
}

// Item types understood by the built-in factories.
const (
	ItemComposite = "composite"
	ItemImage     = "image"
	ItemLight     = "light"
)

// ItemVO describes one scene item. Composites carry their children in
// declared order; that order becomes the initial child order of the node.
type ItemVO struct {
	Type       string            `yaml:"type"`
	UniqueID   int               `yaml:"unique_id"`
	Identifier string            `yaml:"identifier"`
	Name       string            `yaml:"name"`
	Tags       []string          `yaml:"tags"`
	CustomVars map[string]string `yaml:"custom_vars"`

	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	OriginX  float64 `yaml:"origin_x"`
	OriginY  float64 `yaml:"origin_y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`

	Tint    []float64 `yaml:"tint"`
	ZIndex  int       `yaml:"z_index"`
	Layer   string    `yaml:"layer"`
	Hidden  bool      `yaml:"hidden"`
	Shader  string    `yaml:"shader"`
	Overlay bool      `yaml:"overlay"`

	// Image items.
	ImageName string      `yaml:"image"`
	Repeat    bool        `yaml:"repeat"`
	Polygon   [][]float64 `yaml:"polygon"`

	// Light items.
	Light *LightVO `yaml:"light_settings"`

	// Composite items.
	Layers   []LayerVO `yaml:"layers"`
	Children []*ItemVO `yaml:"children"`

	Physics *PhysicsBodyVO `yaml:"physics"`
	Scripts []string       `yaml:"scripts"`

	// Extra holds settings for external item types.
	Extra map[string]any `yaml:"extra"`
}

// LayerVO is one drawing layer of a composite.
type LayerVO struct {
	Name    string `yaml:"name"`
	Visible bool   `yaml:"visible"`
}

// LightVO describes a point or cone light item.
type LightVO struct {
	Type       string    `yaml:"type"` // "POINT" or "CONE"
	Rays       int       `yaml:"rays"`
	Distance   float64   `yaml:"distance"`
	Direction  float64   `yaml:"direction"`
	ConeDegree float64   `yaml:"cone_degree"`
	Color      []float64 `yaml:"color"`
	Soft       bool      `yaml:"soft"`
	Static     bool      `yaml:"static"`
	XRay       bool      `yaml:"xray"`
	Height     float64   `yaml:"height"`
	Intensity  float64   `yaml:"intensity"`
	// Attached binds the light to the item's physics body.
	Attached bool `yaml:"attached"`
}

// PhysicsBodyVO describes the body created for an item.
type PhysicsBodyVO struct {
	BodyType    string  `yaml:"body_type"` // "static", "kinematic" or "dynamic"
	Density     float64 `yaml:"density"`
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
	Sensor      bool    `yaml:"sensor"`
}

// ActionVO describes an action (tween) or a composition of actions.
type ActionVO struct {
	Type     string      `yaml:"type"`
	Duration float64     `yaml:"duration"`
	X        float64     `yaml:"x"`
	Y        float64     `yaml:"y"`
	Value    float64     `yaml:"value"`
	Ease     string      `yaml:"ease"`
	Actions  []*ActionVO `yaml:"actions"`
}
