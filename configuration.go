package h2d

import (
	"reflect"

	"github.com/phanxgames/h2d/config"
	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/physics"
	"github.com/phanxgames/h2d/resources"
	"go.uber.org/zap"
)

// Default system priorities. Physics writes transforms before lights read
// them; culling runs last so it sees the final positions of the frame.
const (
	PriorityViewport = 60
	PriorityPhysics  = 50
	PriorityLight    = 40
	PriorityScript   = 30
	PriorityAction   = 20
	PriorityCulling  = 10
)

type configuredSystem struct {
	priority int
	system   System
}

// SceneConfiguration collects everything a SceneLoader is built from.
// The zero value is not usable; call NewSceneConfiguration.
type SceneConfiguration struct {
	Retriever resources.Retriever
	Physics   *physics.World
	Lights    *lighting.Simulation
	Scripts   ScriptProvider
	Logger    *zap.Logger

	// ExpectedEntityCount sizes the world's internal maps.
	ExpectedEntityCount int
	// BatchVertices is the vertex budget of the sprite batch.
	BatchVertices int
	// Debug enables renderer stats and scene-tree sanity warnings.
	Debug bool

	culling       bool
	externalTypes []ExternalItemType
	systems       []configuredSystem
}

// NewSceneConfiguration creates a configuration with the default physics
// world (gravity 0, -10), a diffuse lighting simulation with blur, culling
// and shadows on, and the default systems.
func NewSceneConfiguration(rm resources.Retriever) *SceneConfiguration {
	lights := lighting.New(lighting.Options{Diffuse: true})
	lights.SetAmbientLight(lighting.Color{R: 1, G: 1, B: 1, A: 1})
	lights.SetCulling(true)
	lights.SetBlur(true)
	lights.SetBlurNum(3)
	lights.SetShadows(true)

	c := &SceneConfiguration{
		Retriever:           rm,
		Physics:             physics.New(0, -10),
		Lights:              lights,
		Logger:              zap.NewNop(),
		ExpectedEntityCount: 128,
		BatchVertices:       defaultBatchVertices,
	}
	c.addDefaultSystems()
	c.SetCulling(true)
	return c
}

// ConfigurationFromConfig builds a configuration from a loaded config file.
func ConfigurationFromConfig(cfg *config.Config, rm resources.Retriever, log *zap.Logger) *SceneConfiguration {
	c := NewSceneConfiguration(rm)
	if log != nil {
		c.Logger = log
	}
	c.ExpectedEntityCount = cfg.Engine.ExpectedEntityCount
	if cfg.Engine.BatchVertices > 0 {
		c.BatchVertices = cfg.Engine.BatchVertices
	}
	c.Debug = cfg.Engine.Debug
	c.Physics.SetGravity(cfg.Physics.GravityX, cfg.Physics.GravityY)

	l := lighting.New(lighting.Options{
		Diffuse:         cfg.Lighting.Diffuse,
		GammaCorrection: cfg.Lighting.GammaCorrection,
	})
	l.SetBlur(cfg.Lighting.Blur)
	l.SetBlurNum(cfg.Lighting.BlurNum)
	l.SetCulling(cfg.Lighting.Culling)
	l.SetShadows(cfg.Lighting.Shadows)
	c.Lights = l

	c.SetCulling(cfg.Engine.Culling)
	return c
}

func (c *SceneConfiguration) addDefaultSystems() {
	c.AddSystemWithPriority(&ViewportSystem{}, PriorityViewport)
	c.AddSystemWithPriority(&PhysicsSystem{}, PriorityPhysics)
	c.AddSystemWithPriority(&LightSystem{}, PriorityLight)
	c.AddSystemWithPriority(&ScriptSystem{}, PriorityScript)
	c.AddSystemWithPriority(&ActionSystem{}, PriorityAction)
}

// SetCulling turns view culling on or off, adding or removing the culling
// system.
func (c *SceneConfiguration) SetCulling(on bool) {
	c.culling = on
	if on {
		if !c.ContainsSystem(&CullingSystem{}) {
			c.AddSystemWithPriority(&CullingSystem{}, PriorityCulling)
		}
		return
	}
	c.RemoveSystem(&CullingSystem{})
}

// Culling reports whether view culling is on.
func (c *SceneConfiguration) Culling() bool {
	return c.culling
}

// AddSystem registers s at PriorityNormal. A system of the same concrete
// type is replaced in place, keeping its priority.
func (c *SceneConfiguration) AddSystem(s System) {
	c.AddSystemWithPriority(s, PriorityNormal)
}

// AddSystemWithPriority registers s at priority. A system of the same
// concrete type is replaced and moved to the new priority.
func (c *SceneConfiguration) AddSystemWithPriority(s System, priority int) {
	if i := c.systemIndex(reflect.TypeOf(s)); i >= 0 {
		c.systems[i] = configuredSystem{priority: priority, system: s}
		return
	}
	c.systems = append(c.systems, configuredSystem{priority: priority, system: s})
}

// ContainsSystem reports whether a system of the same concrete type as s is
// registered.
func (c *SceneConfiguration) ContainsSystem(s System) bool {
	return c.systemIndex(reflect.TypeOf(s)) >= 0
}

// RemoveSystem removes the system of the same concrete type as s.
func (c *SceneConfiguration) RemoveSystem(s System) bool {
	i := c.systemIndex(reflect.TypeOf(s))
	if i < 0 {
		return false
	}
	c.systems = append(c.systems[:i], c.systems[i+1:]...)
	return true
}

// System returns the registered system of the same concrete type as s.
func (c *SceneConfiguration) System(s System) (System, bool) {
	i := c.systemIndex(reflect.TypeOf(s))
	if i < 0 {
		return nil, false
	}
	return c.systems[i].system, true
}

// Systems returns the registered systems in registration order.
func (c *SceneConfiguration) Systems() []System {
	out := make([]System, len(c.systems))
	for i, s := range c.systems {
		out[i] = s.system
	}
	return out
}

func (c *SceneConfiguration) systemIndex(t reflect.Type) int {
	for i, s := range c.systems {
		if reflect.TypeOf(s.system) == t {
			return i
		}
	}
	return -1
}

// AddExternalItemType registers an external item type for the next
// CreateEngine.
func (c *SceneConfiguration) AddExternalItemType(t ExternalItemType) {
	c.externalTypes = append(c.externalTypes, t)
}
