package h2d

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/phanxgames/h2d/lighting"
	"github.com/phanxgames/h2d/physics"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// engineSystem is implemented by the built-in systems. CreateEngine binds
// them to the loader's collaborators before they are registered.
type engineSystem interface {
	System
	bindEngine(l *SceneLoader)
}

// entitiesWith returns the entities holding ct. Systems iterate the
// snapshot so they may create or delete entities while updating.
func entitiesWith(w *World, ct donburi.IComponentType) []Entity {
	var out []Entity
	donburi.NewQuery(filter.Contains(ct)).Each(w.Donburi(), func(entry *donburi.Entry) {
		out = append(out, entry.Entity())
	})
	return out
}

// --- Viewport ---

// ViewportSystem advances camera scroll animations of the root viewport.
type ViewportSystem struct {
	loader *SceneLoader
}

func (s *ViewportSystem) bindEngine(l *SceneLoader) { s.loader = l }

// Update implements System.
func (s *ViewportSystem) Update(w *World, dt float64) {
	if s.loader == nil {
		return
	}
	if vp := s.loader.Renderer().viewport(); vp != nil {
		vp.Advance(dt)
	}
}

// --- Physics ---

// PhysicsSystem steps the physics world and copies the position and angle
// of non-static bodies back to their items' transforms.
type PhysicsSystem struct {
	physics *physics.World
	index   *ComponentIndex
	off     bool
}

func (s *PhysicsSystem) bindEngine(l *SceneLoader) {
	s.physics = l.physics
	s.index = l.index
}

// SetPhysicsOn pauses or resumes stepping without touching the world's
// enabled flag.
func (s *PhysicsSystem) SetPhysicsOn(on bool) {
	s.off = !on
}

// Update implements System.
func (s *PhysicsSystem) Update(w *World, dt float64) {
	if s.off || s.physics == nil || !s.physics.Enabled() {
		return
	}
	s.physics.Step(dt)
	for _, e := range entitiesWith(w, PhysicsBody) {
		if !w.Alive(e) {
			continue
		}
		pb, _ := Lookup[PhysicsBodyData](s.index, e, KindPhysicsBody)
		t, ok := Lookup[TransformData](s.index, e, KindTransform)
		if pb == nil || pb.Body == nil || !ok {
			continue
		}
		if pb.Body.GetType() == cp.BODY_STATIC {
			continue
		}
		pos := pb.Body.Position()
		t.X = pos.X - t.OriginX
		t.Y = pos.Y - t.OriginY
		t.Rotation = pb.Body.Angle() * 180 / math.Pi
	}
}

// --- Lights ---

// LightSystem moves lights to their items' world positions and updates the
// simulation's visible set.
type LightSystem struct {
	lights *lighting.Simulation
	index  *ComponentIndex
}

func (s *LightSystem) bindEngine(l *SceneLoader) {
	s.lights = l.lights
	s.index = l.index
}

// Update implements System.
func (s *LightSystem) Update(w *World, dt float64) {
	if s.lights == nil {
		return
	}
	for _, e := range entitiesWith(w, LightObject) {
		lo, _ := Lookup[LightObjectData](s.index, e, KindLightObject)
		if lo == nil || lo.Light == nil {
			continue
		}
		lo.Light.SetPosition(LocalToWorld(w, e, 0, 0))
		if mi, ok := Lookup[MainItemData](s.index, e, KindMainItem); ok {
			lo.Light.Active = mi.Visible
		}
	}
	for _, e := range entitiesWith(w, LightBody) {
		lb, _ := Lookup[LightBodyData](s.index, e, KindLightBody)
		if lb == nil || lb.Light == nil {
			continue
		}
		// Body lights sit on the body center.
		ox, oy := 0.0, 0.0
		if t, ok := Lookup[TransformData](s.index, e, KindTransform); ok {
			ox, oy = t.OriginX, t.OriginY
		}
		lb.Light.SetPosition(LocalToWorld(w, e, ox, oy))
	}
	s.lights.Update()
}

// --- Scripts ---

// ScriptSystem initializes scripts attached after insertion and calls Act
// on every initialized script.
type ScriptSystem struct {
	coord *LifecycleCoordinator
	index *ComponentIndex
}

func (s *ScriptSystem) bindEngine(l *SceneLoader) {
	s.coord = l.coordinator
	s.index = l.index
}

// Update implements System.
func (s *ScriptSystem) Update(w *World, dt float64) {
	for _, e := range entitiesWith(w, ScriptComp) {
		if w.State(e) != StateActive {
			continue
		}
		sd, ok := Lookup[ScriptData](s.index, e, KindScript)
		if !ok {
			continue
		}
		if s.coord != nil {
			s.coord.initScripts(e, sd)
		}
		for i, sc := range sd.Scripts {
			if sc != nil && sd.Initialized(i) {
				sc.Act(dt)
			}
		}
	}
}

// --- Culling ---

// CullingSystem marks leaf items outside the root viewport as culled.
// Composites are never culled.
type CullingSystem struct {
	loader *SceneLoader
	index  *ComponentIndex
}

func (s *CullingSystem) bindEngine(l *SceneLoader) {
	s.loader = l
	s.index = l.index
}

// Update implements System.
func (s *CullingSystem) Update(w *World, dt float64) {
	if s.loader == nil {
		return
	}
	vp := s.loader.Renderer().viewport()
	if vp == nil {
		return
	}
	view := vp.VisibleBounds()
	for _, e := range entitiesWith(w, Dimensions) {
		mi, ok := Lookup[MainItemData](s.index, e, KindMainItem)
		if !ok {
			continue
		}
		if s.index.Has(e, KindNode) {
			mi.Culled = false
			continue
		}
		dim, _ := Lookup[DimensionsData](s.index, e, KindDimensions)
		box := worldAABB(WorldTransform(w, e), dim.Width, dim.Height)
		mi.Culled = !box.Intersects(view)
	}
}
