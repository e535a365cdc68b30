// Package physics wraps a Chipmunk2D space with the body lifecycle the scene
// runtime needs: bodies are created from item descriptions, tracked while
// attached, and destroyed exactly once.
package physics

import (
	"github.com/jakecoffman/cp"
)

// BodyType selects how a body is simulated.
type BodyType uint8

const (
	BodyStatic BodyType = iota
	BodyKinematic
	BodyDynamic
)

// ParseBodyType maps an authored name to a BodyType. Unknown names are static.
func ParseBodyType(s string) BodyType {
	switch s {
	case "dynamic", "DYNAMIC":
		return BodyDynamic
	case "kinematic", "KINEMATIC":
		return BodyKinematic
	}
	return BodyStatic
}

// BodyDef describes a box body. Position is the body center in world units;
// Angle is in radians.
type BodyDef struct {
	Type        BodyType
	X, Y        float64
	Angle       float64
	Width       float64
	Height      float64
	Density     float64
	Friction    float64
	Restitution float64
	Sensor      bool
	UserData    any
}

// World owns a cp.Space and the bodies created through it.
type World struct {
	space    *cp.Space
	bodies   map[*cp.Body]struct{}
	enabled  bool
	disposed bool
}

// New creates a world with the given gravity. Simulation starts enabled.
func New(gravityX, gravityY float64) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: gravityX, Y: gravityY})
	return &World{
		space:   space,
		bodies:  make(map[*cp.Body]struct{}),
		enabled: true,
	}
}

// Space returns the underlying Chipmunk space.
func (w *World) Space() *cp.Space {
	return w.space
}

// SetGravity sets the world gravity.
func (w *World) SetGravity(x, y float64) {
	w.space.SetGravity(cp.Vector{X: x, Y: y})
}

// Gravity returns the world gravity.
func (w *World) Gravity() (x, y float64) {
	g := w.space.Gravity()
	return g.X, g.Y
}

// SetEnabled turns stepping on or off.
func (w *World) SetEnabled(on bool) {
	w.enabled = on
}

// Enabled reports whether Step advances the simulation.
func (w *World) Enabled() bool {
	return w.enabled
}

// CreateBody adds a box body described by def and returns it.
func (w *World) CreateBody(def BodyDef) *cp.Body {
	var body *cp.Body
	switch def.Type {
	case BodyDynamic:
		mass := def.Density * def.Width * def.Height
		if mass <= 0 {
			mass = 1
		}
		body = cp.NewBody(mass, cp.MomentForBox(mass, def.Width, def.Height))
	case BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewStaticBody()
	}
	body.SetPosition(cp.Vector{X: def.X, Y: def.Y})
	body.SetAngle(def.Angle)
	body.UserData = def.UserData

	w.space.AddBody(body)
	if def.Width > 0 && def.Height > 0 {
		shape := cp.NewBox(body, def.Width, def.Height, 0)
		shape.SetFriction(def.Friction)
		shape.SetElasticity(def.Restitution)
		shape.SetSensor(def.Sensor)
		w.space.AddShape(shape)
	}
	w.bodies[body] = struct{}{}
	return body
}

// DestroyBody removes a body and its shapes. Unknown or nil bodies are ignored.
func (w *World) DestroyBody(body *cp.Body) {
	if body == nil {
		return
	}
	if _, ok := w.bodies[body]; !ok {
		return
	}
	var shapes []*cp.Shape
	body.EachShape(func(s *cp.Shape) {
		shapes = append(shapes, s)
	})
	for _, s := range shapes {
		w.space.RemoveShape(s)
	}
	w.space.RemoveBody(body)
	delete(w.bodies, body)
}

// HasBody reports whether body is live in this world.
func (w *World) HasBody(body *cp.Body) bool {
	_, ok := w.bodies[body]
	return ok
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// Step advances the simulation by dt seconds when enabled.
func (w *World) Step(dt float64) {
	if !w.enabled || w.disposed || dt <= 0 {
		return
	}
	w.space.Step(dt)
}

// Dispose destroys every body. Safe to call more than once.
func (w *World) Dispose() {
	if w.disposed {
		return
	}
	for body := range w.bodies {
		w.DestroyBody(body)
	}
	w.disposed = true
}

// Disposed reports whether Dispose has been called.
func (w *World) Disposed() bool {
	return w.disposed
}
