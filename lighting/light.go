package lighting

import "math"

// Color is an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// Kind identifies the shape of a light.
type Kind uint8

const (
	KindPoint Kind = iota
	KindCone
	KindDirectional
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindCone:
		return "cone"
	case KindDirectional:
		return "directional"
	}
	return "unknown"
}

// Light is a light source owned by a Simulation. Positions and distances are
// in world units; Direction and ConeDegree are in degrees.
type Light struct {
	Kind       Kind
	Rays       int
	Color      Color
	X, Y       float64
	Distance   float64
	Direction  float64
	ConeDegree float64
	Height     float64
	Intensity  float64
	Soft       bool
	XRay       bool
	Static     bool
	Active     bool

	sim     *Simulation
	removed bool
}

// NewPointLight creates a point light and adds it to sim.
func NewPointLight(sim *Simulation, rays int, c Color, distance, x, y float64) *Light {
	l := &Light{
		Kind:      KindPoint,
		Rays:      rays,
		Color:     c,
		Distance:  distance,
		X:         x,
		Y:         y,
		Intensity: 1,
		Soft:      true,
		Active:    true,
	}
	sim.Add(l)
	return l
}

// NewConeLight creates a cone light and adds it to sim.
func NewConeLight(sim *Simulation, rays int, c Color, distance, x, y, direction, coneDegree float64) *Light {
	l := NewPointLight(sim, rays, c, distance, x, y)
	l.Kind = KindCone
	l.Direction = direction
	l.ConeDegree = coneDegree
	return l
}

// NewDirectionalLight creates a directional light shining at the given
// angle and adds it to sim.
func NewDirectionalLight(sim *Simulation, rays int, c Color, direction float64) *Light {
	l := &Light{
		Kind:      KindDirectional,
		Rays:      rays,
		Color:     c,
		Direction: direction,
		Intensity: 1,
		Active:    true,
	}
	sim.Add(l)
	return l
}

// SetHeight sets the light height used by pseudo-3D shading.
func (l *Light) SetHeight(h float64) {
	l.Height = h
}

// SetPosition moves the light.
func (l *Light) SetPosition(x, y float64) {
	l.X = x
	l.Y = y
}

// Remove detaches the light from its simulation. Removing twice is a no-op.
func (l *Light) Remove() {
	if l.sim != nil {
		l.sim.Remove(l)
	}
}

// Removed reports whether the light has been removed from its simulation.
func (l *Light) Removed() bool {
	return l.removed
}

// heightFactor scales directional light contribution in pseudo-3D mode.
// Height is an elevation angle in degrees; zero means no attenuation.
func (l *Light) heightFactor() float64 {
	if l.Height <= 0 {
		return 1
	}
	return math.Sin(math.Min(l.Height, 90) * math.Pi / 180)
}
