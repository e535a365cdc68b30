package h2d

import (
	"fmt"

	"github.com/yohamta/donburi"
)

// ComponentKind names a component type registered with a ComponentIndex.
// Built-in kinds are fixed; RegisterKind hands out kinds from KindExtension up.
type ComponentKind uint16

const (
	KindMainItem ComponentKind = iota
	KindTransform
	KindDimensions
	KindTint
	KindZIndex
	KindNode
	KindParentNode
	KindLayerMap
	KindViewPort
	KindTextureRegion
	KindShader
	KindScript
	KindPhysicsBody
	KindLightObject
	KindLightBody
	KindAction

	// KindExtension is the first kind handed out by RegisterKind.
	KindExtension
)

type kindEntry struct {
	ct  donburi.IComponentType
	get func(*donburi.Entry) any
}

// ComponentIndex maps component kinds to accessors bound to one World.
// Accessors stay valid until the index is reset or bound to another world;
// after that they report every component as absent.
type ComponentIndex struct {
	world      *World
	generation uint32
	kinds      []kindEntry
	byType     map[donburi.IComponentType]ComponentKind
	accessors  map[ComponentKind]*Accessor
}

// NewComponentIndex creates an unbound index with every built-in kind
// registered.
func NewComponentIndex() *ComponentIndex {
	ci := &ComponentIndex{
		byType:    make(map[donburi.IComponentType]ComponentKind),
		accessors: make(map[ComponentKind]*Accessor),
	}
	RegisterKind(ci, MainItem)
	RegisterKind(ci, Transform)
	RegisterKind(ci, Dimensions)
	RegisterKind(ci, Tint)
	RegisterKind(ci, ZIndex)
	RegisterKind(ci, Node)
	RegisterKind(ci, ParentNode)
	RegisterKind(ci, LayerMap)
	RegisterKind(ci, ViewPort)
	RegisterKind(ci, TextureRegion)
	RegisterKind(ci, Shader)
	RegisterKind(ci, ScriptComp)
	RegisterKind(ci, PhysicsBody)
	RegisterKind(ci, LightObject)
	RegisterKind(ci, LightBody)
	RegisterKind(ci, ActionComp)
	return ci
}

// Initialize binds the index to w. Binding the world it is already bound to
// does nothing. Binding another world resets the index first, so accessors
// handed out for the previous world stop resolving.
func (ci *ComponentIndex) Initialize(w *World) {
	if ci.world == w {
		return
	}
	if ci.world != nil {
		ci.Reset()
	}
	ci.world = w
}

// Reset unbinds the index and invalidates every accessor handed out so far.
// Registered kinds are kept.
func (ci *ComponentIndex) Reset() {
	ci.world = nil
	ci.generation++
	clear(ci.accessors)
}

// World returns the world the index is bound to, or nil.
func (ci *ComponentIndex) World() *World {
	return ci.world
}

// Kinds returns the number of registered kinds.
func (ci *ComponentIndex) Kinds() int {
	return len(ci.kinds)
}

// Accessor returns the accessor for kind, bound to the current world.
func (ci *ComponentIndex) Accessor(kind ComponentKind) (*Accessor, error) {
	if int(kind) >= len(ci.kinds) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownComponentKind, kind)
	}
	if a, ok := ci.accessors[kind]; ok {
		return a, nil
	}
	a := &Accessor{
		ci:         ci,
		kind:       kind,
		generation: ci.generation,
		entry:      ci.kinds[kind],
	}
	ci.accessors[kind] = a
	return a, nil
}

// Get returns the component of the given kind on e. The value is a pointer
// into the world's storage.
func (ci *ComponentIndex) Get(e Entity, kind ComponentKind) (any, bool) {
	a, err := ci.Accessor(kind)
	if err != nil {
		return nil, false
	}
	return a.Get(e)
}

// Has reports whether e carries the component of the given kind.
func (ci *ComponentIndex) Has(e Entity, kind ComponentKind) bool {
	_, ok := ci.Get(e, kind)
	return ok
}

// Components returns every registered component e carries, in kind order.
func (ci *ComponentIndex) Components(e Entity) []any {
	entry, ok := ci.entry(e)
	if !ok {
		return nil
	}
	var out []any
	for _, k := range ci.kinds {
		if entry.HasComponent(k.ct) {
			out = append(out, k.get(entry))
		}
	}
	return out
}

func (ci *ComponentIndex) entry(e Entity) (*donburi.Entry, bool) {
	if ci.world == nil || !ci.world.Valid(e) {
		return nil, false
	}
	return ci.world.Entry(e), true
}

// RegisterKind registers ct with the index and returns its kind. Registering
// a component type twice returns the kind it already has. Registration never
// invalidates existing accessors and works before or after Initialize.
func RegisterKind[T any](ci *ComponentIndex, ct *donburi.ComponentType[T]) ComponentKind {
	if k, ok := ci.byType[ct]; ok {
		return k
	}
	kind := ComponentKind(len(ci.kinds))
	ci.kinds = append(ci.kinds, kindEntry{
		ct:  ct,
		get: func(entry *donburi.Entry) any { return ct.Get(entry) },
	})
	ci.byType[ct] = kind
	return kind
}

// Lookup returns the typed component of the given kind on e. It reports
// false when e lacks the component or the kind holds a different type.
func Lookup[T any](ci *ComponentIndex, e Entity, kind ComponentKind) (*T, bool) {
	v, ok := ci.Get(e, kind)
	if !ok {
		return nil, false
	}
	p, ok := v.(*T)
	return p, ok
}

// Accessor reads one component kind from entities of the world its index
// was bound to when the accessor was created.
type Accessor struct {
	ci         *ComponentIndex
	kind       ComponentKind
	generation uint32
	entry      kindEntry
}

// Kind returns the component kind the accessor reads.
func (a *Accessor) Kind() ComponentKind {
	return a.kind
}

// Valid reports whether the accessor is still bound to its index's world.
func (a *Accessor) Valid() bool {
	return a.generation == a.ci.generation && a.ci.world != nil
}

// Get returns the component on e, or false when absent or the accessor is
// no longer valid.
func (a *Accessor) Get(e Entity) (any, bool) {
	if !a.Valid() {
		return nil, false
	}
	entry, ok := a.ci.entry(e)
	if !ok || !entry.HasComponent(a.entry.ct) {
		return nil, false
	}
	return a.entry.get(entry), true
}

// Has reports whether e carries the component.
func (a *Accessor) Has(e Entity) bool {
	_, ok := a.Get(e)
	return ok
}
