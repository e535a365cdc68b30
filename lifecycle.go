package h2d

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/phanxgames/h2d/lighting"
	"go.uber.org/zap"
)

// BodyDestroyer releases physics bodies. *physics.World implements it.
type BodyDestroyer interface {
	DestroyBody(body *cp.Body)
}

// LightRemover removes lights from a lighting simulation.
// *lighting.Simulation implements it.
type LightRemover interface {
	Remove(l *lighting.Light) bool
}

// SpecialEntityCache holds per-entity renderer state. *Renderer implements it.
type SpecialEntityCache interface {
	RemoveSpecialEntity(e Entity)
}

// LifecycleCoordinator reacts to entity insertion and removal. On insertion
// it initializes scripts; on removal it detaches the entity from the node
// graph, cascades deletion to children and releases the physics body,
// lights, scripts and renderer state the entity owns.
type LifecycleCoordinator struct {
	index    *ComponentIndex
	physics  BodyDestroyer
	lights   LightRemover
	renderer SpecialEntityCache
	log      *zap.Logger

	// removalErrs holds the script failures of the current or most recent
	// Flush that removed entities.
	removalErrs []error
}

// NewLifecycleCoordinator creates a coordinator. Any collaborator may be
// nil; the corresponding release step is then skipped.
func NewLifecycleCoordinator(index *ComponentIndex, physics BodyDestroyer, lights LightRemover, renderer SpecialEntityCache, log *zap.Logger) *LifecycleCoordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LifecycleCoordinator{
		index:    index,
		physics:  physics,
		lights:   lights,
		renderer: renderer,
		log:      log,
	}
}

// EntityInserted initializes the entity's scripts in attachment order. Each
// script is initialized exactly once, even when Init fails.
func (c *LifecycleCoordinator) EntityInserted(w *World, e Entity) {
	sd, ok := Lookup[ScriptData](c.index, e, KindScript)
	if !ok {
		return
	}
	c.initScripts(e, sd)
}

func (c *LifecycleCoordinator) initScripts(e Entity, sd *ScriptData) {
	sd.syncLatches()
	for i, s := range sd.Scripts {
		if sd.initialized[i] || s == nil {
			continue
		}
		sd.initialized[i] = true
		if err := safeCall(func() error { return s.Init(e) }); err != nil {
			c.log.Error("script init failed",
				zap.Uint32("entity", uint32(e.Id())),
				zap.Int("script", i),
				zap.Error(err))
		}
	}
}

// EntityRemoved releases everything e owns. Every step runs whether or not
// the previous ones found anything to do.
func (c *LifecycleCoordinator) EntityRemoved(w *World, e Entity) {
	var name string
	var typ EntityType
	if mi, ok := Lookup[MainItemData](c.index, e, KindMainItem); ok {
		name, typ = mi.Name, mi.Type
	}

	// 1. Detach from the parent's child list.
	if pn, ok := Lookup[ParentNodeData](c.index, e, KindParentNode); ok {
		if pn.Parent != NoEntity && w.Alive(pn.Parent) {
			removeChildByID(w, pn.Parent, e)
		}
	}

	// 2. Queue the children. World.Flush drains them in this commit.
	if node, ok := Lookup[NodeData](c.index, e, KindNode); ok {
		for _, child := range node.Children {
			if w.Alive(child) {
				w.Delete(child)
			}
		}
	}

	// 3. Physics body.
	if pb, ok := Lookup[PhysicsBodyData](c.index, e, KindPhysicsBody); ok && pb.Body != nil {
		if c.physics != nil {
			c.physics.DestroyBody(pb.Body)
		}
		pb.Body = nil
	}

	// 4. Light object.
	if lo, ok := Lookup[LightObjectData](c.index, e, KindLightObject); ok && lo.Light != nil {
		if c.lights != nil {
			c.lights.Remove(lo.Light)
		}
	}

	// 5. Light attached to the body.
	if lb, ok := Lookup[LightBodyData](c.index, e, KindLightBody); ok && lb.Light != nil {
		if c.lights != nil {
			c.lights.Remove(lb.Light)
		}
		lb.Light = nil
	}

	// 6. Scripts.
	if sd, ok := Lookup[ScriptData](c.index, e, KindScript); ok {
		if err := c.disposeScripts(e, sd); err != nil {
			c.removalErrs = append(c.removalErrs, fmt.Errorf("entity %d: %w", e.Id(), err))
		}
	}

	// 7. Renderer state.
	if c.renderer != nil {
		c.renderer.RemoveSpecialEntity(e)
	}

	EntityRemovedEventType.Publish(w.Donburi(), EntityRemovedEvent{Entity: e, Type: typ, Name: name})
}

func (c *LifecycleCoordinator) disposeScripts(e Entity, sd *ScriptData) error {
	var errs []error
	for i, s := range sd.Scripts {
		if s == nil || !sd.Initialized(i) {
			continue
		}
		if err := safeCall(s.Dispose); err != nil {
			c.log.Error("script dispose failed",
				zap.Uint32("entity", uint32(e.Id())),
				zap.Int("script", i),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("script %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// FlushStarted forgets the failures of the previous Flush.
func (c *LifecycleCoordinator) FlushStarted(*World) {
	c.removalErrs = nil
}

// LastRemovalError returns the joined script dispose failures of every entity
// removed by the most recent Flush that had pending work, or nil.
func (c *LifecycleCoordinator) LastRemovalError() error {
	return errors.Join(c.removalErrs...)
}

// safeCall runs fn and converts a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
