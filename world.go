package h2d

import (
	"sort"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"go.uber.org/zap"
)

// EntityState is the lifecycle state of an entity.
type EntityState uint8

const (
	StateUninitialized EntityState = iota // created, insertion hooks not yet run
	StateInserted                         // insertion hooks running
	StateActive                           // fully inserted
	StateRemoved                          // removal hooks done, components gone
)

func (s EntityState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInserted:
		return "inserted"
	case StateActive:
		return "active"
	default:
		return "removed"
	}
}

// LifecycleHooks observe structural changes committed by World.Flush.
type LifecycleHooks interface {
	// EntityInserted runs once for every created entity.
	EntityInserted(w *World, e Entity)
	// EntityRemoved runs once for every deleted entity while its components
	// are still readable.
	EntityRemoved(w *World, e Entity)
}

// FlushStarter is implemented by hooks that want to know when a Flush with
// pending work begins.
type FlushStarter interface {
	FlushStarted(w *World)
}

// System is run once per World.Process call.
type System interface {
	Update(w *World, dt float64)
}

// SystemFunc adapts a function to System.
type SystemFunc func(w *World, dt float64)

// Update calls f(w, dt).
func (f SystemFunc) Update(w *World, dt float64) {
	f(w, dt)
}

// System priorities. Higher priorities run first.
const (
	PriorityHigh   = 100
	PriorityNormal = 0
	PriorityLow    = -100
)

type systemEntry struct {
	priority int
	system   System
}

// World is a donburi world with a two-phase structural commit. Creation and
// deletion are recorded immediately but hooks only run in Flush: insertions
// first, in creation order, then removals in request order. Removals
// requested by a removal hook are drained in the same Flush.
type World struct {
	w   donburi.World
	log *zap.Logger

	states        map[Entity]EntityState
	created       map[Entity]uint64
	nextSeq       uint64
	pendingInsert []Entity
	removeQueue   []Entity
	removing      map[Entity]bool

	hooks   []LifecycleHooks
	systems []systemEntry

	flushing bool
}

// NewWorld creates an empty world. expected sizes internal maps.
func NewWorld(expected int, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	if expected <= 0 {
		expected = 128
	}
	return &World{
		w:        donburi.NewWorld(),
		log:      log,
		states:   make(map[Entity]EntityState, expected),
		created:  make(map[Entity]uint64, expected),
		removing: make(map[Entity]bool),
	}
}

// Donburi returns the underlying donburi world.
func (w *World) Donburi() donburi.World {
	return w.w
}

// AddHooks registers lifecycle hooks. Hooks run in registration order.
func (w *World) AddHooks(h LifecycleHooks) {
	w.hooks = append(w.hooks, h)
}

// AddSystem registers a system at the given priority. Systems with equal
// priority run in registration order.
func (w *World) AddSystem(priority int, s System) {
	w.systems = append(w.systems, systemEntry{priority: priority, system: s})
	sort.SliceStable(w.systems, func(i, j int) bool {
		return w.systems[i].priority > w.systems[j].priority
	})
}

// Systems returns the registered systems in run order.
func (w *World) Systems() []System {
	out := make([]System, len(w.systems))
	for i, s := range w.systems {
		out[i] = s.system
	}
	return out
}

// Create creates an entity with the given components. Its insertion hooks
// run at the next Flush.
func (w *World) Create(components ...donburi.IComponentType) Entity {
	if len(components) == 0 {
		components = []donburi.IComponentType{MainItem}
	}
	e := w.w.Create(components...)
	w.states[e] = StateUninitialized
	// donburi reuses ids, so creation order is tracked separately.
	w.nextSeq++
	w.created[e] = w.nextSeq
	w.pendingInsert = append(w.pendingInsert, e)
	return e
}

// Entry returns the donburi entry of e.
func (w *World) Entry(e Entity) *donburi.Entry {
	return w.w.Entry(e)
}

// Valid reports whether e still has components.
func (w *World) Valid(e Entity) bool {
	return w.w.Valid(e)
}

// Alive reports whether e exists and has not been scheduled for deletion.
func (w *World) Alive(e Entity) bool {
	st, ok := w.states[e]
	return ok && st != StateRemoved && !w.removing[e]
}

// State returns the lifecycle state of e. Entities the world does not track,
// including deleted ones, report StateRemoved.
func (w *World) State(e Entity) EntityState {
	st, ok := w.states[e]
	if !ok {
		return StateRemoved
	}
	return st
}

// Delete schedules e for deletion. Deleting an entity twice, or one that is
// not alive, is a no-op.
func (w *World) Delete(e Entity) {
	if !w.Alive(e) {
		return
	}
	w.removing[e] = true
	w.removeQueue = append(w.removeQueue, e)
}

// DeleteAll schedules every live entity for deletion, oldest first.
func (w *World) DeleteAll() {
	for _, e := range w.Entities() {
		w.Delete(e)
	}
}

// Entities returns the live entities in creation order.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, len(w.states))
	for e := range w.states {
		if w.Alive(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return w.created[out[i]] < w.created[out[j]] })
	return out
}

// Len returns the number of live entities.
func (w *World) Len() int {
	n := 0
	for e := range w.states {
		if w.Alive(e) {
			n++
		}
	}
	return n
}

// Pending reports whether a Flush has work to do.
func (w *World) Pending() bool {
	return len(w.pendingInsert) > 0 || len(w.removeQueue) > 0
}

// Flush commits pending structural changes. Nested calls from hooks are
// ignored; the outer Flush drains whatever they queued.
func (w *World) Flush() {
	if w.flushing {
		return
	}
	w.flushing = true
	defer func() { w.flushing = false }()

	if w.Pending() {
		for _, h := range w.hooks {
			if fs, ok := h.(FlushStarter); ok {
				fs.FlushStarted(w)
			}
		}
	}

	for w.Pending() {
		inserted := w.pendingInsert
		w.pendingInsert = nil
		for _, e := range inserted {
			if w.states[e] != StateUninitialized {
				continue
			}
			w.states[e] = StateInserted
			for _, h := range w.hooks {
				h.EntityInserted(w, e)
			}
		}
		for _, e := range inserted {
			if w.states[e] == StateInserted {
				w.states[e] = StateActive
			}
		}

		// Hooks for a batch all run before any of its entities lose their
		// components, so siblings and parents stay readable.
		batch := w.removeQueue
		w.removeQueue = nil
		for _, e := range batch {
			for _, h := range w.hooks {
				h.EntityRemoved(w, e)
			}
		}
		for _, e := range batch {
			if w.w.Valid(e) {
				w.w.Remove(e)
			}
			delete(w.states, e)
			delete(w.created, e)
			delete(w.removing, e)
		}
		if len(batch) > 0 {
			w.log.Debug("entities removed", zap.Int("count", len(batch)))
		}
	}
}

// Process flushes pending changes, then runs every system followed by a
// flush, then delivers queued events.
func (w *World) Process(dt float64) {
	w.Flush()
	for _, s := range w.systems {
		s.system.Update(w, dt)
		w.Flush()
	}
	events.ProcessAllEvents(w.w)
}
