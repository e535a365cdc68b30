package h2d

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EntityRemovedEvent is published for every entity removed by World.Flush.
type EntityRemovedEvent struct {
	Entity Entity
	Type   EntityType
	Name   string
}

// SceneLoadedEvent is published when SceneLoader.LoadScene completes.
type SceneLoadedEvent struct {
	Name string
	Root Entity
}

// EntityRemovedEventType delivers EntityRemovedEvent. Subscribe with
// events.Subscribe; events are delivered at the end of World.Process.
var EntityRemovedEventType = events.NewEventType[EntityRemovedEvent]()

// SceneLoadedEventType delivers SceneLoadedEvent.
var SceneLoadedEventType = events.NewEventType[SceneLoadedEvent]()

// ProcessEvents delivers queued events without running systems.
func ProcessEvents(w *World) {
	events.ProcessAllEvents(w.Donburi())
}

// OnEntityRemoved subscribes fn to entity removal events of w.
func OnEntityRemoved(w *World, fn func(EntityRemovedEvent)) {
	EntityRemovedEventType.Subscribe(w.Donburi(), func(_ donburi.World, ev EntityRemovedEvent) {
		fn(ev)
	})
}

// OnSceneLoaded subscribes fn to scene load events of w.
func OnSceneLoaded(w *World, fn func(SceneLoadedEvent)) {
	SceneLoadedEventType.Subscribe(w.Donburi(), func(_ donburi.World, ev SceneLoadedEvent) {
		fn(ev)
	})
}
