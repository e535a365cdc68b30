// Package h2d is a 2D scene runtime for [Ebitengine]. It loads scenes
// authored as item trees (composites, images, lights) into a [Donburi] world
// and draws them with a batching renderer, a light map and Chipmunk physics.
//
// # Quick start
//
// Build a configuration around a resource retriever, create the engine and
// load a scene:
//
//	rm := resources.NewManager("assets", log)
//	if err := rm.LoadAll("pack.json"); err != nil { ... }
//
//	loader := h2d.NewSceneLoader(h2d.NewSceneConfiguration(rm))
//	loader.CreateEngine()
//	if _, err := loader.LoadSceneDefault("MainScene", false); err != nil { ... }
//
// Then call [SceneLoader.Update] and [SceneLoader.Draw] from an
// [ebiten.Game]:
//
//	func (g *Game) Update() error        { g.loader.Update(1.0 / 60); return nil }
//	func (g *Game) Draw(s *ebiten.Image) { g.loader.Draw(s) }
//
// # Entities and lifecycle
//
// Every scene item is an [Entity] with a [MainItemData] plus transform,
// dimensions, tint and z-index components. Composites hold their children in
// a [NodeData]; children point back through [ParentNodeData].
//
// Structural changes are deferred. [World.Create] and [World.Delete] record
// the change; [World.Flush] commits it and runs the lifecycle hooks. On
// removal the [LifecycleCoordinator] detaches the entity from its parent,
// deletes its children, destroys its physics body and lights and disposes
// its scripts, all inside the same flush.
//
// # Component access
//
// A [ComponentIndex] maps [ComponentKind] values to component types so
// subsystems can read components without importing each other. External
// item types register extra kinds with [RegisterKind]. Re-binding the index
// to a new world invalidates every accessor handed out for the old one.
//
// # Drawing
//
// The [Renderer] walks the tree from the root composite, sorting children by
// layer, z-index and insertion order, and hands each leaf to the [Drawable]
// registered for its type. Image items use [TextureRegionDrawLogic]: plain
// items are drawn as a quad, repeating and polygon items as a polygon sprite
// whose texture coordinates are wrapped into the atlas region by the region
// shader.
//
// # Systems
//
// Systems run once per [World.Process], highest priority first, each
// followed by a flush. The defaults step physics, move lights, run scripts,
// advance [Action] tweens (built on [gween]) and cull items outside the view.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package h2d
