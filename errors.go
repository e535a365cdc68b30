package h2d

import "errors"

var (
	// ErrEngineNotInitialized is returned by operations that need a world
	// created by SceneLoader.CreateEngine.
	ErrEngineNotInitialized = errors.New("h2d: engine not initialized")

	// ErrSceneNotFound is returned when the resource retriever has no scene
	// with the requested name.
	ErrSceneNotFound = errors.New("h2d: scene not found")

	// ErrUnknownComponentKind is returned for accessor lookups of a kind that
	// was never registered with the ComponentIndex.
	ErrUnknownComponentKind = errors.New("h2d: unknown component kind")

	// ErrLibraryItemNotFound is returned when a library item or action name
	// is absent from the project.
	ErrLibraryItemNotFound = errors.New("h2d: library item not found")

	// ErrUnknownItemType is returned when a scene item names a type no
	// factory is registered for.
	ErrUnknownItemType = errors.New("h2d: unknown item type")
)
