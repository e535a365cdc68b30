package h2d

// Script is a behavior attached to an entity. Init runs once when the entity
// is inserted, Act once per frame afterwards, and Dispose when the entity is
// removed. Dispose is only called on scripts whose Init was invoked.
type Script interface {
	Init(e Entity) error
	Act(dt float64)
	Dispose() error
}

// ScriptProvider builds the script named in a scene item. The scripting
// package's Lua engine implements it through ScriptProviderFunc.
type ScriptProvider interface {
	NewScript(name string) (Script, error)
}

// ScriptProviderFunc adapts a function to ScriptProvider.
type ScriptProviderFunc func(name string) (Script, error)

// NewScript calls f(name).
func (f ScriptProviderFunc) NewScript(name string) (Script, error) {
	return f(name)
}

// AttachScript appends s to the scripts of e. Scripts attached to an active
// entity are initialized by the next ScriptSystem update.
func AttachScript(w *World, e Entity, s Script) {
	entry := w.Entry(e)
	if !entry.HasComponent(ScriptComp) {
		entry.AddComponent(ScriptComp)
	}
	sd := ScriptComp.Get(entry)
	sd.Scripts = append(sd.Scripts, s)
	sd.initialized = append(sd.initialized, false)
}

// Initialized reports whether Scripts[i] has had Init invoked.
func (sd *ScriptData) Initialized(i int) bool {
	return i >= 0 && i < len(sd.initialized) && sd.initialized[i]
}

func (sd *ScriptData) syncLatches() {
	for len(sd.initialized) < len(sd.Scripts) {
		sd.initialized = append(sd.initialized, false)
	}
}
