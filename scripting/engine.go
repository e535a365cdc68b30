// Package scripting runs item behaviors written in Lua.
//
// A behavior is a global Lua table holding optional init, act and dispose
// functions:
//
//	Patrol = {}
//	function Patrol:init(entity) self.t = 0 end
//	function Patrol:act(dt) self.t = self.t + dt end
//	function Patrol:dispose() end
//
// Every attached behavior gets its own instance table whose metatable
// indexes the behavior table, so per-entity state lives on self.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file in scriptsDir.
// An empty or missing directory yields an engine with no behaviors.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir != "" {
		if err := e.loadDir(scriptsDir); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically behavior definitions.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua string: %w", err)
	}
	return nil
}

// HasBehavior reports whether a global behavior table with the name exists.
func (e *Engine) HasBehavior(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LTable)
	return ok
}

// NewScript creates a fresh instance of the named behavior.
func (e *Engine) NewScript(name string) (*Script, error) {
	class, ok := e.vm.GetGlobal(name).(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua behavior %q not found", name)
	}
	self := e.vm.NewTable()
	mt := e.vm.NewTable()
	mt.RawSetString("__index", class)
	e.vm.SetMetatable(self, mt)
	return &Script{engine: e, name: name, self: self}, nil
}

// Global returns a global Lua value.
func (e *Engine) Global(name string) lua.LValue {
	return e.vm.GetGlobal(name)
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}
