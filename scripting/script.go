package scripting

import (
	"fmt"

	"github.com/yohamta/donburi"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script is one behavior instance attached to an entity.
type Script struct {
	engine *Engine
	name   string
	self   *lua.LTable
	entity donburi.Entity
}

// Name returns the behavior name.
func (s *Script) Name() string {
	return s.name
}

// Self returns the instance table.
func (s *Script) Self() *lua.LTable {
	return s.self
}

// Init calls self:init(entityId).
func (s *Script) Init(entity donburi.Entity) error {
	s.entity = entity
	s.self.RawSetString("entity", lua.LNumber(entity.Id()))
	return s.call("init", lua.LNumber(entity.Id()))
}

// Act calls self:act(dt). Errors are logged, not returned, since act runs
// every frame.
func (s *Script) Act(dt float64) {
	if err := s.call("act", lua.LNumber(dt)); err != nil {
		s.engine.log.Error("lua act failed",
			zap.String("behavior", s.name),
			zap.Uint32("entity", uint32(s.entity.Id())),
			zap.Error(err))
	}
}

// Dispose calls self:dispose().
func (s *Script) Dispose() error {
	return s.call("dispose")
}

func (s *Script) call(method string, args ...lua.LValue) error {
	vm := s.engine.vm
	fn := vm.GetField(s.self, method)
	if fn == lua.LNil {
		return nil
	}
	callArgs := append([]lua.LValue{s.self}, args...)
	if err := vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, callArgs...); err != nil {
		return fmt.Errorf("%s.%s: %w", s.name, method, err)
	}
	return nil
}
