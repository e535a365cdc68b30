package h2d

import (
	"fmt"
	"strings"

	"github.com/phanxgames/h2d/resources"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Action is a timed change applied to an entity by the ActionSystem.
type Action interface {
	// Act advances the action by dt seconds and reports whether it finished.
	Act(w *World, e Entity, dt float64) bool
}

// property selects up to four float64 fields of an entity. Pointers are
// resolved on every step because component storage may move.
type property func(w *World, e Entity) ([4]*float64, int)

var (
	propPosition property = func(w *World, e Entity) ([4]*float64, int) {
		t := Transform.Get(w.Entry(e))
		return [4]*float64{&t.X, &t.Y}, 2
	}
	propScale property = func(w *World, e Entity) ([4]*float64, int) {
		t := Transform.Get(w.Entry(e))
		return [4]*float64{&t.ScaleX, &t.ScaleY}, 2
	}
	propRotation property = func(w *World, e Entity) ([4]*float64, int) {
		t := Transform.Get(w.Entry(e))
		return [4]*float64{&t.Rotation}, 1
	}
	propAlpha property = func(w *World, e Entity) ([4]*float64, int) {
		t := Tint.Get(w.Entry(e))
		return [4]*float64{&t.Color.A}, 1
	}
	propColor property = func(w *World, e Entity) ([4]*float64, int) {
		t := Tint.Get(w.Entry(e))
		return [4]*float64{&t.Color.R, &t.Color.G, &t.Color.B, &t.Color.A}, 4
	}
)

// tweenAction animates a property from its value when the action first runs
// to a target. Relative actions add the target to the start value.
type tweenAction struct {
	prop     property
	to       [4]float64
	relative bool
	duration float32
	fn       ease.TweenFunc

	tweens  [4]*gween.Tween
	started bool
}

func newTween(prop property, duration float64, fn ease.TweenFunc, relative bool, to ...float64) *tweenAction {
	if fn == nil {
		fn = ease.Linear
	}
	a := &tweenAction{prop: prop, relative: relative, duration: float32(duration), fn: fn}
	copy(a.to[:], to)
	return a
}

func (a *tweenAction) Act(w *World, e Entity, dt float64) bool {
	if !w.Valid(e) {
		return true
	}
	fields, n := a.prop(w, e)
	if !a.started {
		a.started = true
		for i := 0; i < n; i++ {
			to := a.to[i]
			if a.relative {
				to += *fields[i]
			}
			if a.duration <= 0 {
				*fields[i] = to
				continue
			}
			a.tweens[i] = gween.New(float32(*fields[i]), float32(to), a.duration, a.fn)
		}
		if a.duration <= 0 {
			return true
		}
	}
	done := true
	for i := 0; i < n; i++ {
		val, finished := a.tweens[i].Update(float32(dt))
		*fields[i] = float64(val)
		if !finished {
			done = false
		}
	}
	return done
}

// MoveTo moves an entity to (x, y).
func MoveTo(x, y, duration float64, fn ease.TweenFunc) Action {
	return newTween(propPosition, duration, fn, false, x, y)
}

// MoveBy moves an entity by (dx, dy).
func MoveBy(dx, dy, duration float64, fn ease.TweenFunc) Action {
	return newTween(propPosition, duration, fn, true, dx, dy)
}

// ScaleTo scales an entity to (sx, sy).
func ScaleTo(sx, sy, duration float64, fn ease.TweenFunc) Action {
	return newTween(propScale, duration, fn, false, sx, sy)
}

// RotateTo rotates an entity to deg degrees.
func RotateTo(deg, duration float64, fn ease.TweenFunc) Action {
	return newTween(propRotation, duration, fn, false, deg)
}

// RotateBy rotates an entity by deg degrees.
func RotateBy(deg, duration float64, fn ease.TweenFunc) Action {
	return newTween(propRotation, duration, fn, true, deg)
}

// AlphaTo fades an entity's tint alpha to a.
func AlphaTo(a, duration float64, fn ease.TweenFunc) Action {
	return newTween(propAlpha, duration, fn, false, a)
}

// ColorTo changes an entity's tint to c.
func ColorTo(c Color, duration float64, fn ease.TweenFunc) Action {
	return newTween(propColor, duration, fn, false, c.R, c.G, c.B, c.A)
}

type delayAction struct {
	remaining float64
}

// Delay finishes after duration seconds without changing anything.
func Delay(duration float64) Action {
	return &delayAction{remaining: duration}
}

func (a *delayAction) Act(w *World, e Entity, dt float64) bool {
	a.remaining -= dt
	return a.remaining <= 0
}

type sequenceAction struct {
	actions []Action
	current int
}

// Sequence runs actions one after another.
func Sequence(actions ...Action) Action {
	return &sequenceAction{actions: actions}
}

func (a *sequenceAction) Act(w *World, e Entity, dt float64) bool {
	for a.current < len(a.actions) {
		if !a.actions[a.current].Act(w, e, dt) {
			return false
		}
		a.current++
		dt = 0
	}
	return true
}

type parallelAction struct {
	actions []Action
	done    []bool
}

// Parallel runs actions together and finishes when all of them have.
func Parallel(actions ...Action) Action {
	return &parallelAction{actions: actions, done: make([]bool, len(actions))}
}

func (a *parallelAction) Act(w *World, e Entity, dt float64) bool {
	all := true
	for i, act := range a.actions {
		if a.done[i] {
			continue
		}
		a.done[i] = act.Act(w, e, dt)
		all = all && a.done[i]
	}
	return all
}

// AddAction starts a on e.
func AddAction(w *World, e Entity, a Action) {
	if a == nil || !w.Valid(e) {
		return
	}
	entry := w.Entry(e)
	if !entry.HasComponent(ActionComp) {
		entry.AddComponent(ActionComp)
	}
	ad := ActionComp.Get(entry)
	ad.Actions = append(ad.Actions, a)
}

// ActionSystem advances running actions and drops finished ones.
type ActionSystem struct {
	index *ComponentIndex
}

func (s *ActionSystem) bindEngine(l *SceneLoader) {
	s.index = l.index
}

// Update implements System.
func (s *ActionSystem) Update(w *World, dt float64) {
	for _, e := range entitiesWith(w, ActionComp) {
		if !w.Alive(e) {
			continue
		}
		ad := ActionComp.Get(w.Entry(e))
		running := ad.Actions
		ad.Actions = nil
		kept := running[:0]
		for _, a := range running {
			if !a.Act(w, e, dt) {
				kept = append(kept, a)
			}
		}
		// Actions added while stepping were appended to the emptied list.
		ad = ActionComp.Get(w.Entry(e))
		ad.Actions = append(kept, ad.Actions...)
	}
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inquad":       ease.InQuad,
	"outquad":      ease.OutQuad,
	"inoutquad":    ease.InOutQuad,
	"incubic":      ease.InCubic,
	"outcubic":     ease.OutCubic,
	"inoutcubic":   ease.InOutCubic,
	"insine":       ease.InSine,
	"outsine":      ease.OutSine,
	"inoutsine":    ease.InOutSine,
	"inexpo":       ease.InExpo,
	"outexpo":      ease.OutExpo,
	"inoutexpo":    ease.InOutExpo,
	"inback":       ease.InBack,
	"outback":      ease.OutBack,
	"inoutback":    ease.InOutBack,
	"inbounce":     ease.InBounce,
	"outbounce":    ease.OutBounce,
	"inoutbounce":  ease.InOutBounce,
	"inelastic":    ease.InElastic,
	"outelastic":   ease.OutElastic,
	"inoutelastic": ease.InOutElastic,
}

// EaseByName returns the easing function with the given name. Names are
// case-insensitive and may use '_' or '-' separators ("out_cubic"). Unknown
// names map to linear.
func EaseByName(name string) ease.TweenFunc {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(name))
	if fn, ok := easings[key]; ok {
		return fn
	}
	return ease.Linear
}

// ActionFromVO builds an action from its description.
func ActionFromVO(vo *resources.ActionVO) (Action, error) {
	if vo == nil {
		return nil, fmt.Errorf("h2d: nil action")
	}
	fn := EaseByName(vo.Ease)
	switch strings.ToLower(vo.Type) {
	case "moveto":
		return MoveTo(vo.X, vo.Y, vo.Duration, fn), nil
	case "moveby":
		return MoveBy(vo.X, vo.Y, vo.Duration, fn), nil
	case "scaleto":
		return ScaleTo(vo.X, vo.Y, vo.Duration, fn), nil
	case "rotateto":
		return RotateTo(vo.Value, vo.Duration, fn), nil
	case "rotateby":
		return RotateBy(vo.Value, vo.Duration, fn), nil
	case "alphato", "fadeto":
		return AlphaTo(vo.Value, vo.Duration, fn), nil
	case "delay":
		return Delay(vo.Duration), nil
	case "sequence", "parallel":
		children := make([]Action, 0, len(vo.Actions))
		for _, c := range vo.Actions {
			a, err := ActionFromVO(c)
			if err != nil {
				return nil, err
			}
			children = append(children, a)
		}
		if strings.EqualFold(vo.Type, "parallel") {
			return Parallel(children...), nil
		}
		return Sequence(children...), nil
	}
	return nil, fmt.Errorf("h2d: unknown action type %q", vo.Type)
}

// ActionFactory builds actions from the project's action library.
type ActionFactory struct {
	library map[string]*resources.ActionVO
}

// NewActionFactory creates a factory over library. A nil library is empty.
func NewActionFactory(library map[string]*resources.ActionVO) *ActionFactory {
	return &ActionFactory{library: library}
}

// LoadFromLibrary builds a fresh instance of the named library action.
func (f *ActionFactory) LoadFromLibrary(name string) (Action, error) {
	vo, ok := f.library[name]
	if !ok {
		return nil, fmt.Errorf("%w: action %q", ErrLibraryItemNotFound, name)
	}
	return ActionFromVO(vo)
}
