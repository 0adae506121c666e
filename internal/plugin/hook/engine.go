// Package hook runs user-provided Lua render hooks. A hook customizes
// a decoration's surface element after the renderer has positioned it:
// the script registers named functions, and the engine invokes them
// with an element handle on every render notification.
//
// The Lua state is not goroutine-safe; the engine must only be used
// from the UI goroutine, which is also where render signals fire.
package hook

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/Linh35/kumo-shell/internal/event/signal"
	"github.com/Linh35/kumo-shell/internal/renderer/core"
	"github.com/Linh35/kumo-shell/internal/renderer/decoration"
	"github.com/Linh35/kumo-shell/internal/renderer/surface"
)

// ErrUnknownHook is returned when invoking a hook no script registered.
var ErrUnknownHook = errors.New("unknown render hook")

// Engine loads hook scripts and dispatches render notifications to them.
type Engine struct {
	L       *lua.LState
	hooks   map[string]*lua.LFunction
	onError func(error)
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithErrorHandler sets the handler for hook execution failures.
// A failing hook never propagates into the refresh pass.
func WithErrorHandler(fn func(error)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.onError = fn
		}
	}
}

// NewEngine creates a sandboxed engine: only the base, table, string
// and math libraries are opened, and file/code loading primitives are
// removed.
func NewEngine(opts ...Option) (*Engine, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	libs := []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("opening lua lib %s: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	restrictRequire(L)

	e := &Engine{
		L:       L,
		hooks:   make(map[string]*lua.LFunction),
		onError: func(error) {},
	}
	for _, opt := range opts {
		opt(e)
	}

	// kumo.hook(name, fn) registers a render hook.
	kumo := L.NewTable()
	L.SetField(kumo, "hook", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		fn := L.CheckFunction(2)
		e.hooks[name] = fn
		return 0
	}))
	L.SetGlobal("kumo", kumo)

	return e, nil
}

// restrictRequire closes the remaining file-loading path: package.path
// and package.cpath are cleared so nothing resolves from disk, and
// require is replaced with a version that only serves the already
// opened built-in libraries.
func restrictRequire(L *lua.LState) {
	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))
	}

	safe := map[string]bool{
		"_G": true, "package": true,
		"string": true, "table": true, "math": true,
	}
	original := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safe[name] {
			L.RaiseError("module %q is not available to hook scripts", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

// LoadFile executes a hook script from disk.
func (e *Engine) LoadFile(path string) error {
	if e.closed {
		return errors.New("hook engine is closed")
	}
	if err := e.L.DoFile(path); err != nil {
		return fmt.Errorf("loading hook script %s: %w", path, err)
	}
	return nil
}

// LoadString executes hook script source directly.
func (e *Engine) LoadString(src string) error {
	if e.closed {
		return errors.New("hook engine is closed")
	}
	if err := e.L.DoString(src); err != nil {
		return fmt.Errorf("loading hook script: %w", err)
	}
	return nil
}

// Has returns true if a hook with the given name is registered.
func (e *Engine) Has(name string) bool {
	_, ok := e.hooks[name]
	return ok
}

// Run invokes the named hook with el. Script errors are returned, not
// raised.
func (e *Engine) Run(name string, el *surface.Element) error {
	fn, ok := e.hooks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHook, name)
	}

	err := e.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, e.elementHandle(el))
	if err != nil {
		return fmt.Errorf("render hook %s: %w", name, err)
	}
	return nil
}

// Bind subscribes the named hook to d's render notifications. Hook
// failures go to the engine's error handler.
func (e *Engine) Bind(name string, d *decoration.Decoration) (*signal.Subscription, error) {
	if !e.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHook, name)
	}
	sub := d.OnRender(func(el *surface.Element) {
		if err := e.Run(name, el); err != nil {
			e.onError(err)
		}
	})
	return sub, nil
}

// Close releases the Lua state. Idempotent.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}

// elementHandle wraps el for Lua: a table of dot-call accessors.
func (e *Engine) elementHandle(el *surface.Element) *lua.LTable {
	L := e.L
	t := L.NewTable()

	L.SetField(t, "set_text", L.NewFunction(func(L *lua.LState) int {
		el.SetText(L.CheckString(1))
		return 0
	}))
	L.SetField(t, "set_color", L.NewFunction(func(L *lua.LState) int {
		c, err := core.ColorFromHex(L.CheckString(1))
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		st := el.Style()
		st.Foreground = c
		el.SetStyle(st)
		return 0
	}))
	L.SetField(t, "set_background", L.NewFunction(func(L *lua.LState) int {
		c, err := core.ColorFromHex(L.CheckString(1))
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		st := el.Style()
		st.Background = c
		el.SetStyle(st)
		return 0
	}))
	L.SetField(t, "text", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(el.Text()))
		return 1
	}))
	L.SetField(t, "visible", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(el.Visible()))
		return 1
	}))
	L.SetField(t, "top", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(el.Top()))
		return 1
	}))

	return t
}
