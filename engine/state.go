package engine

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/markpasc/luabject/errors"
)

// Library names a guest library and its opener, for opening beyond the safe
// default set.
type Library struct {
	Name string
	Open lua.LGFunction
}

// Options configures a State.
type Options struct {
	// Libraries lists additional guest libraries to open beyond the safe
	// default set (base, table, string, math).
	Libraries []Library
}

// unsafeBaseGlobals are stripped after opening the base library: they load or
// evaluate code from outside the shared environment, or reach host state.
var unsafeBaseGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require", "collectgarbage",
}

// State owns the root LState: the shared global environment visible to every
// session spawned from it. The global table is a shared, unsynchronized
// resource between sibling sessions; mutations by one (including via host
// bindings) are visible to the others on their next step.
type State struct {
	root *lua.LState
}

// NewState allocates a fresh sandboxed global environment. It never fails.
func NewState(opts Options) *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	libs := []Library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
	libs = append(libs, opts.Libraries...)
	for _, lib := range libs {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.Open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.Name)); err != nil {
			Logger().Warn("open guest library",
				zap.String("library", lib.Name),
				zap.Error(err))
		}
	}

	for _, name := range unsafeBaseGlobals {
		L.SetGlobal(name, lua.LNil)
	}

	return &State{root: L}
}

// Root exposes the root LState for binding construction. Function values
// created on it are shared through the global environment.
func (s *State) Root() *lua.LState {
	return s.root
}

// SetGlobal installs or overwrites a global. Effective immediately for all
// sessions, including ones already mid-execution.
func (s *State) SetGlobal(name string, v lua.LValue) {
	s.root.SetGlobal(name, v)
}

// GetGlobal reads a global; LNil if unbound.
func (s *State) GetGlobal(name string) lua.LValue {
	return s.root.GetGlobal(name)
}

// Compile compiles source as a top-level chunk without running it. A syntax
// failure leaves the State untouched; a later Compile of valid source on the
// same State succeeds.
func (s *State) Compile(source string) (*lua.LFunction, error) {
	fn, err := s.root.LoadString(source)
	if err != nil {
		return nil, errors.Syntax(err)
	}
	return fn, nil
}

// NewThreadState creates a child LState sharing the root's global
// environment but with its own call stack.
func (s *State) NewThreadState() *lua.LState {
	co, _ := s.root.NewThread()
	return co
}

// Callables returns the sorted names of globals currently bound to guest
// functions.
func (s *State) Callables() []string {
	gt, ok := s.root.Get(lua.GlobalsIndex).(*lua.LTable)
	if !ok {
		return nil
	}
	var names []string
	gt.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok {
			return
		}
		if _, ok := v.(*lua.LFunction); ok {
			names = append(names, string(name))
		}
	})
	sort.Strings(names)
	return names
}

// Close releases the root LState. All sessions must be canceled and drained
// before calling this.
func (s *State) Close() {
	s.root.Close()
}
