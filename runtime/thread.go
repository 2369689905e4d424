package runtime

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/markpasc/luabject/engine"
	"github.com/markpasc/luabject/errors"
)

// Thread is one suspendable line of guest execution: its own call stack over
// its Runtime's shared globals. Spawn, load exactly once, pump to a terminal
// status, drop. A single host task owns the pump loop at a time.
type Thread struct {
	rt      *Runtime
	session *engine.Session
	handle  Handle
	status  Status
	err     error
	results []lua.LValue
	budget  int64
	loaded  bool
}

// LoadScript compiles source as a top-level chunk and prepares the thread to
// execute its body from the start. Compilation failure yields a syntax error
// immediately and leaves the thread unusable, but does not corrupt the
// Runtime: a fresh thread can still load a different script. Nothing runs
// until the first Pump.
func (t *Thread) LoadScript(source string) error {
	if t.loaded {
		return errors.InvalidInput(errors.PhaseLoad, "thread already loaded; spawn a fresh thread")
	}
	t.rt.guest.Lock()
	fn, err := t.rt.state.Compile(source)
	t.rt.guest.Unlock()
	if err != nil {
		return err
	}
	if err := t.session.Execute(fn); err != nil {
		return err
	}
	t.loaded = true
	return nil
}

// LoadFunction looks up name in the shared globals and prepares the thread
// to invoke it with the given guest-mapped arguments. The lookup is eager: an
// unbound name or a non-function value fails here, before any pump, with a
// name error.
func (t *Thread) LoadFunction(name string, args ...any) error {
	if t.loaded {
		return errors.InvalidInput(errors.PhaseLoad, "thread already loaded; spawn a fresh thread")
	}
	t.rt.guest.Lock()
	gv := t.rt.state.GetGlobal(name)
	t.rt.guest.Unlock()
	if gv == lua.LNil {
		return errors.Name(name, "global %q is not bound", name)
	}
	fn, ok := gv.(*lua.LFunction)
	if !ok {
		return errors.Name(name, "global %q is a %s, not a function", name, gv.Type().String())
	}
	largs, err := engine.ToLuaAll(args)
	if err != nil {
		return err
	}
	if err := t.session.Execute(fn, largs...); err != nil {
		return err
	}
	t.loaded = true
	return nil
}

// Pump advances the thread by one bounded quantum of guest instructions and
// reports its status. With no argument the Runtime's default budget applies.
//
//   - StatusSuspended: budget exhausted, stack and locals preserved exactly;
//     pump again to continue from that point.
//   - StatusCompleted: ran off the end; Results holds the return values.
//   - StatusFailed: guest fault or wrapped host binding failure; the error is
//     returned and recorded.
//
// Pumping a terminal thread is a no-op that returns the recorded outcome.
func (t *Thread) Pump(budget ...int64) (Status, error) {
	if t.status.Terminal() {
		return t.status, t.err
	}
	if !t.loaded {
		return t.status, errors.InvalidInput(errors.PhaseRun, "nothing loaded; call LoadScript or LoadFunction first")
	}

	b := t.budget
	if len(budget) > 0 && budget[0] > 0 {
		b = budget[0]
	}

	t.rt.guest.Lock()
	res, err := t.session.Step(b)
	t.rt.guest.Unlock()
	if err != nil {
		return t.status, err
	}

	switch {
	case res.Status == engine.StepContinue:
		t.status = StatusSuspended
	case res.Error != nil:
		t.status = StatusFailed
		t.err = res.Error
		t.rt.threads.Remove(t.handle)
	default:
		t.status = StatusCompleted
		t.results = res.Results
		t.rt.threads.Remove(t.handle)
	}
	return t.status, t.err
}

// Status is a pure read of the current status.
func (t *Thread) Status() Status {
	return t.status
}

// Err returns the recorded failure, nil otherwise.
func (t *Thread) Err() error {
	return t.err
}

// Results returns the guest-mapped return values after Completed; nil
// otherwise.
func (t *Thread) Results() []any {
	if t.status != StatusCompleted {
		return nil
	}
	return engine.FromLuaAll(t.results)
}

// Abandon cancels the thread at any suspended point and waits for its worker
// to unwind. No special shutdown protocol is needed; the thread is simply
// forgotten. Idempotent, and a no-op on terminal threads.
func (t *Thread) Abandon() {
	if t.status.Terminal() {
		return
	}
	t.session.Cancel()
	t.session.Wait()
	t.status = StatusFailed
	t.err = errors.Canceled("thread abandoned")
	t.rt.threads.Remove(t.handle)
}
