package coop

import (
	"context"
	goruntime "runtime"

	"github.com/markpasc/luabject/runtime"
)

// Yielder is the single "let other tasks run" checkpoint invoked between two
// pumps of the same thread. It reports a non-nil error to stop driving the
// thread, typically on context cancellation.
type Yielder func(context.Context) error

// Gosched is the default checkpoint: it hands the processor to the Go
// scheduler and honors context cancellation.
func Gosched(ctx context.Context) error {
	goruntime.Gosched()
	return ctx.Err()
}

// Runner drives threads to completion with a fixed budget and checkpoint.
// The zero value uses the thread's default budget and the Gosched
// checkpoint.
type Runner struct {
	// Budget overrides the per-pump instruction budget when positive.
	Budget int64
	// Yield is the checkpoint invoked after every pump that suspends.
	Yield Yielder
}

// Run pumps t until it reaches a terminal status, yielding between pumps. It
// returns nil on Completed and the thread's recorded error on Failed. If the
// checkpoint reports an error (cancellation), the thread is abandoned and
// that error returned.
func (r Runner) Run(ctx context.Context, t *runtime.Thread) error {
	yield := r.Yield
	if yield == nil {
		yield = Gosched
	}

	for {
		var (
			status runtime.Status
			err    error
		)
		if r.Budget > 0 {
			status, err = t.Pump(r.Budget)
		} else {
			status, err = t.Pump()
		}
		if err != nil {
			return err
		}
		if status.Terminal() {
			return t.Err()
		}

		if yerr := yield(ctx); yerr != nil {
			t.Abandon()
			return yerr
		}
	}
}

// Run drives t to completion with default budget and checkpoint.
func Run(ctx context.Context, t *runtime.Thread) error {
	return Runner{}.Run(ctx, t)
}

// RunScript loads source on a fresh thread of rt and drives its body to
// completion.
func RunScript(ctx context.Context, rt *runtime.Runtime, source string) error {
	t, err := rt.Spawn()
	if err != nil {
		return err
	}
	if err := t.LoadScript(source); err != nil {
		return err
	}
	return Run(ctx, t)
}

// CallFunction invokes the guest function bound to name on a fresh thread of
// rt, drives it to completion, and returns its guest-mapped results.
func CallFunction(ctx context.Context, rt *runtime.Runtime, name string, args ...any) ([]any, error) {
	t, err := rt.Spawn()
	if err != nil {
		return nil, err
	}
	if err := t.LoadFunction(name, args...); err != nil {
		return nil, err
	}
	if err := Run(ctx, t); err != nil {
		return nil, err
	}
	return t.Results(), nil
}
