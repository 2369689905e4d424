package runtime

import (
	"sync"

	luabject "github.com/markpasc/luabject"
	"github.com/markpasc/luabject/engine"
	"github.com/markpasc/luabject/errors"
)

// Option configures a Runtime at creation.
type Option func(*Runtime)

// WithBudget sets the default per-pump instruction budget used when Pump is
// called without an explicit one.
func WithBudget(n int64) Option {
	return func(r *Runtime) {
		if n > 0 {
			r.budget = n
		}
	}
}

// WithLibraries opens additional guest libraries beyond the safe default set.
func WithLibraries(libs ...engine.Library) Option {
	return func(r *Runtime) {
		r.libs = append(r.libs, libs...)
	}
}

// Runtime owns the shared guest environment: the global table and the host
// bindings installed into it. Create one per world or session; spawn a
// Thread per unit of work.
type Runtime struct {
	state   *engine.State
	threads *threadTable
	libs    []engine.Library
	budget  int64

	// guest serializes all entry into the shared guest environment: quanta,
	// compilation, and global reads and writes. At most one thread executes
	// guest instructions at a time; concurrency between threads comes from
	// interleaving bounded quanta, never from parallel execution.
	guest sync.Mutex

	mu     sync.Mutex
	closed bool
}

// New allocates a fresh Runtime with a sandboxed global environment. It
// never fails.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		budget:  luabject.DefaultBudget,
		threads: newThreadTable(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.state = engine.NewState(engine.Options{Libraries: r.libs})
	return r
}

// SetGlobalValue installs or overwrites a plain guest global with a
// guest-mapped host value.
func (r *Runtime) SetGlobalValue(name string, v any) error {
	lv, err := engine.ToLua(v)
	if err != nil {
		return err
	}
	r.guest.Lock()
	defer r.guest.Unlock()
	r.state.SetGlobal(name, lv)
	return nil
}

// Callables returns the sorted names of globals currently bound to guest
// functions, host bindings included.
func (r *Runtime) Callables() []string {
	r.guest.Lock()
	defer r.guest.Unlock()
	return r.state.Callables()
}

// Live returns the number of threads not yet terminal or abandoned.
func (r *Runtime) Live() int {
	return r.threads.Len()
}

// Spawn creates a Ready thread bound to this Runtime. It fails only after
// Close.
func (r *Runtime) Spawn() (*Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.NotInitialized(errors.PhaseLoad, "runtime")
	}
	t := &Thread{
		rt:      r,
		session: engine.NewSession(r.state),
		status:  StatusReady,
		budget:  r.budget,
	}
	t.handle = r.threads.Insert(t)
	return t, nil
}

// Close cancels all live threads, waits for their workers to unwind, and
// releases the guest environment. No thread may be pumped afterward.
// Idempotent.
func (r *Runtime) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.threads.Each(func(t *Thread) { t.session.Cancel() })
	r.threads.Each(func(t *Thread) { t.session.Wait() })
	r.threads.Close()
	r.state.Close()
	return nil
}
