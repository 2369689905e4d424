// Package runtime provides the high-level API for hosting guest Lua behavior.
//
// # Quick Start
//
//	rt := runtime.New()
//	defer rt.Close()
//
//	// Expose a host function to guest code
//	rt.RegisterGlobal("emit", func(text string) {
//	    fmt.Println(text)
//	})
//
//	// Run a script body in bounded steps
//	th, _ := rt.Spawn()
//	if err := th.LoadScript(`emit("hello") function greet(n) return "hi " .. n end`); err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    status, err := th.Pump()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if status.Terminal() {
//	        break
//	    }
//	    // let other host tasks run between pumps
//	}
//
//	// Call a script-defined function
//	th2, _ := rt.Spawn()
//	_ = th2.LoadFunction("greet", "world")
//
// # Lifecycle
//
// A Runtime is created once per world or session and owns the shared guest
// globals. Threads are spawned per unit of work, pumped to a terminal status,
// and then dropped; a thread is never reused for a second load. No thread may
// outlive its Runtime: Close cancels whatever is still live and waits for it
// to unwind.
//
// # Statuses
//
//	Ready      created, not yet pumped
//	Suspended  mid-execution, more work remains; pump again
//	Completed  ran to its natural end
//	Failed     terminated by an error; Err() has the cause
//
// Completed and Failed are sinks: further pumps return the recorded outcome
// without re-executing anything.
//
// # Shared globals
//
// All threads of one Runtime share one global table. It is a shared,
// unsynchronized resource: a global written by one thread (directly or via a
// host binding) is visible to its siblings on their next pump. The engine
// provides no isolation between sibling threads beyond separate call stacks.
//
// # Concurrency
//
// A single host task owns a given thread's pump loop at a time; pumping one
// thread from two tasks concurrently is a caller error. Distinct threads may
// be pumped from different goroutines: the Runtime serializes guest quanta
// internally, so at most one thread executes guest instructions at any
// moment. Concurrency between threads is interleaving, not parallelism.
package runtime
