// Package engine provides the low-level gopher-lua integration.
//
// This package wraps github.com/yuin/gopher-lua to provide bounded, resumable
// guest execution: a shared sandboxed global environment, per-execution child
// states, and an instruction-budgeted stepping protocol.
//
// # Architecture
//
// The engine package provides three main types:
//
//	State   - Owns the root LState: sandboxed globals, chunk compilation,
//	          child state creation
//	Meter   - The instruction budget gate; the sole suspension point
//	Session - One suspendable guest execution: a child state, a meter, and
//	          a worker goroutine driven by Step calls
//
// # Stepping Protocol
//
//  1. NewSession(state) creates a child LState sharing the root's globals
//  2. Session.Execute(fn, args...) arms the session with a compiled chunk
//     or a guest function value
//  3. Session.Step(budget) advances execution by at most budget guest
//     instructions and reports StepContinue or StepDone
//  4. Session.Cancel() trips the meter so an in-flight worker unwinds
//
// # How Budgeted Suspension Works
//
// gopher-lua consults the Done channel of an installed context.Context once
// per VM instruction. Meter implements context.Context and turns that
// consultation into instruction accounting: while quantum remains, Done
// returns a nil channel and the VM proceeds; when the quantum is exhausted,
// the Done call itself parks the worker goroutine until the next Step grants
// another quantum. The guest stack is preserved in place across the park, so
// execution resumes at the exact instruction where it stopped. Cancellation
// returns a closed channel, which makes the VM raise and unwind.
//
// State machine:
//
//	running --[quantum exhausted]--> parked --[Grant]--> running
//	running --[chunk returns/faults]--> done
//	parked  --[Cancel]--> done (via guest-level raise)
//
// # Sandbox
//
// The root state opens only the base, table, string and math libraries and
// strips the globals that reach outside the guest environment (dofile,
// loadfile, load, loadstring, require, collectgarbage). Additional libraries
// can be opened through Options.Libraries.
package engine
