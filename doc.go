// Package luabject provides an embedded scripting engine for hosting
// untrusted guest scripts with bounded, resumable execution.
//
// Guest scripts are Lua. A host application creates a runtime, exposes
// functions to it, loads script code, and then drives execution in bounded
// steps: each pump runs at most a fixed number of guest instructions before
// the script is suspended with its stack intact, ready to resume on the next
// pump. A script can therefore never monopolize the host, and many scripts
// can share one process under host-controlled scheduling.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	luabject/            Root package with shared defaults
//	├── runtime/         High-level API: Runtime, Thread, host bindings
//	├── engine/          Low-level guest VM integration and instruction metering
//	├── coop/            Cooperative facade that pumps threads to completion
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Run a script and call a function it defines:
//
//	rt := runtime.New()
//	defer rt.Close()
//
//	rt.RegisterGlobal("emit", func(text string) {
//	    fmt.Println(text)
//	})
//
//	if err := coop.RunScript(ctx, rt, source); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := coop.CallFunction(ctx, rt, "greet", "World")
//	fmt.Println(result[0]) // "Hello, World!"
//
// For explicit control over scheduling, spawn a Thread and pump it yourself;
// see package runtime.
//
// # Preemption Model
//
// Suspension is instruction-based, not time-based: a pump's budget counts
// guest VM instructions, so scheduling decisions are deterministic for a
// given script and budget. Guest code needs no cooperation and no yield
// calls; the engine suspends it mid-loop wherever the budget runs out.
//
// # Thread Safety
//
// A Runtime may be shared across goroutines; it serializes guest execution
// internally. An individual Thread's pump loop belongs to one goroutine at a
// time.
package luabject
