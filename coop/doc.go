// Package coop drives threads to completion cooperatively.
//
// The facade loops pump, check status, yield, pump again, surrendering
// control to the host's cooperative scheduler at a single checkpoint between
// any two pumps of the same thread. Arbitrary other host tasks, including
// pumps of other threads, may run at that checkpoint: a script needing many
// pumps never starves independent host work, and independent work needing no
// pumps may finish before a pump-heavy script that started first.
//
//	rt := runtime.New()
//	defer rt.Close()
//
//	if err := coop.RunScript(ctx, rt, source); err != nil {
//	    // syntax error, guest fault, or ctx cancellation
//	}
//
//	results, err := coop.CallFunction(ctx, rt, "on_hear", "hello")
//
// The yield checkpoint defaults to handing the processor to the Go
// scheduler; hosts with an explicit cooperative scheduler install their own
// checkpoint through Runner.Yield.
package coop
