// Package errors provides structured error types for the luabject engine.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the offending global name, Go/Lua type
// names for value-mapping failures, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindName).
//		Global("foo").
//		Detail("global is not a function").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Syntax(cause)
//	err := errors.Name("foo", "global %q is not bound", "foo")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
