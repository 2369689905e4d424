package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // guest source compilation
	PhaseLoad    Phase = "load"    // preparing a thread to run
	PhaseRun     Phase = "run"     // guest execution
	PhaseHost    Phase = "host"    // host binding registration and dispatch
)

// Kind categorizes the error
type Kind string

const (
	KindSyntax         Kind = "syntax"          // guest source failed to compile
	KindName           Kind = "name"            // global unbound or not callable
	KindRuntime        Kind = "runtime"         // guest execution fault
	KindCanceled       Kind = "canceled"        // thread abandoned or runtime torn down
	KindTypeMismatch   Kind = "type_mismatch"   // value not mappable across the boundary
	KindInvalidInput   Kind = "invalid_input"   // caller misuse of the API
	KindNotFound       Kind = "not_found"       // named entity missing
	KindNotInitialized Kind = "not_initialized" // operation on a torn-down component
)

// Error is the structured error type used throughout the engine
type Error struct {
	Cause   error
	Phase   Phase
	Kind    Kind
	Global  string
	GoType  string
	LuaType string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Global != "" {
		b.WriteString(" at ")
		b.WriteString(e.Global)
	}

	if e.GoType != "" || e.LuaType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.LuaType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", Lua type ")
			b.WriteString(e.LuaType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("Lua type ")
			b.WriteString(e.LuaType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.LuaType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Global sets the offending global name
func (b *Builder) Global(name string) *Builder {
	b.err.Global = name
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// LuaType sets the Lua type name
func (b *Builder) LuaType(t string) *Builder {
	b.err.LuaType = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Syntax creates a compile-phase syntax error
func Syntax(cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindSyntax,
		Detail: "guest source failed to compile",
		Cause:  cause,
	}
}

// Name creates a load-phase name error for a bad function target
func Name(global, detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindName,
		Global: global,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Runtime creates a run-phase guest fault
func Runtime(cause error) *Error {
	return &Error{
		Phase:  PhaseRun,
		Kind:   KindRuntime,
		Detail: "guest execution fault",
		Cause:  cause,
	}
}

// Canceled creates a run-phase cancellation error
func Canceled(detail string) *Error {
	return &Error{
		Phase:  PhaseRun,
		Kind:   KindCanceled,
		Detail: detail,
	}
}

// TypeMismatch creates a value-mapping error
func TypeMismatch(phase Phase, goType, luaType, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		GoType:  goType,
		LuaType: luaType,
		Detail:  detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// NotInitialized creates a not-initialized error for a torn-down component
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Registration creates a host binding registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindInvalidInput,
		Global: name,
		Detail: "register host binding",
		Cause:  cause,
	}
}
