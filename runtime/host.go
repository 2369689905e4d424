package runtime

import (
	"reflect"
	"strings"
	"unicode"

	lua "github.com/yuin/gopher-lua"

	"github.com/markpasc/luabject/engine"
	"github.com/markpasc/luabject/errors"
)

// GlobalHost is the interface for struct-based binding registration. All
// exported methods except Prefix are installed as guest globals, with method
// names converted from PascalCase to snake_case (EmitMessage -> emit_message)
// and the prefix prepended when non-empty (prefix "world" -> world_emit_message).
type GlobalHost interface {
	Prefix() string
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// RegisterGlobal installs or overwrites a host binding under name in the
// shared globals, effective immediately for all threads, including ones
// already mid-execution.
//
// fn may be any Go function whose parameters and results are guest-mappable
// (bool, int, int64, float64, string, any), with at most one value result
// plus an optional trailing error. Variadic functions are accepted when the
// variadic element is mappable. A binding that returns a non-nil error fails
// the calling thread with a runtime fault; the error never crosses the
// boundary as a native Go failure.
func (r *Runtime) RegisterGlobal(name string, fn any) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "binding name cannot be empty")
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return errors.Registration(name, errors.New(errors.PhaseHost, errors.KindTypeMismatch).
			GoType(reflect.TypeOf(fn).String()).
			Detail("binding must be a function").
			Build())
	}
	if err := checkBindingSignature(rv.Type()); err != nil {
		return errors.Registration(name, err)
	}

	r.guest.Lock()
	defer r.guest.Unlock()
	r.state.SetGlobal(name, r.state.Root().NewFunction(bindingFunc(name, rv)))
	return nil
}

// RegisterGlobals installs every exported method of h as a host binding.
func (r *Runtime) RegisterGlobals(h GlobalHost) error {
	prefix := h.Prefix()

	rv := reflect.ValueOf(h)
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Prefix" {
			continue
		}
		name := toSnakeCase(method.Name)
		if prefix != "" {
			name = prefix + "_" + name
		}
		if err := r.RegisterGlobal(name, rv.Method(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// checkBindingSignature validates that every parameter and result of a
// binding has a guest mapping.
func checkBindingSignature(ft reflect.Type) error {
	for i := 0; i < ft.NumIn(); i++ {
		pt := ft.In(i)
		if ft.IsVariadic() && i == ft.NumIn()-1 {
			pt = pt.Elem()
		}
		if !mappableParam(pt) {
			return errors.TypeMismatch(errors.PhaseHost, pt.String(), "",
				"parameter has no guest mapping")
		}
	}
	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) != errType && !mappableParam(ft.Out(0)) {
			return errors.TypeMismatch(errors.PhaseHost, ft.Out(0).String(), "",
				"result has no guest mapping")
		}
	case 2:
		if !mappableParam(ft.Out(0)) {
			return errors.TypeMismatch(errors.PhaseHost, ft.Out(0).String(), "",
				"result has no guest mapping")
		}
		if ft.Out(1) != errType {
			return errors.InvalidInput(errors.PhaseHost, "second result must be error")
		}
	default:
		return errors.InvalidInput(errors.PhaseHost, "binding may return at most one value plus an error")
	}
	return nil
}

func mappableParam(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int64, reflect.Float64, reflect.String:
		return true
	case reflect.Interface:
		return t.NumMethod() == 0
	default:
		return false
	}
}

// bindingFunc adapts fn into a guest function: arguments are taken from the
// calling thread's stack per the value mapping, the single value result (if
// any) is pushed back, and a Go error is raised into the guest so it surfaces
// as a runtime fault on the calling thread only.
func bindingFunc(name string, rv reflect.Value) lua.LGFunction {
	ft := rv.Type()
	return func(co *lua.LState) int {
		nfixed := ft.NumIn()
		if ft.IsVariadic() {
			nfixed--
		}

		var args []reflect.Value
		for i := 0; i < nfixed; i++ {
			av, err := guestArg(co.Get(i+1), ft.In(i))
			if err != nil {
				co.RaiseError("%s: argument %d: %s", name, i+1, err.Error())
				return 0
			}
			args = append(args, av)
		}
		if ft.IsVariadic() {
			elem := ft.In(ft.NumIn() - 1).Elem()
			for i := nfixed + 1; i <= co.GetTop(); i++ {
				av, err := guestArg(co.Get(i), elem)
				if err != nil {
					co.RaiseError("%s: argument %d: %s", name, i, err.Error())
					return 0
				}
				args = append(args, av)
			}
		}

		outs := rv.Call(args)

		// Trailing error result fails the calling thread as a guest fault.
		if n := len(outs); n > 0 && ft.Out(n-1) == errType {
			if errv := outs[n-1]; !errv.IsNil() {
				co.RaiseError("%s: %v", name, errv.Interface())
				return 0
			}
			outs = outs[:n-1]
		}
		if len(outs) == 0 {
			return 0
		}

		lv, err := engine.ToLua(outs[0].Interface())
		if err != nil {
			co.RaiseError("%s: result: %s", name, err.Error())
			return 0
		}
		co.Push(lv)
		return 1
	}
}

// guestArg maps one guest stack value onto a binding parameter type. A nil
// guest value maps to the parameter's zero value, matching how the guest
// language pads missing arguments.
func guestArg(lv lua.LValue, t reflect.Type) (reflect.Value, error) {
	if lv == lua.LNil {
		return reflect.Zero(t), nil
	}
	switch t.Kind() {
	case reflect.Bool:
		if b, ok := lv.(lua.LBool); ok {
			return reflect.ValueOf(bool(b)), nil
		}
	case reflect.Int:
		if n, ok := lv.(lua.LNumber); ok {
			return reflect.ValueOf(int(n)), nil
		}
	case reflect.Int64:
		if n, ok := lv.(lua.LNumber); ok {
			return reflect.ValueOf(int64(n)), nil
		}
	case reflect.Float64:
		if n, ok := lv.(lua.LNumber); ok {
			return reflect.ValueOf(float64(n)), nil
		}
	case reflect.String:
		if s, ok := lv.(lua.LString); ok {
			return reflect.ValueOf(string(s)), nil
		}
	case reflect.Interface:
		// lv is not nil here, so FromLua yields a concrete value.
		return reflect.ValueOf(engine.FromLua(lv)), nil
	}
	return reflect.Value{}, errors.TypeMismatch(errors.PhaseHost,
		t.String(), lv.Type().String(), "no conversion")
}

// toSnakeCase converts PascalCase to snake_case.
// Handles acronyms: ReadHTTPBody -> read_http_body
func toSnakeCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('_')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1 // -1 because loop will increment
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
