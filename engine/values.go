package engine

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/markpasc/luabject/errors"
)

// The value mapping between host and guest, applied consistently in both
// directions (host binding arguments and returns, function call arguments):
//
//	Go              Lua
//	────────────────────────
//	nil             nil
//	bool            boolean
//	int, int64      number
//	float64         number
//	string          string
//	lua.LValue      passthrough

// ToLua maps a host value into the guest. Values outside the mapping table
// yield a type_mismatch error.
func ToLua(v any) (lua.LValue, error) {
	switch t := v.(type) {
	case nil:
		return lua.LNil, nil
	case bool:
		return lua.LBool(t), nil
	case int:
		return lua.LNumber(t), nil
	case int64:
		return lua.LNumber(t), nil
	case float64:
		return lua.LNumber(t), nil
	case string:
		return lua.LString(t), nil
	case lua.LValue:
		return t, nil
	default:
		return nil, errors.TypeMismatch(errors.PhaseHost,
			fmt.Sprintf("%T", v), "", "value has no guest mapping")
	}
}

// ToLuaAll maps a slice of host values; it fails on the first unmappable one.
func ToLuaAll(vs []any) ([]lua.LValue, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]lua.LValue, len(vs))
	for i, v := range vs {
		lv, err := ToLua(v)
		if err != nil {
			return nil, err
		}
		out[i] = lv
	}
	return out, nil
}

// FromLua maps a guest value back to the host. Values outside the mapping
// table (tables, functions, userdata) are returned as their lua.LValue.
func FromLua(v lua.LValue) any {
	switch t := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(t)
	case lua.LNumber:
		return float64(t)
	case lua.LString:
		return string(t)
	default:
		return v
	}
}

// FromLuaAll maps a slice of guest values to the host.
func FromLuaAll(vs []lua.LValue) []any {
	if len(vs) == 0 {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = FromLua(v)
	}
	return out
}
