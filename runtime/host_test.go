package runtime

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/markpasc/luabject/errors"
)

// runScript loads and drains source on rt, returning the completed results.
func runScript(t *testing.T, rt *Runtime, source string) []any {
	t.Helper()
	th, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := th.LoadScript(source); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	if st := drain(t, th, 10000); st != StatusCompleted {
		t.Fatalf("status = %v, want Completed: %v", st, th.Err())
	}
	return th.Results()
}

func TestRegisterGlobal_ArgsAndResult(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("join", func(a, b string) string { return a + "/" + b }); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	results := runScript(t, rt, "return join('left', 'right')")
	if len(results) != 1 || results[0] != "left/right" {
		t.Errorf("Results = %v, want [left/right]", results)
	}
}

func TestRegisterGlobal_SideEffectOnly(t *testing.T) {
	rt := New()
	defer rt.Close()

	var got []string
	if err := rt.RegisterGlobal("emit", func(msg string) { got = append(got, msg) }); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	runScript(t, rt, "emit('one') emit('two')")
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("emitted = %v, want [one two]", got)
	}
}

func TestRegisterGlobal_Variadic(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("sum", func(ns ...float64) float64 {
		var total float64
		for _, n := range ns {
			total += n
		}
		return total
	}); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	results := runScript(t, rt, "return sum(1, 2, 3, 4)")
	if len(results) != 1 || results[0] != float64(10) {
		t.Errorf("Results = %v, want [10]", results)
	}
	results = runScript(t, rt, "return sum()")
	if len(results) != 1 || results[0] != float64(0) {
		t.Errorf("Results = %v, want [0]", results)
	}
}

func TestRegisterGlobal_AnyParam(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("describe", func(v any) string { return fmt.Sprintf("%T", v) }); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	tests := []struct {
		call string
		want string
	}{
		{"return describe(1)", "float64"},
		{"return describe('s')", "string"},
		{"return describe(true)", "bool"},
		{"return describe(nil)", "<nil>"},
	}
	for _, tt := range tests {
		results := runScript(t, rt, tt.call)
		if len(results) != 1 || results[0] != tt.want {
			t.Errorf("%s = %v, want [%s]", tt.call, results, tt.want)
		}
	}
}

func TestRegisterGlobal_ErrorBecomesGuestFault(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("fails", func() error {
		return stderrors.New("backend unavailable")
	}); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	th, _ := rt.Spawn()
	if err := th.LoadScript("fails()"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	st, perr := th.Pump(10000)
	if st != StatusFailed {
		t.Fatalf("status = %v, want Failed", st)
	}
	if !stderrors.Is(perr, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindRuntime}) {
		t.Errorf("err = %v, want run/runtime", perr)
	}

	// Other threads on the same Runtime are unaffected.
	results := runScript(t, rt, "return 'still fine'")
	if len(results) != 1 || results[0] != "still fine" {
		t.Errorf("Results = %v, want [still fine]", results)
	}
}

func TestRegisterGlobal_ValueAndError(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("halve", func(n int) (int, error) {
		if n%2 != 0 {
			return 0, fmt.Errorf("%d is odd", n)
		}
		return n / 2, nil
	}); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	results := runScript(t, rt, "return halve(10)")
	if len(results) != 1 || results[0] != float64(5) {
		t.Errorf("Results = %v, want [5]", results)
	}

	th, _ := rt.Spawn()
	if err := th.LoadScript("return halve(7)"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	if st, _ := th.Pump(10000); st != StatusFailed {
		t.Errorf("status = %v, want Failed on odd input", st)
	}
}

func TestRegisterGlobal_ArgumentTypeMismatch(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("shout", func(s string) string { return s + "!" }); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}

	th, _ := rt.Spawn()
	if err := th.LoadScript("return shout(true)"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	st, perr := th.Pump(10000)
	if st != StatusFailed {
		t.Fatalf("status = %v, want Failed", st)
	}
	if !stderrors.Is(perr, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindRuntime}) {
		t.Errorf("err = %v, want run/runtime", perr)
	}
}

func TestRegisterGlobal_BadRegistrations(t *testing.T) {
	rt := New()
	defer rt.Close()

	tests := []struct {
		name string
		bind string
		fn   any
	}{
		{"not a function", "x", 42},
		{"unmappable param", "x", func(ch chan int) {}},
		{"unmappable result", "x", func() chan int { return nil }},
		{"error not last", "x", func() (error, int) { return nil, 0 }},
		{"too many results", "x", func() (int, int, error) { return 0, 0, nil }},
		{"empty name", "", func() {}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rt.RegisterGlobal(tt.bind, tt.fn)
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseHost, Kind: errors.KindInvalidInput}) {
				t.Errorf("RegisterGlobal = %v, want host/invalid_input", err)
			}
		})
	}
}

func TestRegisterGlobal_Overwrite(t *testing.T) {
	rt := New()
	defer rt.Close()

	if err := rt.RegisterGlobal("version", func() string { return "v1" }); err != nil {
		t.Fatalf("RegisterGlobal failed: %v", err)
	}
	if err := rt.RegisterGlobal("version", func() string { return "v2" }); err != nil {
		t.Fatalf("re-RegisterGlobal failed: %v", err)
	}
	results := runScript(t, rt, "return version()")
	if len(results) != 1 || results[0] != "v2" {
		t.Errorf("Results = %v, want [v2]", results)
	}
}

type worldHost struct {
	log []string
}

func (*worldHost) Prefix() string { return "world" }

func (h *worldHost) EmitMessage(msg string) { h.log = append(h.log, msg) }

func (*worldHost) PlayerCount() int { return 3 }

func TestRegisterGlobals(t *testing.T) {
	rt := New()
	defer rt.Close()

	h := &worldHost{}
	if err := rt.RegisterGlobals(h); err != nil {
		t.Fatalf("RegisterGlobals failed: %v", err)
	}

	results := runScript(t, rt, "world_emit_message('hi') return world_player_count()")
	if len(results) != 1 || results[0] != float64(3) {
		t.Errorf("Results = %v, want [3]", results)
	}
	if len(h.log) != 1 || h.log[0] != "hi" {
		t.Errorf("log = %v, want [hi]", h.log)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"EmitMessage", "emit_message"},
		{"PlayerCount", "player_count"},
		{"Get", "get"},
		{"ReadHTTPBody", "read_http_body"},
		{"HTTPGet", "http_get"},
		{"ID", "id"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := toSnakeCase(tt.in); got != tt.want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
