package coop

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/markpasc/luabject/errors"
	"github.com/markpasc/luabject/runtime"
)

func newRuntime(t *testing.T, opts ...runtime.Option) *runtime.Runtime {
	t.Helper()
	rt := runtime.New(opts...)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestRunScript_Completes(t *testing.T) {
	rt := newRuntime(t)

	if err := RunScript(context.Background(), rt, "x = 1"); err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
}

func TestRunScript_LongScriptCompletes(t *testing.T) {
	rt := newRuntime(t, runtime.WithBudget(100))

	err := RunScript(context.Background(), rt, "local x = 0 for i = 1, 10000 do x = x + 1 end total = x")
	if err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}

	results, err := CallFunction(context.Background(), rt, "tostring", 1)
	if err != nil {
		t.Fatalf("CallFunction failed: %v", err)
	}
	if len(results) != 1 || results[0] != "1" {
		t.Errorf("Results = %v, want [1]", results)
	}
}

func TestRunScript_Fault(t *testing.T) {
	rt := newRuntime(t)

	err := RunScript(context.Background(), rt, "prant()")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindRuntime}) {
		t.Fatalf("RunScript = %v, want run/runtime", err)
	}
}

func TestRunScript_SyntaxError(t *testing.T) {
	rt := newRuntime(t)

	err := RunScript(context.Background(), rt, "1+1")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindSyntax}) {
		t.Fatalf("RunScript = %v, want compile/syntax", err)
	}
}

func TestCallFunction(t *testing.T) {
	rt := newRuntime(t)

	if err := RunScript(context.Background(), rt, "function double(n) return n * 2 end"); err != nil {
		t.Fatalf("RunScript failed: %v", err)
	}
	results, err := CallFunction(context.Background(), rt, "double", 21)
	if err != nil {
		t.Fatalf("CallFunction failed: %v", err)
	}
	if len(results) != 1 || results[0] != float64(42) {
		t.Errorf("Results = %v, want [42]", results)
	}

	_, err = CallFunction(context.Background(), rt, "missing")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindName}) {
		t.Errorf("CallFunction(missing) = %v, want load/name", err)
	}
}

func TestRunner_YieldInterleavesHostWork(t *testing.T) {
	rt := newRuntime(t)

	th, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := th.LoadScript("local x = 0 for i = 1, 5000 do x = x + 1 end"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}

	// The checkpoint runs a host-side task between quanta.
	hostTurns := 0
	r := Runner{
		Budget: 100,
		Yield: func(ctx context.Context) error {
			hostTurns++
			return ctx.Err()
		},
	}
	if err := r.Run(context.Background(), th); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if hostTurns == 0 {
		t.Error("checkpoint never ran; the loop should not finish in one 100-instruction quantum")
	}
}

func TestRunner_NoPumpTaskFinishesFirst(t *testing.T) {
	rt := newRuntime(t)

	th, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := th.LoadScript("local x = 0 for i = 1, 10000 do x = x + 1 end"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}

	// A short host-side task advanced one step per checkpoint. It needs three
	// steps; the loop above needs far more than three 100-instruction quanta,
	// so the task must finish while the script is still suspended.
	var order []string
	taskSteps := 0
	r := Runner{
		Budget: 100,
		Yield: func(ctx context.Context) error {
			if taskSteps < 3 {
				taskSteps++
				if taskSteps == 3 {
					order = append(order, "task")
				}
			}
			return ctx.Err()
		},
	}
	if err := r.Run(context.Background(), th); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	order = append(order, "script")

	if len(order) != 2 || order[0] != "task" || order[1] != "script" {
		t.Errorf("completion order = %v, want [task script]", order)
	}
}

func TestRunner_CancelAbandonsThread(t *testing.T) {
	rt := newRuntime(t)

	th, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := th.LoadScript("while true do end"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	pumps := 0
	r := Runner{
		Budget: 200,
		Yield: func(ctx context.Context) error {
			pumps++
			if pumps == 5 {
				cancel()
			}
			return ctx.Err()
		},
	}
	rerr := r.Run(ctx, th)
	if !stderrors.Is(rerr, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", rerr)
	}
	if th.Status() != runtime.StatusFailed {
		t.Errorf("Status = %v, want Failed after abandonment", th.Status())
	}
	if !stderrors.Is(th.Err(), &errors.Error{Phase: errors.PhaseRun, Kind: errors.KindCanceled}) {
		t.Errorf("Err = %v, want run/canceled", th.Err())
	}
}

func TestRun_ConcurrentThreadsShareTheRuntime(t *testing.T) {
	rt := newRuntime(t, runtime.WithBudget(100))

	// A long-running thread and a short one, driven from separate goroutines.
	// The short one must finish well before the long one exhausts its loop,
	// and both observe the same globals.
	if err := RunScript(context.Background(), rt, "done_order = ''"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	long, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := long.LoadScript("local x = 0 for i = 1, 50000 do x = x + 1 end done_order = done_order .. 'A'"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	short, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := short.LoadScript("done_order = done_order .. 'B'"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		close(started)
		if err := Run(context.Background(), long); err != nil {
			t.Errorf("long Run failed: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-started
		if err := Run(context.Background(), short); err != nil {
			t.Errorf("short Run failed: %v", err)
		}
	}()
	wg.Wait()

	reader, err := rt.Spawn()
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := reader.LoadScript("return done_order"); err != nil {
		t.Fatalf("LoadScript failed: %v", err)
	}
	if err := Run(context.Background(), reader); err != nil {
		t.Fatalf("reader Run failed: %v", err)
	}
	results := reader.Results()
	if len(results) != 1 {
		t.Fatalf("Results = %v, want one value", results)
	}
	order, ok := results[0].(string)
	if !ok || len(order) != 2 || !strings.Contains(order, "A") || !strings.Contains(order, "B") {
		t.Errorf("done_order = %v, want both threads recorded", results[0])
	}
}
