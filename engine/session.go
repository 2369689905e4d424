package engine

import (
	stderrors "errors"

	lua "github.com/yuin/gopher-lua"

	"github.com/markpasc/luabject/errors"
)

type StepStatus int

const (
	StepContinue StepStatus = iota // quantum exhausted, more work remains
	StepDone                       // execution terminated
)

// StepResult reports the outcome of one Step. Status StepDone with a nil
// Error means the guest ran off the end of its chunk; Results then holds its
// return values. A non-nil Error is always terminal.
type StepResult struct {
	Results []lua.LValue
	Error   error
	Status  StepStatus
}

// Session is one suspendable guest execution: a child LState sharing the
// root's globals, a Meter gating its instructions, and a worker goroutine
// launched on the first Step.
//
// A Session is owned by a single pumping task at a time; concurrent Steps of
// the same Session are a caller error. A Session is never re-armed for a
// second execution.
type Session struct {
	state   *State
	co      *lua.LState
	meter   *Meter
	fn      lua.LValue
	args    []lua.LValue
	armed   bool
	started bool
	done    chan struct{}
	final   StepResult
}

// NewSession creates an unarmed session on state.
func NewSession(state *State) *Session {
	co := state.NewThreadState()
	m := NewMeter()
	co.SetContext(m)
	return &Session{
		state: state,
		co:    co,
		meter: m,
		done:  make(chan struct{}),
	}
}

// Execute arms the session with a callable guest value and its arguments.
// Nothing runs until the first Step. Arming twice is a caller error.
func (s *Session) Execute(fn lua.LValue, args ...lua.LValue) error {
	if s.armed {
		return errors.InvalidInput(errors.PhaseLoad, "session already armed")
	}
	s.fn = fn
	s.args = args
	s.armed = true
	return nil
}

// Step grants one quantum of at most budget instructions and blocks until
// the worker either parks (StepContinue) or terminates (StepDone). The first
// Step launches the worker. Step on a terminated session returns the
// recorded terminal result unchanged, without re-executing anything.
//
// The returned error reports caller misuse only; guest outcomes, including
// faults, arrive in the StepResult.
func (s *Session) Step(budget int64) (StepResult, error) {
	if !s.armed {
		return StepResult{}, errors.InvalidInput(errors.PhaseRun, "session not armed; call Execute first")
	}
	if budget <= 0 {
		return StepResult{}, errors.InvalidInput(errors.PhaseRun, "instruction budget must be positive")
	}

	select {
	case <-s.done:
		return s.final, nil
	default:
	}

	s.meter.Grant(budget)
	if !s.started {
		s.started = true
		go s.run()
	}

	select {
	case <-s.meter.Parked():
		return StepResult{Status: StepContinue}, nil
	case <-s.done:
		return s.final, nil
	}
}

func (s *Session) run() {
	res := StepResult{Status: StepDone}

	err := s.co.CallByParam(lua.P{
		Fn:      s.fn,
		NRet:    lua.MultRet,
		Protect: true,
	}, s.args...)

	if err != nil {
		if s.meter.Err() != nil {
			res.Error = errors.Canceled("execution canceled mid-quantum")
		} else {
			res.Error = classifyCallError(err)
		}
	} else {
		top := s.co.GetTop()
		for i := 1; i <= top; i++ {
			res.Results = append(res.Results, s.co.Get(i))
		}
		s.co.SetTop(0)
	}

	s.final = res
	close(s.done)
}

// Cancel trips the meter so an in-flight or parked worker unwinds and exits.
// Safe to call at any time, including on terminated or never-started
// sessions. It does not wait; see Wait.
func (s *Session) Cancel() {
	s.meter.Cancel()
}

// Wait blocks until the worker goroutine has exited. It returns immediately
// for sessions whose worker never started.
func (s *Session) Wait() {
	if s.started {
		<-s.done
	}
}

// Finished reports whether the session has reached its terminal result.
func (s *Session) Finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// classifyCallError maps a gopher-lua call failure onto the engine's error
// taxonomy. Anything surfacing from guest execution is a runtime fault; host
// binding failures arrive here too, already raised into the guest.
func classifyCallError(err error) error {
	var aerr *lua.ApiError
	if stderrors.As(err, &aerr) && aerr.Type == lua.ApiErrorSyntax {
		return errors.Syntax(err)
	}
	return errors.Runtime(err)
}
