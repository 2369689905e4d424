package engine

import (
	"errors"
	"sync"
	"time"
)

// ErrCanceled is reported by Meter.Err after cancellation. The guest sees it
// as the message of the raised error that unwinds its stack.
var ErrCanceled = errors.New("luabject: execution canceled")

var closedChan = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Meter is the instruction budget gate. It implements context.Context and is
// installed on a session's child LState; the VM consults Done once per guest
// instruction, which Meter uses to account for executed instructions and to
// park the worker goroutine when the current quantum runs out.
//
// Ownership is split: Done runs only on the session's worker goroutine, while
// Grant and Cancel are called only from the pumping side. The remaining-count
// is therefore local to the worker and needs no synchronization.
type Meter struct {
	remaining  int64
	grants     chan int64
	parked     chan struct{}
	canceled   chan struct{}
	cancelOnce sync.Once
}

func NewMeter() *Meter {
	return &Meter{
		grants:   make(chan int64, 1),
		parked:   make(chan struct{}),
		canceled: make(chan struct{}),
	}
}

// Done accounts for one guest instruction. While quantum remains it returns a
// nil channel, so the VM's readiness check falls through and the instruction
// executes. On exhaustion the call parks the worker until the next Grant.
// After Cancel it returns a closed channel, making the VM raise and unwind.
func (m *Meter) Done() <-chan struct{} {
	select {
	case <-m.canceled:
		return closedChan
	default:
	}

	m.remaining--
	if m.remaining >= 0 {
		return nil
	}

	// Quantum exhausted. A grant may already be waiting (always true for the
	// first instruction of a freshly started session).
	select {
	case n := <-m.grants:
		m.remaining = n - 1
		return nil
	default:
	}

	// Park: hand control back to the pumping side, then wait to be resumed.
	select {
	case m.parked <- struct{}{}:
	case <-m.canceled:
		return closedChan
	}

	select {
	case n := <-m.grants:
		m.remaining = n - 1
		return nil
	case <-m.canceled:
		return closedChan
	}
}

// Err reports ErrCanceled once the meter has been canceled, nil before.
func (m *Meter) Err() error {
	select {
	case <-m.canceled:
		return ErrCanceled
	default:
		return nil
	}
}

func (m *Meter) Deadline() (time.Time, bool) { return time.Time{}, false }

func (m *Meter) Value(key any) any { return nil }

// Grant hands the worker its next quantum of n instructions. At most one
// grant may be outstanding; the session's step protocol guarantees that.
func (m *Meter) Grant(n int64) {
	m.grants <- n
}

// Parked is readable once per quantum exhaustion; the pumping side receives
// from it to learn that the worker has suspended.
func (m *Meter) Parked() <-chan struct{} {
	return m.parked
}

// Cancel permanently trips the meter. A parked or running worker unwinds via
// a guest-level raise on its next Done consultation. Idempotent.
func (m *Meter) Cancel() {
	m.cancelOnce.Do(func() { close(m.canceled) })
}
