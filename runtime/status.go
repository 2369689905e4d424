package runtime

// Status is the lifecycle state of a Thread.
type Status int

const (
	StatusReady     Status = iota // created, not yet pumped
	StatusSuspended               // mid-execution, more work remains
	StatusCompleted               // ran to natural end, no error
	StatusFailed                  // terminated by an error
)

// Terminal reports whether the status is a sink: once Completed or Failed, a
// thread is inert and further pumps are no-ops.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusSuspended:
		return "suspended"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
