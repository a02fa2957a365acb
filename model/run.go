package model

import "fmt"

// RunStatus is the remote status of a run. The set is open: the service may
// return values not listed here, and all of them are treated as terminal.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusExpired        RunStatus = "expired"
)

// Active reports whether the run is still queued or executing.
func (s RunStatus) Active() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

// RunError is the error detail the service attaches to a failed run.
type RunError struct {
	Code    string
	Message string
}

func (e *RunError) String() string {
	if e == nil {
		return "<none>"
	}
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Run is a handle to one execution of an agent against a thread.
// It is never mutated locally; callers replace it by re-fetching.
type Run struct {
	ID        string
	ThreadID  string
	AgentID   string
	Status    RunStatus
	LastError *RunError
}

// PollState is the per-loop bookkeeping of the run poller.
type PollState struct {
	// LastMessageID is the identifier of the last agent message printed, "" if none.
	LastMessageID string
	Ticks         int
}
