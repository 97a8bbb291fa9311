// Package audit provides audit logging for topology commits.
package audit

import (
	"fmt"
	"time"
)

// Event represents one auditable commit or validate call.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Context   string    `json:"context"`
	Operation string    `json:"operation"` // "validate" or "commit"

	Network string   `json:"network,omitempty"`
	Changes []string `json:"changes"`

	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Problems int           `json:"problems"`
	Duration time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events.
type Filter struct {
	Context     string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	SuccessOnly bool
	FailureOnly bool
	Limit       int
	Offset      int
}

// NewEvent creates a new audit event for a commit/validate call on
// the named Context.
func NewEvent(contextName, operation string) *Event {
	return &Event{
		ID:        generateID(),
		Timestamp: time.Now(),
		Context:   contextName,
		Operation: operation,
	}
}

// WithNetwork sets the network name the event concerns, when an
// event is scoped to a single network rather than a whole commit.
func (e *Event) WithNetwork(network string) *Event {
	e.Network = network
	return e
}

// WithChanges records a human-readable summary of what changed (e.g.
// "create-pa net1/leaf1", "add-virt net1/leaf1/vm0").
func (e *Event) WithChanges(changes []string) *Event {
	e.Changes = changes
	return e
}

// WithSuccess marks the event as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithProblems records how many validation problems were raised.
func (e *Event) WithProblems(n int) *Event {
	e.Problems = n
	return e
}

// WithDuration sets the operation duration.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}

func generateID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
