package plugindomain

import (
	"fmt"
	"sync"
)

// Status is the lifecycle position of a single action.
// Planned -> Running -> Succeeded | Failed | Skipped.
type Status int

const (
	StatusPlanned Status = iota
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusSkipped
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusPlanned:
		return "planned"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// IsTerminal reports whether no further transition can happen
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusSkipped
}

// BecauseCancelled is the skip reason for actions never started after an interrupt
const BecauseCancelled = "cancelled"

// Outcome records what happened to one plugin location during a run
type Outcome struct {
	Slug    string
	Action  ActionKind
	State   State
	Status  Status
	Err     error
	Because string
}

// Counts summarises a report
type Counts struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// String renders the summary line
func (c Counts) String() string {
	return fmt.Sprintf("%d succeeded, %d failed, %d skipped", c.Succeeded, c.Failed, c.Skipped)
}

// Report is the aggregate result of a reconciliation pass. Outcomes are kept
// in planning order regardless of completion order.
type Report struct {
	Verb        Verb
	Interrupted bool

	mu       sync.Mutex
	outcomes []Outcome
}

// NewReport creates a report with n outcome slots
func NewReport(verb Verb, n int) *Report {
	return &Report{Verb: verb, outcomes: make([]Outcome, n)}
}

// Set stores the outcome at index i
func (r *Report) Set(i int, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes[i] = o
}

// Outcomes returns a copy of all outcomes in order
func (r *Report) Outcomes() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, len(r.outcomes))
	copy(out, r.outcomes)
	return out
}

// Failed returns the failed outcomes in order
func (r *Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes() {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// HasFailures reports whether any action failed
func (r *Report) HasFailures() bool {
	return len(r.Failed()) > 0
}

// Counts tallies terminal statuses
func (r *Report) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes() {
		switch o.Status {
		case StatusSucceeded:
			c.Succeeded++
		case StatusFailed:
			c.Failed++
		case StatusSkipped:
			c.Skipped++
		}
	}
	return c
}
