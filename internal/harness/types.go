package harness

import (
	"github.com/roach88/eartrain/internal/progression"
)

// TraceEvent is one answered question.
type TraceEvent struct {
	Seq     int                 `json:"seq"`
	Kind    string              `json:"kind"` // "card" or "ordering"
	Card    string              `json:"card,omitempty"`
	Correct bool                `json:"correct"`
	Grade   string              `json:"grade,omitempty"`
	Events  []progression.Event `json:"events,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Trace contains every answered question in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an answered question.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
