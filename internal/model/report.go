package model

import (
	"fmt"
	"time"
)

// ActionResult is the outcome of one action.
type ActionResult struct {
	// Index is the position of the action within the profile.
	Index int `json:"index"`

	// Name is the action name as configured.
	Name string `json:"name"`

	// Method is the configured method.
	Method Method `json:"method"`

	// URL is the final request URL, after expansion and query encoding.
	URL string `json:"url,omitempty"`

	// State is StateSucceeded or StateFailed once the action finished.
	State ActionState `json:"state"`

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int `json:"statusCode,omitempty"`

	// Error describes why the action failed. Empty on success.
	Error string `json:"error,omitempty"`

	// Response is the decoded response body: a JSON value when the server
	// declared application/json and the body parsed, otherwise the raw text.
	Response any `json:"response,omitempty"`

	// Duration is the time from request construction to the terminal state.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the action reached StateSucceeded.
func (r ActionResult) Succeeded() bool {
	return r.State == StateSucceeded
}

// Line returns the one-line summary shown to the user.
func (r ActionResult) Line() string {
	if r.Succeeded() {
		return fmt.Sprintf("✅ %s: Success (Status: %d)", r.Name, r.StatusCode)
	}
	return fmt.Sprintf("❌ %s: %s", r.Name, r.Error)
}

// ExecutionReport aggregates the outcome of one profile run.
type ExecutionReport struct {
	// RunID identifies the run in the history table. Zero until persisted.
	RunID int64 `json:"runId,omitempty"`

	ProfileID   string `json:"profileId"`
	ProfileName string `json:"profileName"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Results holds one entry per action, in declaration order.
	Results []ActionResult `json:"results"`

	// NewTags are the hashtags first seen in this run's message.
	NewTags []string `json:"newTags,omitempty"`

	// Warnings collects non-fatal problems such as a failed settings write.
	Warnings []string `json:"warnings,omitempty"`
}

// NewExecutionReport creates an empty report for the given profile.
func NewExecutionReport(p Profile) *ExecutionReport {
	return &ExecutionReport{
		ProfileID:   p.ID,
		ProfileName: p.Name,
		StartedAt:   time.Now(),
		Results:     make([]ActionResult, 0, len(p.Actions)),
	}
}

// AddResult appends the outcome of one action.
func (r *ExecutionReport) AddResult(result ActionResult) {
	r.Results = append(r.Results, result)
}

// AddWarning records a non-fatal problem.
func (r *ExecutionReport) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// SuccessCount returns the number of succeeded actions.
func (r *ExecutionReport) SuccessCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Succeeded() {
			n++
		}
	}
	return n
}

// FailureCount returns the number of failed actions.
func (r *ExecutionReport) FailureCount() int {
	return len(r.Results) - r.SuccessCount()
}

// AllSucceeded reports whether every action succeeded.
// A profile without actions counts as fully successful.
func (r *ExecutionReport) AllSucceeded() bool {
	return r.FailureCount() == 0
}

// Lines returns one summary line per action, in declaration order.
func (r *ExecutionReport) Lines() []string {
	lines := make([]string, len(r.Results))
	for i, res := range r.Results {
		lines[i] = res.Line()
	}
	return lines
}

// Duration returns the wall time of the run.
func (r *ExecutionReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
