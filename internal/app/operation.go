package app

import (
	"time"
)

// Operation tracks one CLI invocation for the log. Its ID tags every log
// line written while it runs.
type Operation struct {
	ID       string
	Name     string
	Status   string // "success" or "error"
	Err      string
	Started  time.Time
	Finished time.Time
}

// NewOperation creates an operation that started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:      now.UTC().Format("20060102T150405Z"),
		Name:    name,
		Status:  "success",
		Started: now,
	}
}

// Fail marks the operation as failed. A nil error is ignored.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = "error"
	op.Err = err.Error()
}

// Finish stamps the end time. Only the first call counts.
func (op *Operation) Finish(now time.Time) {
	if op.Finished.IsZero() {
		op.Finished = now
	}
}

// Elapsed is the run time, or zero while the operation is still running.
func (op *Operation) Elapsed() time.Duration {
	if op.Finished.IsZero() {
		return 0
	}
	return op.Finished.Sub(op.Started)
}
