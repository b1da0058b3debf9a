package domain

import "time"

// ProgressEvent is an advisory status update from a long-running operation.
type ProgressEvent struct {
	Operation string        `json:"operation"`
	Message   string        `json:"message"`
	Elapsed   time.Duration `json:"elapsed"`
	Total     time.Duration `json:"total,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Fraction returns completion in [0,1], or -1 when the total is unknown.
func (e ProgressEvent) Fraction() float64 {
	if e.Total <= 0 {
		return -1
	}
	f := float64(e.Elapsed) / float64(e.Total)
	if f > 1 {
		return 1
	}
	return f
}
