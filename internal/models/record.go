package models

import "time"

// JobRecord is the local journal entry written after each terminal result,
// kept for operator history and debugging. It never flows back to the API.
type JobRecord struct {
	AssignmentID string    `badgerhold:"key"`
	JobID        string
	Type         JobType
	Status       JobStatus
	ErrorKind    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall-clock time the job held the worker.
func (r JobRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
