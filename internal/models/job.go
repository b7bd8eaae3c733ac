package models

import "time"

// JobType identifies the kind of backend task.
type JobType string

// JobTypeFastQC is the only job type the console triggers today.
const JobTypeFastQC JobType = "FASTQC"

// JobStatus is the lifecycle state of a backend job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether the job has finished, successfully or not.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is an asynchronous backend-executed task associated with a sample.
type Job struct {
	ID         int64      `json:"id"`
	Sample     int64      `json:"sample"`
	JobType    JobType    `json:"job_type"`
	Status     JobStatus  `json:"status"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	OutputPath string     `json:"output_path,omitempty"`
}

// JobHistory is the per-sample job listing, newest first.
type JobHistory struct {
	Sample string `json:"sample"`
	Jobs   []Job  `json:"jobs"`
}
