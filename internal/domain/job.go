package domain

import "time"

type JobStatus string

const (
	JobQueued   JobStatus = "queued"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

type Job struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"` // fill
	Status    JobStatus `json:"status"`
	FileID    int64     `json:"file_id"`
	ParamsRaw string    `json:"params_json"`
	Progress  int       `json:"progress"`
	Failed    int       `json:"failed"`
	Total     int       `json:"total"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type JobLog struct {
	ID      int64     `json:"id"`
	JobID   int64     `json:"job_id"`
	Time    time.Time `json:"ts"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}
