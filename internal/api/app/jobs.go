package app

import (
	"context"
	"time"

	"tscat/internal/domain"
	"tscat/internal/ports"
	"tscat/internal/usecase/jobs"
)

type JobsAPI struct {
	r    *jobs.Runner
	repo ports.JobRepository
}

func NewJobsAPI(r *jobs.Runner, repo ports.JobRepository) *JobsAPI { return &JobsAPI{r: r, repo: repo} }

type FillRequest struct {
	FileID      int64         `json:"file_id"`
	Locale      string        `json:"locale"`
	Model       string        `json:"model"`
	Workers     int           `json:"workers"`
	ItemTimeout time.Duration `json:"item_timeout"`
}

// Fill runs a fill job to completion and returns its final state.
func (a *JobsAPI) Fill(ctx context.Context, req FillRequest) (*JobDTO, error) {
	j, err := a.r.Fill(ctx, jobs.FillParams{FileID: req.FileID, Locale: req.Locale, Model: req.Model, Workers: req.Workers, ItemTimeout: req.ItemTimeout})
	if err != nil {
		return nil, err
	}
	return toJobDTO(j), nil
}

func (a *JobsAPI) Cancel(jobID int64) bool { return a.r.Cancel(jobID) }

type JobDTO struct {
	ID       int64            `json:"id"`
	Type     string           `json:"type"`
	Status   domain.JobStatus `json:"status"`
	FileID   int64            `json:"file_id"`
	Progress int              `json:"progress"`
	Failed   int              `json:"failed"`
	Total    int              `json:"total"`
	Updated  time.Time        `json:"updated_at"`
}

func toJobDTO(j *domain.Job) *JobDTO {
	return &JobDTO{ID: j.ID, Type: j.Type, Status: j.Status, FileID: j.FileID, Progress: j.Progress, Failed: j.Failed, Total: j.Total, Updated: j.UpdatedAt}
}

func (a *JobsAPI) Get(ctx context.Context, jobID int64) (*JobDTO, error) {
	j, err := a.repo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return toJobDTO(j), nil
}

func (a *JobsAPI) List(ctx context.Context, limit int) ([]*JobDTO, error) {
	js, err := a.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*JobDTO, 0, len(js))
	for _, j := range js {
		out = append(out, toJobDTO(j))
	}
	return out, nil
}

func (a *JobsAPI) Logs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error) {
	return a.repo.ListLogs(ctx, jobID, limit)
}
