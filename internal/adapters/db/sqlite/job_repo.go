package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"tscat/internal/domain"
)

type JobRepo struct{ *Repo }

func NewJobRepo(db *sql.DB) *JobRepo { return &JobRepo{NewRepo(db)} }

var jobColumns = []string{"id", "type", "status", "file_id", "params_json", "progress", "failed", "total", "created_at", "updated_at"}

func (r *JobRepo) Create(ctx context.Context, j *domain.Job) (int64, error) {
	ts := now()
	q := r.SQ.Insert("jobs").Columns("type", "status", "file_id", "params_json", "progress", "failed", "total", "created_at", "updated_at").
		Values(j.Type, string(j.Status), j.FileID, j.ParamsRaw, j.Progress, j.Failed, j.Total, ts, ts)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.q(ctx).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	j.ID = id
	return id, nil
}

func (r *JobRepo) UpdateProgress(ctx context.Context, jobID int64, done, failed, total int, status domain.JobStatus) error {
	q := r.SQ.Update("jobs").
		Set("progress", done).
		Set("failed", failed).
		Set("total", total).
		Set("status", string(status)).
		Set("updated_at", now()).
		Where(sq.Eq{"id": jobID})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = r.q(ctx).ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *JobRepo) AddLog(ctx context.Context, jl *domain.JobLog) error {
	q := r.SQ.Insert("job_logs").Columns("job_id", "ts", "level", "message").Values(jl.JobID, now(), jl.Level, jl.Message)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = r.q(ctx).ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *JobRepo) Get(ctx context.Context, jobID int64) (*domain.Job, error) {
	q := r.SQ.Select(jobColumns...).From("jobs").Where(sq.Eq{"id": jobID}).Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	j, err := scanJob(r.q(ctx).QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %d: %w", jobID, domain.ErrNotFound)
	}
	return j, err
}

func (r *JobRepo) List(ctx context.Context, limit int) ([]*domain.Job, error) {
	q := r.SQ.Select(jobColumns...).From("jobs").OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// ListLogs returns the latest limit log lines of a job, oldest first.
func (r *JobRepo) ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error) {
	q := r.SQ.Select("id", "job_id", "ts", "level", "message").From("job_logs").Where(sq.Eq{"job_id": jobID}).OrderBy("id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.JobLog
	for rows.Next() {
		var l domain.JobLog
		var ts string
		if err := rows.Scan(&l.ID, &l.JobID, &ts, &l.Level, &l.Message); err != nil {
			return nil, err
		}
		l.Time = parseTime(ts)
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func scanJob(s scanner) (*domain.Job, error) {
	var j domain.Job
	var status, created, updated string
	if err := s.Scan(&j.ID, &j.Type, &status, &j.FileID, &j.ParamsRaw, &j.Progress, &j.Failed, &j.Total, &created, &updated); err != nil {
		return nil, err
	}
	j.Status = domain.JobStatus(status)
	j.CreatedAt = parseTime(created)
	j.UpdatedAt = parseTime(updated)
	return &j, nil
}
