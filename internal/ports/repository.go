package ports

import (
	"context"

	"tscat/internal/domain"
)

type FileRepository interface {
	Create(ctx context.Context, f *domain.File) error
	Get(ctx context.Context, id int64) (*domain.File, error)
	List(ctx context.Context) ([]*domain.File, error)
	Delete(ctx context.Context, id int64) error
}

type UnitRepository interface {
	UpsertBatch(ctx context.Context, units []*domain.Unit) error
	ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error)
	Get(ctx context.Context, id int64) (*domain.Unit, error)
}

type TranslationRepository interface {
	Upsert(ctx context.Context, t *domain.Translation) error
	Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error)
	ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error)
}

type JobRepository interface {
	Create(ctx context.Context, j *domain.Job) (int64, error)
	UpdateProgress(ctx context.Context, jobID int64, done, failed, total int, status domain.JobStatus) error
	AddLog(ctx context.Context, jl *domain.JobLog) error
	Get(ctx context.Context, jobID int64) (*domain.Job, error)
	List(ctx context.Context, limit int) ([]*domain.Job, error)
	ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error)
}

type TemplateRepository interface {
	GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error)
	Upsert(ctx context.Context, t *domain.Template) error
}

// CacheRepository stores provider output keyed by CacheKey.Digest.
type CacheRepository interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error)
	Put(ctx context.Context, key domain.CacheKey, translation string) error
}

// Transactor runs fn so that repository calls made with its context share
// a single transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
