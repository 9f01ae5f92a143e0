package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"tscat/internal/domain"
)

type FileRepo struct{ *Repo }
type UnitRepo struct{ *Repo }

func NewFileRepo(db *sql.DB) *FileRepo { return &FileRepo{NewRepo(db)} }
func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{NewRepo(db)} }

var fileColumns = []string{"id", "path", "format", "language", "source_language", "version", "hash", "created_at"}

func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	q := r.SQ.Insert("files").Columns("path", "format", "language", "source_language", "version", "hash", "created_at").
		Values(f.Path, f.Format, f.Language, f.SourceLanguage, f.Version, f.Hash, now())
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	res, err := r.q(ctx).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *FileRepo) Get(ctx context.Context, id int64) (*domain.File, error) {
	q := r.SQ.Select(fileColumns...).From("files").Where(sq.Eq{"id": id})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	f, err := scanFile(r.q(ctx).QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %d: %w", id, domain.ErrNotFound)
	}
	return f, err
}

func (r *FileRepo) List(ctx context.Context) ([]*domain.File, error) {
	q := r.SQ.Select(fileColumns...).From("files").OrderBy("id DESC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *FileRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := r.SQ.Delete("files").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.q(ctx).ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("file %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*domain.File, error) {
	var f domain.File
	var created string
	if err := s.Scan(&f.ID, &f.Path, &f.Format, &f.Language, &f.SourceLanguage, &f.Version, &f.Hash, &created); err != nil {
		return nil, err
	}
	f.CreatedAt = parseTime(created)
	return &f, nil
}

// upsertChunk keeps multi-row inserts well below SQLite's bound-variable limit.
const upsertChunk = 500

var unitColumns = []string{"id", "file_id", "context", "key", "source_text", "comment", "numerus", "position", "metadata_json", "created_at"}

func (r *UnitRepo) UpsertBatch(ctx context.Context, units []*domain.Unit) error {
	for start := 0; start < len(units); start += upsertChunk {
		end := min(start+upsertChunk, len(units))
		ib := r.SQ.Insert("units").Columns("file_id", "context", "key", "source_text", "comment", "numerus", "position", "metadata_json")
		for _, u := range units[start:end] {
			meta := u.MetadataRaw
			if meta == "" {
				meta = "{}"
			}
			ib = ib.Values(u.FileID, u.Context, u.Key, u.SourceText, u.Comment, u.Numerus, u.Position, meta)
		}
		sqlStr, args, err := ib.Suffix("ON CONFLICT(file_id, context, key, comment) DO UPDATE SET source_text=excluded.source_text, numerus=excluded.numerus, position=excluded.position, metadata_json=excluded.metadata_json").ToSql()
		if err != nil {
			return err
		}
		if _, err := r.q(ctx).ExecContext(ctx, sqlStr, args...); err != nil {
			return fmt.Errorf("upsert units: %w", err)
		}
	}
	return nil
}

func (r *UnitRepo) ListByFile(ctx context.Context, fileID int64) ([]*domain.Unit, error) {
	q := r.SQ.Select(unitColumns...).From("units").Where(sq.Eq{"file_id": fileID}).OrderBy("position", "id")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UnitRepo) Get(ctx context.Context, id int64) (*domain.Unit, error) {
	q := r.SQ.Select(unitColumns...).From("units").Where(sq.Eq{"id": id}).Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUnit(r.q(ctx).QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %d: %w", id, domain.ErrNotFound)
	}
	return u, err
}

func scanUnit(s scanner) (*domain.Unit, error) {
	var u domain.Unit
	var created string
	if err := s.Scan(&u.ID, &u.FileID, &u.Context, &u.Key, &u.SourceText, &u.Comment, &u.Numerus, &u.Position, &u.MetadataRaw, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(created)
	return &u, nil
}
