package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"tscat/internal/domain"
)

type TemplateRepo struct{ *Repo }

func NewTemplateRepo(db *sql.DB) *TemplateRepo { return &TemplateRepo{NewRepo(db)} }

// GetEffective returns file -> global (nil if none in DB).
func (r *TemplateRepo) GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	if scope == "file" && refID != nil {
		t, err := r.getOne(ctx, scope, *refID, typ, role)
		if err != nil || t != nil {
			return t, err
		}
	}
	return r.getOne(ctx, "global", 0, typ, role)
}

func (r *TemplateRepo) getOne(ctx context.Context, scope string, refID int64, typ, role string) (*domain.Template, error) {
	b := r.SQ.Select("id", "scope", "ref_id", "type", "role", "body", "updated_at").From("templates").
		Where(sq.Eq{"scope": scope, "ref_id": refID, "type": typ, "role": role}).
		Limit(1)
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	row := r.q(ctx).QueryRowContext(ctx, sqlStr, args...)
	var t domain.Template
	var ref int64
	var updated string
	if err := row.Scan(&t.ID, &t.Scope, &ref, &t.Type, &t.Role, &t.Body, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if ref != 0 {
		t.RefID = &ref
	}
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func (r *TemplateRepo) Upsert(ctx context.Context, t *domain.Template) error {
	var ref int64
	if t.RefID != nil {
		ref = *t.RefID
	}
	scope := t.Scope
	if scope == "" {
		scope = "global"
	}
	q := r.SQ.Insert("templates").Columns("scope", "ref_id", "type", "role", "body", "updated_at").
		Values(scope, ref, t.Type, t.Role, t.Body, now()).
		Suffix("ON CONFLICT(scope, ref_id, type, role) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = r.q(ctx).ExecContext(ctx, sqlStr, args...)
	return err
}
