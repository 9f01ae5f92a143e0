package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"tscat/internal/domain"
)

type TranslationRepo struct{ *Repo }

func NewTranslationRepo(db *sql.DB) *TranslationRepo { return &TranslationRepo{NewRepo(db)} }

func (r *TranslationRepo) Upsert(ctx context.Context, t *domain.Translation) error {
	forms, err := json.Marshal(nonNil(t.NumerusForms))
	if err != nil {
		return err
	}
	ts := now()
	q := r.SQ.Insert("translations").Columns("unit_id", "locale", "text", "status", "numerus_json", "provider", "created_at", "updated_at").
		Values(t.UnitID, t.Locale, t.Text, t.Status.String(), string(forms), t.Provider, ts, ts).
		Suffix("ON CONFLICT(unit_id, locale) DO UPDATE SET text=excluded.text, status=excluded.status, numerus_json=excluded.numerus_json, provider=excluded.provider, updated_at=excluded.updated_at")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return err
	}
	if _, err := r.q(ctx).ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert translation: %w", err)
	}
	return nil
}

// Get returns nil without error when the unit has no translation for locale.
func (r *TranslationRepo) Get(ctx context.Context, unitID int64, locale string) (*domain.Translation, error) {
	q := r.SQ.Select("id", "unit_id", "locale", "text", "status", "numerus_json", "provider", "created_at", "updated_at").From("translations").
		Where(sq.Eq{"unit_id": unitID, "locale": locale}).Limit(1)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	t, err := scanTranslation(r.q(ctx).QueryRowContext(ctx, sqlStr, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TranslationRepo) ListByFileLocale(ctx context.Context, fileID int64, locale string) ([]*domain.Translation, error) {
	q := r.SQ.Select("t.id", "t.unit_id", "t.locale", "t.text", "t.status", "t.numerus_json", "t.provider", "t.created_at", "t.updated_at").
		From("translations t").Join("units u ON u.id = t.unit_id").Where(sq.Eq{"u.file_id": fileID, "t.locale": locale}).OrderBy("u.position", "u.id")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.q(ctx).QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Translation
	for rows.Next() {
		t, err := scanTranslation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTranslation(s scanner) (*domain.Translation, error) {
	var t domain.Translation
	var status, forms, created, updated string
	if err := s.Scan(&t.ID, &t.UnitID, &t.Locale, &t.Text, &status, &forms, &t.Provider, &created, &updated); err != nil {
		return nil, err
	}
	st, err := domain.ParseTranslationType(status)
	if err != nil {
		return nil, fmt.Errorf("translation %d: %w", t.ID, err)
	}
	t.Status = st
	if forms != "" && forms != "[]" {
		if err := json.Unmarshal([]byte(forms), &t.NumerusForms); err != nil {
			return nil, fmt.Errorf("translation %d numerus forms: %w", t.ID, err)
		}
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
