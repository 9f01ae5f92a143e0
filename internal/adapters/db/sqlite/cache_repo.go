package sqlite

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"tscat/internal/domain"
)

type CacheRepo struct{ *Repo }

func NewCacheRepo(db *sql.DB) *CacheRepo { return &CacheRepo{NewRepo(db)} }

// Get returns nil without error on a miss. A hit bumps the entry's counter.
func (r *CacheRepo) Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	digest := key.Digest()
	sqlStr, args, err := r.SQ.
		Select("id", "translation", "hits", "created_at").
		From("cache").
		Where(sq.Eq{"key_hash": digest}).
		ToSql()
	if err != nil {
		return nil, err
	}
	e := domain.CacheEntry{CacheKey: key}
	var created string
	err = r.q(ctx).QueryRowContext(ctx, sqlStr, args...).Scan(&e.ID, &e.Translation, &e.Hits, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt = parseTime(created)

	sqlStr, args, err = r.SQ.Update("cache").
		Set("hits", sq.Expr("hits + 1")).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.q(ctx).ExecContext(ctx, sqlStr, args...); err != nil {
		return nil, err
	}
	e.Hits++
	return &e, nil
}

// Put stores translation for key, replacing an older value and resetting
// its hit count.
func (r *CacheRepo) Put(ctx context.Context, key domain.CacheKey, translation string) error {
	sqlStr, args, err := r.SQ.
		Insert("cache").
		Columns("key_hash", "context", "comment", "source_text", "src_lang", "tgt_lang", "provider", "model", "translation").
		Values(key.Digest(), key.Context, key.Comment, key.Source, key.SrcLang, key.TgtLang, key.Provider, key.Model, translation).
		Suffix("ON CONFLICT(key_hash) DO UPDATE SET translation = excluded.translation, hits = 0").
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.q(ctx).ExecContext(ctx, sqlStr, args...)
	return err
}
