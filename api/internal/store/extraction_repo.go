package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ExtractionRepo is the postgres-backed Cache.
type ExtractionRepo struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewExtractionRepo(db *sql.DB, maxAge time.Duration) *ExtractionRepo {
	return &ExtractionRepo{DB: db, MaxAge: maxAge}
}

const schema = `
create table if not exists extraction_cache (
  image_hash text not null,
  scope      text not null,
  backend    text not null default '',
  raw_text   text not null,
  created_at timestamptz not null default now(),
  primary key (image_hash, scope)
)`

// EnsureSchema creates the cache table when missing.
func (r *ExtractionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Find returns the newest answer for the key; a stale row counts as not found.
func (r *ExtractionRepo) Find(ctx context.Context, imageHash, scope string) (Entry, error) {
	const q = `
select raw_text, backend, created_at
from extraction_cache
where image_hash = $1 and scope = $2`
	var e Entry
	if err := r.DB.QueryRowContext(ctx, q, imageHash, scope).Scan(&e.Text, &e.Backend, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	if r.MaxAge > 0 && time.Since(e.CreatedAt) > r.MaxAge {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *ExtractionRepo) Upsert(ctx context.Context, imageHash, scope string, e Entry) error {
	const q = `
insert into extraction_cache (image_hash, scope, backend, raw_text)
values ($1, $2, $3, $4)
on conflict (image_hash, scope) do update
set backend = excluded.backend,
    raw_text = excluded.raw_text,
    created_at = now()`
	_, err := r.DB.ExecContext(ctx, q, imageHash, scope, e.Backend, e.Text)
	return err
}

// PurgeOlderThan removes old answers so the table does not grow forever.
func (r *ExtractionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.ExecContext(ctx, `delete from extraction_cache where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
