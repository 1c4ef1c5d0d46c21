package store

import (
	"context"
	"database/sql"
	"time"
)

var ErrNotFound = sql.ErrNoRows

// Entry is a cached raw backend answer for one image.
type Entry struct {
	Text      string
	Backend   string
	CreatedAt time.Time
}

// Cache keeps raw extraction answers keyed by (image hash, scope).
// Scope separates answers produced under different models or instructions.
type Cache interface {
	Find(ctx context.Context, imageHash, scope string) (Entry, error)
	Upsert(ctx context.Context, imageHash, scope string, e Entry) error
}
