package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/socialboost/panel/internal/models"
)

// IdempotencyRow mirrors one stored idempotency key with its captured
// response.
type IdempotencyRow struct {
	Key         string
	RequestHash string
	Method      string
	Path        string
	InProgress  bool
	Status      int
	Body        []byte
	ContentType string
	ExpiresAt   time.Time
}

func (q *Queries) GetIdempotencyKey(ctx context.Context, key string) (*IdempotencyRow, error) {
	const query = `
SELECT key, request_hash, method, path, in_progress, status, body, content_type, expires_at
FROM idempotency_keys WHERE key = ? AND expires_at > CURRENT_TIMESTAMP`
	var row IdempotencyRow
	err := q.db.QueryRowContext(ctx, query, key).Scan(
		&row.Key, &row.RequestHash, &row.Method, &row.Path,
		&row.InProgress, &row.Status, &row.Body, &row.ContentType, &row.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ReserveIdempotencyKey claims a key for the in-flight request. It reports
// false when the key already exists, whoever inserted it owns the request.
func (q *Queries) ReserveIdempotencyKey(ctx context.Context, key, requestHash, method, path string, ttl time.Duration) (bool, error) {
	const query = `
INSERT INTO idempotency_keys (key, request_hash, method, path, in_progress, expires_at)
VALUES (?, ?, ?, ?, 1, ?)
ON CONFLICT (key) DO NOTHING`
	res, err := q.db.ExecContext(ctx, query, key, requestHash, method, path,
		time.Now().UTC().Add(ttl))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (q *Queries) FinalizeIdempotencyKey(ctx context.Context, key, requestHash string, status int, body []byte, contentType string) error {
	const query = `
UPDATE idempotency_keys
SET in_progress = 0, status = ?, body = ?, content_type = ?
WHERE key = ? AND request_hash = ?`
	res, err := q.db.ExecContext(ctx, query, status, body, contentType, key, requestHash)
	if err != nil {
		return err
	}
	return requireRow(res, models.ErrNotFound)
}

// PurgeExpiredIdempotencyKeys removes keys past their TTL and returns how
// many rows went away.
func (q *Queries) PurgeExpiredIdempotencyKeys(ctx context.Context) (int64, error) {
	const query = `DELETE FROM idempotency_keys WHERE expires_at <= CURRENT_TIMESTAMP`
	res, err := q.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
