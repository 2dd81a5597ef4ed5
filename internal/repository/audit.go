package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/socialboost/panel/internal/models"
)

func (q *Queries) InsertAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	const query = `
INSERT INTO audit_log (entity_type, entity_id, actor_email, action, prev_state, next_state, created_at)
VALUES (?, ?, NULLIF(?, ''), ?, NULLIF(?, ''), NULLIF(?, ''), ?);
`
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := q.db.ExecContext(ctx, query,
		entry.EntityType,
		entry.EntityID,
		entry.ActorEmail,
		entry.Action,
		entry.PrevState,
		entry.NextState,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

func (q *Queries) ListAuditEntries(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	const query = `
SELECT id, entity_type, entity_id, COALESCE(actor_email, ''), action, COALESCE(prev_state, ''), COALESCE(next_state, ''), created_at
FROM audit_log
ORDER BY id DESC
LIMIT ?;
`
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.ActorEmail, &e.Action, &e.PrevState, &e.NextState, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
