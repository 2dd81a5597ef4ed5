package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/socialboost/panel/internal/models"
)

func (q *Queries) InsertMessage(ctx context.Context, msg *models.Message) error {
	const query = `
INSERT INTO messages (id, user_email, sender, body, read, created_at)
VALUES (?, ?, ?, ?, ?, ?);
`
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserEmail,
		msg.From,
		msg.Body,
		msg.Read,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (q *Queries) ListMessagesForUser(ctx context.Context, email string) ([]models.Message, error) {
	const query = `
SELECT id, user_email, sender, body, read, created_at
FROM messages
WHERE user_email = ?
ORDER BY created_at DESC, rowid DESC;
`
	rows, err := q.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserEmail, &m.From, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// MarkAllRead flips every unread message of the user to read. Idempotent;
// returns the number of messages flipped.
func (q *Queries) MarkAllRead(ctx context.Context, email string) (int64, error) {
	const query = `UPDATE messages SET read = 1 WHERE user_email = ? AND read = 0`
	res, err := q.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (q *Queries) CountUnread(ctx context.Context, email string) (int64, error) {
	const query = `SELECT COUNT(*) FROM messages WHERE user_email = ? AND read = 0`
	var n int64
	if err := q.db.QueryRowContext(ctx, query, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}
