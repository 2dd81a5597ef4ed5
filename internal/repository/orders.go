package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/socialboost/panel/internal/models"
)

const orderColumns = `id, user_email, platform_id, service, link, quantity, cost_micros, status, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	if err := row.Scan(&o.ID, &o.UserEmail, &o.PlatformID, &o.Service, &o.Link, &o.Quantity, &o.CostMicros, &o.Status, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (q *Queries) InsertOrder(ctx context.Context, order *models.Order) error {
	const query = `
INSERT INTO orders (id, user_email, platform_id, service, link, quantity, cost_micros, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, query,
		order.ID,
		order.UserEmail,
		order.PlatformID,
		order.Service,
		order.Link,
		order.Quantity,
		order.CostMicros,
		order.Status,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (q *Queries) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// ListOrdersForUser returns the user's orders, newest first. Ties on the
// timestamp fall back to insertion order.
func (q *Queries) ListOrdersForUser(ctx context.Context, email string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_email = ? ORDER BY created_at DESC, rowid DESC`
	return q.listOrders(ctx, query, email)
}

func (q *Queries) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, rowid DESC`
	return q.listOrders(ctx, query)
}

func (q *Queries) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus overwrites the status unconditionally; any status is
// reachable from any other.
func (q *Queries) UpdateOrderStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE orders SET status = ? WHERE id = ?`
	res, err := q.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

func (q *Queries) CountOrdersByStatus(ctx context.Context, status string) (int64, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE status = ?`
	var n int64
	if err := q.db.QueryRowContext(ctx, query, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}
