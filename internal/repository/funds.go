package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/models"
)

const fundColumns = `id, user_email, amount_micros, bank_id, bank_name, proof_image, status, created_at`

func scanFundRequest(row interface{ Scan(...any) error }) (*models.FundTransferRequest, error) {
	var f models.FundTransferRequest
	if err := row.Scan(&f.ID, &f.UserEmail, &f.AmountMicros, &f.BankID, &f.BankName, &f.ProofImage, &f.Status, &f.CreatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (q *Queries) InsertFundRequest(ctx context.Context, req *models.FundTransferRequest) error {
	const query = `
INSERT INTO fund_requests (id, user_email, amount_micros, bank_id, bank_name, proof_image, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, query,
		req.ID,
		req.UserEmail,
		req.AmountMicros,
		req.BankID,
		req.BankName,
		req.ProofImage,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert fund request: %w", err)
	}
	return nil
}

func (q *Queries) GetFundRequest(ctx context.Context, id string) (*models.FundTransferRequest, error) {
	query := `SELECT ` + fundColumns + ` FROM fund_requests WHERE id = ?`
	f, err := scanFundRequest(q.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get fund request: %w", err)
	}
	return f, nil
}

func (q *Queries) ListFundRequestsForUser(ctx context.Context, email string) ([]models.FundTransferRequest, error) {
	query := `SELECT ` + fundColumns + ` FROM fund_requests WHERE user_email = ? ORDER BY created_at DESC, rowid DESC`
	return q.listFundRequests(ctx, query, email)
}

func (q *Queries) ListAllFundRequests(ctx context.Context) ([]models.FundTransferRequest, error) {
	query := `SELECT ` + fundColumns + ` FROM fund_requests ORDER BY created_at DESC, rowid DESC`
	return q.listFundRequests(ctx, query)
}

func (q *Queries) listFundRequests(ctx context.Context, query string, args ...any) ([]models.FundTransferRequest, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fund requests: %w", err)
	}
	defer rows.Close()

	var requests []models.FundTransferRequest
	for rows.Next() {
		f, err := scanFundRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fund request: %w", err)
		}
		requests = append(requests, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fund requests: %w", err)
	}
	return requests, nil
}

// DecideFundRequest moves a request out of Pending. The guard is in the
// statement itself so a request can never be decided twice.
func (q *Queries) DecideFundRequest(ctx context.Context, id, decision string) error {
	const query = `UPDATE fund_requests SET status = ? WHERE id = ? AND status = ?`
	res, err := q.db.ExecContext(ctx, query, decision, id, domain.FundStatusPending)
	if err != nil {
		return fmt.Errorf("decide fund request: %w", err)
	}
	return requireRow(res, models.ErrInvalidState)
}

func (q *Queries) CountFundRequestsByStatus(ctx context.Context, status string) (int64, error) {
	const query = `SELECT COUNT(*) FROM fund_requests WHERE status = ?`
	var n int64
	if err := q.db.QueryRowContext(ctx, query, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count fund requests: %w", err)
	}
	return n, nil
}
