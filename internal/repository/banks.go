package repository

import (
	"context"
	"fmt"

	"github.com/socialboost/panel/internal/models"
)

// GetPaymentSettings returns the singleton payment settings (the bank
// list, in display order).
func (q *Queries) GetPaymentSettings(ctx context.Context) (*models.PaymentSettings, error) {
	const query = `SELECT id, name, iban, account_holder_name FROM banks ORDER BY position ASC`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	settings := &models.PaymentSettings{}
	for rows.Next() {
		var b models.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.IBAN, &b.AccountHolderName); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		settings.Banks = append(settings.Banks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banks: %w", err)
	}
	return settings, nil
}

func (q *Queries) GetBank(ctx context.Context, id string) (*models.Bank, error) {
	settings, err := q.GetPaymentSettings(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range settings.Banks {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, models.ErrNotFound
}

// ReplaceBanks swaps the whole bank list in one shot. The settings record
// is a singleton; partial edits go through a full replace.
func (q *Queries) ReplaceBanks(ctx context.Context, banks []models.Bank) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM banks`); err != nil {
		return fmt.Errorf("clear banks: %w", err)
	}
	const query = `INSERT INTO banks (id, name, iban, account_holder_name, position) VALUES (?, ?, ?, ?, ?)`
	for i, b := range banks {
		if _, err := q.db.ExecContext(ctx, query, b.ID, b.Name, b.IBAN, b.AccountHolderName, i); err != nil {
			return fmt.Errorf("insert bank %s: %w", b.ID, err)
		}
	}
	return nil
}
