package repository

import "context"

// ListNegativeBalanceEmails returns every account whose stored balance has
// gone below zero.
func (q *Queries) ListNegativeBalanceEmails(ctx context.Context) ([]string, error) {
	const query = `SELECT email FROM users WHERE balance_micros < 0 ORDER BY email`
	return q.listStrings(ctx, query)
}

// ListCaseDuplicateEmails returns canonical forms that more than one stored
// email folds to. Registrations lowercase on write, so a non-empty result
// means a row bypassed the service layer.
func (q *Queries) ListCaseDuplicateEmails(ctx context.Context) ([]string, error) {
	const query = `
SELECT lower(email) FROM users
GROUP BY lower(email) HAVING COUNT(*) > 1
ORDER BY lower(email)`
	return q.listStrings(ctx, query)
}

// ListOrphanOrderEmails returns emails that appear on orders but belong to
// no account. Deleting a user leaves its orders behind on purpose, so these
// findings are informational.
func (q *Queries) ListOrphanOrderEmails(ctx context.Context) ([]string, error) {
	const query = `
SELECT DISTINCT o.user_email FROM orders o
LEFT JOIN users u ON u.email = o.user_email
WHERE u.email IS NULL
ORDER BY o.user_email`
	return q.listStrings(ctx, query)
}

func (q *Queries) listStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
