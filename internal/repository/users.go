package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/socialboost/panel/internal/models"
)

const userColumns = `email, name, password_hash, balance_micros, api_key, COALESCE(profile_picture, ''), created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.Email, &u.Name, &u.PasswordHash, &u.BalanceMicros, &u.APIKey, &u.ProfilePicture, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser stores a new user. Email is expected lowercased by the caller.
func (q *Queries) CreateUser(ctx context.Context, user *models.User) error {
	const query = `
INSERT INTO users (email, name, password_hash, balance_micros, api_key, profile_picture, created_at)
VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?);
`
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.BalanceMicros,
		user.APIKey,
		user.ProfilePicture,
		user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "users.email") {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(q.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (q *Queries) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE api_key = ?`
	u, err := scanUser(q.db.QueryRowContext(ctx, query, apiKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get user by api key: %w", err)
	}
	return u, nil
}

func (q *Queries) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, email ASC`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateBalance overwrites the user's balance. No lower bound is enforced
// here; callers validate sufficiency before debiting.
func (q *Queries) UpdateBalance(ctx context.Context, email string, balanceMicros int64) error {
	const query = `UPDATE users SET balance_micros = ?, updated_at = ? WHERE email = ?`
	res, err := q.db.ExecContext(ctx, query, balanceMicros, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

func (q *Queries) UpdateUserName(ctx context.Context, email, name string) error {
	const query = `UPDATE users SET name = ?, updated_at = ? WHERE email = ?`
	res, err := q.db.ExecContext(ctx, query, name, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

func (q *Queries) UpdateUserPassword(ctx context.Context, email, passwordHash string) error {
	const query = `UPDATE users SET password_hash = ?, updated_at = ? WHERE email = ?`
	res, err := q.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("update user password: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

func (q *Queries) UpdateProfilePicture(ctx context.Context, email, pictureDataURL string) error {
	const query = `UPDATE users SET profile_picture = NULLIF(?, ''), updated_at = ? WHERE email = ?`
	res, err := q.db.ExecContext(ctx, query, pictureDataURL, time.Now().UTC(), email)
	if err != nil {
		return fmt.Errorf("update profile picture: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

// RenameUserEmail moves the user row to a new email key. Referencing rows
// are cascaded separately; run both inside one transaction.
func (q *Queries) RenameUserEmail(ctx context.Context, oldEmail, newEmail string) error {
	const query = `UPDATE users SET email = ?, updated_at = ? WHERE email = ?`
	res, err := q.db.ExecContext(ctx, query, newEmail, time.Now().UTC(), oldEmail)
	if err != nil {
		if strings.Contains(err.Error(), "users.email") {
			return models.ErrDuplicateEmail
		}
		return fmt.Errorf("rename user email: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

// CascadeUserEmail rewrites user_email on orders, fund requests and
// messages from oldEmail to newEmail.
func (q *Queries) CascadeUserEmail(ctx context.Context, oldEmail, newEmail string) error {
	for _, table := range []string{"orders", "fund_requests", "messages"} {
		query := fmt.Sprintf(`UPDATE %s SET user_email = ? WHERE user_email = ?`, table)
		if _, err := q.db.ExecContext(ctx, query, newEmail, oldEmail); err != nil {
			return fmt.Errorf("cascade email on %s: %w", table, err)
		}
	}
	return nil
}

// DeleteUser removes the user record. Orders and other history survive on
// purpose.
func (q *Queries) DeleteUser(ctx context.Context, email string) error {
	const query = `DELETE FROM users WHERE email = ?`
	res, err := q.db.ExecContext(ctx, query, email)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res, models.ErrNotFound)
}

func requireRow(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return missing
	}
	return nil
}
