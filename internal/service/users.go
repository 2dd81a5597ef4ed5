package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/session"
)

// UserService owns account lifecycle: registration, login, profile and
// balance changes, and the email renames that cascade across the ledger.
type UserService struct {
	store    QueryStore
	sessions *session.Manager
	audit    *AuditService
	logger   *zap.Logger
}

func NewUserService(store QueryStore, sessions *session.Manager, audit *AuditService, logger *zap.Logger) *UserService {
	return &UserService{
		store:    store,
		sessions: sessions,
		audit:    audit,
		logger:   logger,
	}
}

// normalizeEmail is the canonical form every lookup and write uses. Emails
// are stored lowercased so equality stays case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        normalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
		APIKey:       repository.NewAPIKey(),
	}
	if err := s.store.Queries().CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and starts a session for the user.
// A missing account and a wrong password are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Queries().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	s.sessions.Start(*user)
	return user, nil
}

func (s *UserService) Logout() {
	s.sessions.Clear()
}

func (s *UserService) Current() (models.User, bool) {
	return s.sessions.Current()
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.store.Queries().GetUserByEmail(ctx, normalizeEmail(email))
}

func (s *UserService) GetByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	return s.store.Queries().GetUserByAPIKey(ctx, apiKey)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.Queries().ListUsers(ctx)
}

// RenameEmail changes the signed-in user's own address after re-checking
// their password, then rewrites every ledger row that carries the old one.
func (s *UserService) RenameEmail(ctx context.Context, currentEmail, newEmail, password string) (*models.User, error) {
	current := normalizeEmail(currentEmail)
	user, err := s.store.Queries().GetUserByEmail(ctx, current)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return s.renameEmail(ctx, current, normalizeEmail(newEmail), current)
}

// RenameEmailByAdmin renames any account without a password check.
func (s *UserService) RenameEmailByAdmin(ctx context.Context, currentEmail, newEmail, actorEmail string) (*models.User, error) {
	return s.renameEmail(ctx, normalizeEmail(currentEmail), normalizeEmail(newEmail), actorEmail)
}

func (s *UserService) renameEmail(ctx context.Context, oldEmail, newEmail, actorEmail string) (*models.User, error) {
	if newEmail == "" {
		return nil, fmt.Errorf("new email is required")
	}
	if newEmail == oldEmail {
		return nil, fmt.Errorf("%w: email unchanged", models.ErrInvalidState)
	}
	if _, err := s.store.Queries().GetUserByEmail(ctx, newEmail); err == nil {
		return nil, models.ErrDuplicateEmail
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if err := q.RenameUserEmail(ctx, oldEmail, newEmail); err != nil {
			return err
		}
		if err := q.CascadeUserEmail(ctx, oldEmail, newEmail); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "user", newEmail, actorEmail, "rename_email", oldEmail, newEmail)
	})
	if err != nil {
		return nil, err
	}

	user, err := s.store.Queries().GetUserByEmail(ctx, newEmail)
	if err != nil {
		return nil, err
	}
	s.sessions.Refresh(oldEmail, *user)
	return user, nil
}

// SetBalance overwrites the stored balance wholesale. Negative values are
// accepted; the integrity checker reports them.
func (s *UserService) SetBalance(ctx context.Context, email string, balanceMicros int64, actorEmail string) (*models.User, error) {
	norm := normalizeEmail(email)
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if err := q.UpdateBalance(ctx, norm, balanceMicros); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "user", norm, actorEmail, "set_balance", "", fmt.Sprintf("%d", balanceMicros))
	})
	if err != nil {
		return nil, err
	}
	return s.refreshed(ctx, norm)
}

func (s *UserService) UpdateName(ctx context.Context, email, name string) (*models.User, error) {
	norm := normalizeEmail(email)
	if err := s.store.Queries().UpdateUserName(ctx, norm, name); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, norm)
}

func (s *UserService) UpdateProfilePicture(ctx context.Context, email, pictureDataURL string) (*models.User, error) {
	norm := normalizeEmail(email)
	if err := s.store.Queries().UpdateProfilePicture(ctx, norm, pictureDataURL); err != nil {
		return nil, err
	}
	return s.refreshed(ctx, norm)
}

// ChangePassword re-checks the current password before storing the new hash.
func (s *UserService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	norm := normalizeEmail(email)
	user, err := s.store.Queries().GetUserByEmail(ctx, norm)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return models.ErrInvalidCredentials
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.Queries().UpdateUserPassword(ctx, norm, hash)
}

func (s *UserService) ResetPasswordByAdmin(ctx context.Context, email, newPassword, actorEmail string) error {
	norm := normalizeEmail(email)
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if err := q.UpdateUserPassword(ctx, norm, hash); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "user", norm, actorEmail, "reset_password", "", "")
	})
}

// RequestPasswordReset acknowledges every request without revealing whether
// the account exists. No mail is sent; the request is only logged.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) {
	norm := normalizeEmail(email)
	exists := true
	if _, err := s.store.Queries().GetUserByEmail(ctx, norm); err != nil {
		exists = false
	}
	s.logger.Info("password reset requested",
		zap.String("email", norm),
		zap.Bool("known_account", exists),
	)
}

// Delete removes the account row. Orders, fund requests and messages keep
// the email they were written with.
func (s *UserService) Delete(ctx context.Context, email, actorEmail string) error {
	norm := normalizeEmail(email)
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if err := q.DeleteUser(ctx, norm); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "user", norm, actorEmail, "delete_user", "", "")
	})
	if err != nil {
		return err
	}
	if current, ok := s.sessions.Current(); ok && strings.EqualFold(current.Email, norm) {
		s.sessions.Clear()
	}
	return nil
}

func (s *UserService) refreshed(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Queries().GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.sessions.Refresh(email, *user)
	return user, nil
}
