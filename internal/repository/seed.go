package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Seed lazily populates empty collections with the storefront defaults:
// two users, three sample orders, the four-platform catalog and the four
// default banks. Calling it again is a no-op for already-seeded tables.
func (s *Store) Seed(ctx context.Context) error {
	return s.RunInTx(ctx, func(q *Queries) error {
		if err := q.seedUsers(ctx); err != nil {
			return err
		}
		if err := q.seedOrders(ctx); err != nil {
			return err
		}
		if err := q.seedCatalog(ctx); err != nil {
			return err
		}
		return q.seedBanks(ctx)
	})
}

// NewAPIKey mints a user API key in the storefront's sk_ format.
func NewAPIKey() string {
	return domain.APIKeyPrefix + uuid.NewString()
}

func (q *Queries) seedUsers(ctx context.Context) error {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	defaults := []struct {
		email    string
		name     string
		password string
		balance  int64
	}{
		{"test@example.com", "Demo User", "password123", 50_000_000},
		{"admin@example.com", "Admin", "admin123", 9_999_000_000},
	}
	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		user := &models.User{
			Email:         d.email,
			Name:          d.name,
			PasswordHash:  string(hash),
			BalanceMicros: d.balance,
			APIKey:        NewAPIKey(),
		}
		if err := q.CreateUser(ctx, user); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) seedOrders(ctx context.Context) error {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return fmt.Errorf("count orders: %w", err)
	}
	if n > 0 {
		return nil
	}

	day := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	samples := []models.Order{
		{ID: "ORD_MOCK_0", UserEmail: "test@example.com", PlatformID: "instagram", Service: "Followers", Link: "https://instagram.com/testuser", Quantity: 5000, CostMicros: 25_000_000, Status: domain.OrderStatusCompleted, CreatedAt: day("2024-07-20")},
		{ID: "ORD_MOCK_1", UserEmail: "test@example.com", PlatformID: "tiktok", Service: "Views", Link: "https://tiktok.com/@testuser/video/123", Quantity: 100000, CostMicros: 50_000_000, Status: domain.OrderStatusCompleted, CreatedAt: day("2024-07-21")},
		{ID: "ORD_MOCK_2", UserEmail: "test@example.com", PlatformID: "youtube", Service: "Subscribers", Link: "https://youtube.com/channel/test", Quantity: 1000, CostMicros: 25_000_000, Status: domain.OrderStatusInProgress, CreatedAt: day("2024-07-22")},
	}
	for i := range samples {
		if err := q.InsertOrder(ctx, &samples[i]); err != nil {
			return err
		}
	}
	return nil
}

type seedService struct {
	id    string
	name  string
	price int64 // micros per 1000 units
	min   int64
	max   int64
}

func (q *Queries) seedCatalog(ctx context.Context) error {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM platforms`).Scan(&n); err != nil {
		return fmt.Errorf("count platforms: %w", err)
	}
	if n > 0 {
		return nil
	}

	catalog := []struct {
		id          string
		name        string
		placeholder string
		services    []seedService
	}{
		{"instagram", "Instagram", "https://instagram.com/username", []seedService{
			{"followers", "Followers", 5_000_000, 100, 10000},
			{"likes", "Likes", 2_500_000, 50, 5000},
			{"views", "Views", 1_000_000, 100, 100000},
		}},
		{"tiktok", "TikTok", "https://tiktok.com/@username/video/123...", []seedService{
			{"followers", "Followers", 6_000_000, 100, 20000},
			{"likes", "Likes", 3_000_000, 50, 10000},
			{"views", "Views", 500_000, 1000, 1000000},
		}},
		{"youtube", "YouTube", "https://youtube.com/watch?v=...", []seedService{
			{"subscribers", "Subscribers", 25_000_000, 100, 5000},
			{"views", "Views", 4_000_000, 1000, 500000},
			{"likes", "Likes", 10_000_000, 100, 10000},
		}},
		{"facebook", "Facebook", "https://facebook.com/yourpage", []seedService{
			{"page_likes", "Page Likes", 8_000_000, 100, 10000},
			{"post_likes", "Post Likes", 4_000_000, 100, 5000},
			{"views", "Video Views", 2_000_000, 1000, 200000},
		}},
	}

	const insertPlatform = `INSERT INTO platforms (id, name, placeholder, position) VALUES (?, ?, ?, ?)`
	const insertService = `
INSERT INTO services (platform_id, id, name, price_per_1000_micros, min_quantity, max_quantity, position)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	for pi, p := range catalog {
		if _, err := q.db.ExecContext(ctx, insertPlatform, p.id, p.name, p.placeholder, pi); err != nil {
			return fmt.Errorf("seed platform %s: %w", p.id, err)
		}
		for si, svc := range p.services {
			if _, err := q.db.ExecContext(ctx, insertService, p.id, svc.id, svc.name, svc.price, svc.min, svc.max, si); err != nil {
				return fmt.Errorf("seed service %s/%s: %w", p.id, svc.id, err)
			}
		}
	}
	return nil
}

func (q *Queries) seedBanks(ctx context.Context) error {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM banks`).Scan(&n); err != nil {
		return fmt.Errorf("count banks: %w", err)
	}
	if n > 0 {
		return nil
	}

	banks := []models.Bank{
		{ID: "rajhi", Name: "Al Rajhi Bank", IBAN: "SA0380000000608010167519", AccountHolderName: "SocialBoost Est."},
		{ID: "alahli", Name: "SNB AlAhli", IBAN: "SA1110000000123456789012", AccountHolderName: "SocialBoost Est."},
		{ID: "riyad", Name: "Riyad Bank", IBAN: "SA2220000000987654321098", AccountHolderName: "SocialBoost Est."},
		{ID: "alinma", Name: "Alinma Bank", IBAN: "SA3305000000112233445566", AccountHolderName: "SocialBoost Est."},
	}
	return q.ReplaceBanks(ctx, banks)
}
