package models

import (
	"errors"
	"time"
)

// Error kinds returned by the ledger. Every failure here is an expected
// outcome the caller recovers from, not a fault.
var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state for operation")
	ErrOutOfRange          = errors.New("quantity outside service bounds")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateBankID     = errors.New("duplicate bank id")
)

// User is keyed by email, stored lowercased. PasswordHash is a bcrypt hash.
type User struct {
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	PasswordHash   string    `json:"-"`
	BalanceMicros  int64     `json:"balance_micros"`
	APIKey         string    `json:"api_key"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Order struct {
	ID         string    `json:"id"`
	UserEmail  string    `json:"user_email"`
	PlatformID string    `json:"platform_id"`
	Service    string    `json:"service"`
	Link       string    `json:"link"`
	Quantity   int64     `json:"quantity"`
	CostMicros int64     `json:"cost_micros"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

type FundTransferRequest struct {
	ID           string    `json:"id"`
	UserEmail    string    `json:"user_email"`
	AmountMicros int64     `json:"amount_micros"`
	BankID       string    `json:"bank_id"`
	BankName     string    `json:"bank_name"`
	ProofImage   string    `json:"proof_image"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	UserEmail string    `json:"user_email"`
	From      string    `json:"from"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is one purchasable offering within a platform, priced per 1000
// units with quantity bounds.
type Service struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PricePer1000 int64  `json:"price_per_1000_micros"`
	MinQuantity  int64  `json:"min"`
	MaxQuantity  int64  `json:"max"`
}

type Platform struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Placeholder string             `json:"placeholder"`
	Services    map[string]Service `json:"services"`
}

type Bank struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	IBAN              string `json:"iban"`
	AccountHolderName string `json:"account_holder_name"`
}

// PaymentSettings is a singleton collection of payout banks.
type PaymentSettings struct {
	Banks []Bank `json:"banks"`
}

// AuditEntry records an admin-driven mutation for the back-office log.
type AuditEntry struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	ActorEmail string    `json:"actor_email,omitempty"`
	Action     string    `json:"action"`
	PrevState  string    `json:"prev_state,omitempty"`
	NextState  string    `json:"next_state,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
