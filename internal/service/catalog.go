package service

import (
	"context"
	"fmt"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/repository"
)

// CatalogService reads the platform price list and applies admin edits to
// it and to the bank accounts shown for manual transfers.
type CatalogService struct {
	store QueryStore
	audit *AuditService
}

func NewCatalogService(store QueryStore, audit *AuditService) *CatalogService {
	return &CatalogService{store: store, audit: audit}
}

func (s *CatalogService) Platforms(ctx context.Context) (map[string]models.Platform, error) {
	return s.store.Queries().ListPlatforms(ctx)
}

func (s *CatalogService) Platform(ctx context.Context, platformID string) (*models.Platform, error) {
	return s.store.Queries().GetPlatform(ctx, platformID)
}

// Quote resolves a service and prices a quantity against it without
// touching any balance.
func (s *CatalogService) Quote(ctx context.Context, platformID, serviceID string, quantity int64) (*models.Service, int64, error) {
	svc, err := s.store.Queries().GetService(ctx, platformID, serviceID)
	if err != nil {
		return nil, 0, err
	}
	if quantity < svc.MinQuantity || quantity > svc.MaxQuantity {
		return nil, 0, fmt.Errorf("%w: quantity %d outside [%d, %d]",
			models.ErrOutOfRange, quantity, svc.MinQuantity, svc.MaxQuantity)
	}
	return svc, domain.OrderCost(quantity, svc.PricePer1000).Amount, nil
}

// UpdatePrice changes one service's per-thousand price and nothing else.
func (s *CatalogService) UpdatePrice(ctx context.Context, platformID, serviceID string, priceMicros int64, actorEmail string) error {
	if priceMicros < 0 {
		return fmt.Errorf("%w: price must not be negative", models.ErrOutOfRange)
	}
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if err := q.UpdateServicePrice(ctx, platformID, serviceID, priceMicros); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "service", platformID+"/"+serviceID, actorEmail,
			"update_price", "", fmt.Sprintf("%d", priceMicros))
	})
}

func (s *CatalogService) PaymentSettings(ctx context.Context) (*models.PaymentSettings, error) {
	return s.store.Queries().GetPaymentSettings(ctx)
}

// ReplaceBanks swaps the whole bank list. Duplicate bank ids in the new
// list are rejected before anything is written.
func (s *CatalogService) ReplaceBanks(ctx context.Context, banks []models.Bank, actorEmail string) error {
	seen := make(map[string]struct{}, len(banks))
	for _, bank := range banks {
		if bank.ID == "" {
			return fmt.Errorf("bank id is required")
		}
		if _, dup := seen[bank.ID]; dup {
			return fmt.Errorf("%w: %s", models.ErrDuplicateBankID, bank.ID)
		}
		seen[bank.ID] = struct{}{}
	}
	return s.store.RunInTx(ctx, func(q *repository.Queries) error {
		if err := q.ReplaceBanks(ctx, banks); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "payment_settings", "banks", actorEmail,
			"replace_banks", "", fmt.Sprintf("%d banks", len(banks)))
	})
}
