package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/observability"
)

// IntegrityService verifies ledger invariants that nothing enforces at
// write time.
type IntegrityService struct {
	store QueryStore
}

func NewIntegrityService(store QueryStore) *IntegrityService {
	return &IntegrityService{store: store}
}

// IntegrityReport lists everything the last check found.
type IntegrityReport struct {
	NegativeBalances []string `json:"negative_balances"`
	DuplicateEmails  []string `json:"duplicate_emails"`
	OrphanedOrders   []string `json:"orphaned_orders"`
	PendingOrders    int64    `json:"pending_orders"`
	PendingFunds     int64    `json:"pending_fund_requests"`
}

func (r IntegrityReport) Clean() bool {
	return len(r.NegativeBalances) == 0 && len(r.DuplicateEmails) == 0
}

// Run sweeps the store and reports findings. Orphaned order emails are
// expected after user deletions and do not count against a clean run.
func (s *IntegrityService) Run(ctx context.Context) (IntegrityReport, error) {
	var report IntegrityReport
	queries := s.store.Queries()

	var err error
	if report.NegativeBalances, err = queries.ListNegativeBalanceEmails(ctx); err != nil {
		return report, fmt.Errorf("scan negative balances: %w", err)
	}
	if report.DuplicateEmails, err = queries.ListCaseDuplicateEmails(ctx); err != nil {
		return report, fmt.Errorf("scan duplicate emails: %w", err)
	}
	if report.OrphanedOrders, err = queries.ListOrphanOrderEmails(ctx); err != nil {
		return report, fmt.Errorf("scan orphaned orders: %w", err)
	}
	if report.PendingOrders, err = queries.CountOrdersByStatus(ctx, domain.OrderStatusPending); err != nil {
		return report, fmt.Errorf("count pending orders: %w", err)
	}
	if report.PendingFunds, err = queries.CountFundRequestsByStatus(ctx, domain.FundStatusPending); err != nil {
		return report, fmt.Errorf("count pending fund requests: %w", err)
	}

	for range report.NegativeBalances {
		observability.IncrementIntegrityFinding("negative_balance")
	}
	for range report.DuplicateEmails {
		observability.IncrementIntegrityFinding("duplicate_email")
	}

	if !report.Clean() {
		zap.L().Error("ledger integrity check found problems",
			zap.Strings("negative_balances", report.NegativeBalances),
			zap.Strings("duplicate_emails", report.DuplicateEmails),
		)
	} else {
		zap.L().Info("ledger integrity check clean",
			zap.Int64("pending_orders", report.PendingOrders),
			zap.Int64("pending_fund_requests", report.PendingFunds),
		)
	}
	return report, nil
}
