package service

import (
	"context"
	"fmt"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/gateway"
	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/observability"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/session"
)

// FundService files manual fund transfer requests and settles them. An
// approval credits the requester's balance in the same transaction that
// flips the status, so a failed credit leaves the request Pending.
type FundService struct {
	store    QueryStore
	sessions *session.Manager
	bus      *events.Bus
	audit    *AuditService
	cards    gateway.CardGateway
	orders   *OrderService
}

func NewFundService(store QueryStore, sessions *session.Manager, bus *events.Bus, audit *AuditService, cards gateway.CardGateway, orders *OrderService) *FundService {
	return &FundService{
		store:    store,
		sessions: sessions,
		bus:      bus,
		audit:    audit,
		cards:    cards,
		orders:   orders,
	}
}

// File records a bank transfer claim awaiting admin review. The bank is
// resolved by id so its display name is frozen into the request.
func (s *FundService) File(ctx context.Context, userEmail string, amountMicros int64, bankID, proofImage string) (*models.FundTransferRequest, error) {
	if amountMicros <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrOutOfRange)
	}
	bank, err := s.store.Queries().GetBank(ctx, bankID)
	if err != nil {
		return nil, err
	}

	req := &models.FundTransferRequest{
		ID:           newID(domain.FundIDPrefix),
		UserEmail:    normalizeEmail(userEmail),
		AmountMicros: amountMicros,
		BankID:       bank.ID,
		BankName:     bank.Name,
		ProofImage:   proofImage,
		Status:       domain.FundStatusPending,
	}
	if err := s.store.Queries().InsertFundRequest(ctx, req); err != nil {
		return nil, err
	}

	observability.IncrementEventPublished(events.TypeFundRequestFiled)
	s.bus.Publish(ctx, events.Event{
		Type:      events.TypeFundRequestFiled,
		Message:   fmt.Sprintf("Fund transfer request %s filed by %s", req.ID, req.UserEmail),
		UserEmail: req.UserEmail,
		EntityID:  req.ID,
	})
	return req, nil
}

// TopUpWithCard charges the gateway and credits the balance immediately,
// recording an internal transfer order as the receipt.
func (s *FundService) TopUpWithCard(ctx context.Context, userEmail string, amountMicros int64) (*models.Order, error) {
	if amountMicros <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", models.ErrOutOfRange)
	}
	norm := normalizeEmail(userEmail)
	ref, err := s.cards.Charge(ctx, norm, amountMicros)
	if err != nil {
		return nil, fmt.Errorf("card charge: %w", err)
	}

	err = s.store.RunInTx(ctx, func(q *repository.Queries) error {
		user, err := q.GetUserByEmail(ctx, norm)
		if err != nil {
			return err
		}
		if err := q.UpdateBalance(ctx, norm, user.BalanceMicros+amountMicros); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "user", norm, norm, "card_top_up", "", ref)
	})
	if err != nil {
		return nil, err
	}

	if user, err := s.store.Queries().GetUserByEmail(ctx, norm); err == nil {
		s.sessions.Refresh(norm, *user)
	}
	return s.orders.Place(ctx, norm, PlaceOrderInput{
		Service:    "Add Funds (Card)",
		Link:       ref,
		Quantity:   1,
		CostMicros: amountMicros,
		FundTopUp:  true,
	})
}

// Decide settles a pending request. Approving credits the requester inside
// the same transaction; deciding an already-settled request fails with
// ErrInvalidState and changes nothing.
func (s *FundService) Decide(ctx context.Context, requestID, decision, actorEmail string) (*models.FundTransferRequest, error) {
	if !domain.IsFundDecision(decision) {
		return nil, fmt.Errorf("%w: unknown decision %q", models.ErrInvalidState, decision)
	}

	var req *models.FundTransferRequest
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		var err error
		req, err = q.GetFundRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if !canDecideFund(req.Status, decision) {
			return fmt.Errorf("%w: request %s is already %s", models.ErrInvalidState, req.ID, req.Status)
		}

		if decision == domain.FundStatusApproved {
			user, err := q.GetUserByEmail(ctx, req.UserEmail)
			if err != nil {
				return fmt.Errorf("credit requester: %w", err)
			}
			if err := q.UpdateBalance(ctx, req.UserEmail, user.BalanceMicros+req.AmountMicros); err != nil {
				return fmt.Errorf("credit requester: %w", err)
			}
		}

		if err := q.DecideFundRequest(ctx, req.ID, decision); err != nil {
			return err
		}
		prev := req.Status
		req.Status = decision
		return s.audit.Write(ctx, q, "fund_request", req.ID, actorEmail, "decide", prev, decision)
	})
	if err != nil {
		return nil, err
	}

	if user, err := s.store.Queries().GetUserByEmail(ctx, req.UserEmail); err == nil {
		s.sessions.Refresh(req.UserEmail, *user)
	}
	observability.IncrementFundDecision(decision)
	observability.IncrementEventPublished(events.TypeFundRequestDecided)
	s.bus.Publish(ctx, events.Event{
		Type:      events.TypeFundRequestDecided,
		Message:   fmt.Sprintf("Fund transfer request %s %s", req.ID, req.Status),
		UserEmail: req.UserEmail,
		EntityID:  req.ID,
	})
	return req, nil
}

func (s *FundService) Get(ctx context.Context, requestID string) (*models.FundTransferRequest, error) {
	return s.store.Queries().GetFundRequest(ctx, requestID)
}

func (s *FundService) ListForUser(ctx context.Context, email string) ([]models.FundTransferRequest, error) {
	return s.store.Queries().ListFundRequestsForUser(ctx, normalizeEmail(email))
}

func (s *FundService) ListAll(ctx context.Context) ([]models.FundTransferRequest, error) {
	return s.store.Queries().ListAllFundRequests(ctx)
}
