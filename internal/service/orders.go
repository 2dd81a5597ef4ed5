package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/gateway"
	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/observability"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/session"
)

// OrderService places orders into the ledger and moves them through their
// statuses. New orders always start Pending regardless of what the caller
// supplies.
type OrderService struct {
	store    QueryStore
	sessions *session.Manager
	bus      *events.Bus
	audit    *AuditService
	cards    gateway.CardGateway
}

func NewOrderService(store QueryStore, sessions *session.Manager, bus *events.Bus, audit *AuditService, cards gateway.CardGateway) *OrderService {
	return &OrderService{
		store:    store,
		sessions: sessions,
		bus:      bus,
		audit:    audit,
		cards:    cards,
	}
}

// PlaceOrderInput carries everything an order row needs. PlatformID is the
// catalog key; for fund top-up orders it is ignored and the internal
// transfer platform is recorded instead.
type PlaceOrderInput struct {
	PlatformID string
	Service    string
	Link       string
	Quantity   int64
	CostMicros int64
	FundTopUp  bool
}

func (s *OrderService) Place(ctx context.Context, userEmail string, in PlaceOrderInput) (*models.Order, error) {
	platformID := in.PlatformID
	if in.FundTopUp {
		platformID = domain.PlatformFundTransfer
	} else if platformID == "" {
		platformID = domain.PlatformUnknown
	}

	order := &models.Order{
		ID:         newID(domain.OrderIDPrefix),
		UserEmail:  normalizeEmail(userEmail),
		PlatformID: platformID,
		Service:    in.Service,
		Link:       in.Link,
		Quantity:   in.Quantity,
		CostMicros: in.CostMicros,
		Status:     domain.OrderStatusPending,
	}
	if err := s.store.Queries().InsertOrder(ctx, order); err != nil {
		return nil, err
	}

	observability.IncrementOrderPlaced(platformID)
	s.publish(ctx, events.TypeOrderPlaced, order,
		fmt.Sprintf("New order %s placed by %s", order.ID, order.UserEmail))
	return order, nil
}

// PlaceWithCard charges the card gateway first and only records the order
// once the charge succeeds. The user's balance is untouched.
func (s *OrderService) PlaceWithCard(ctx context.Context, userEmail string, in PlaceOrderInput) (*models.Order, error) {
	ref, err := s.cards.Charge(ctx, userEmail, in.CostMicros)
	if err != nil {
		return nil, fmt.Errorf("card charge: %w", err)
	}
	order, err := s.Place(ctx, userEmail, in)
	if err != nil {
		return nil, err
	}
	err = s.store.RunInTx(ctx, func(q *repository.Queries) error {
		return s.audit.Write(ctx, q, "order", order.ID, order.UserEmail, "card_charge", "", ref)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// PlaceFromBalance validates against the catalog, debits the user and
// inserts the order in one transaction. Used by the key-authenticated API.
func (s *OrderService) PlaceFromBalance(ctx context.Context, userEmail, platformID, serviceID string, quantity int64, link string) (*models.Order, error) {
	svc, err := s.store.Queries().GetService(ctx, platformID, serviceID)
	if err != nil {
		return nil, err
	}
	if quantity < svc.MinQuantity || quantity > svc.MaxQuantity {
		return nil, fmt.Errorf("%w: quantity %d outside [%d, %d]",
			models.ErrOutOfRange, quantity, svc.MinQuantity, svc.MaxQuantity)
	}
	cost := domain.OrderCost(quantity, svc.PricePer1000)

	norm := normalizeEmail(userEmail)
	order := &models.Order{
		ID:         newID(domain.OrderIDPrefix),
		UserEmail:  norm,
		PlatformID: platformID,
		Service:    svc.Name,
		Link:       link,
		Quantity:   quantity,
		CostMicros: cost.Amount,
		Status:     domain.OrderStatusPending,
	}

	err = s.store.RunInTx(ctx, func(q *repository.Queries) error {
		user, err := q.GetUserByEmail(ctx, norm)
		if err != nil {
			return err
		}
		if user.BalanceMicros < cost.Amount {
			return models.ErrInsufficientBalance
		}
		if err := q.UpdateBalance(ctx, norm, user.BalanceMicros-cost.Amount); err != nil {
			return err
		}
		return q.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if user, err := s.store.Queries().GetUserByEmail(ctx, norm); err == nil {
		s.sessions.Refresh(norm, *user)
	}
	observability.IncrementOrderPlaced(platformID)
	s.publish(ctx, events.TypeOrderPlaced, order,
		fmt.Sprintf("New order %s placed by %s", order.ID, order.UserEmail))
	return order, nil
}

// SetStatus overwrites an order's status. Any known status can replace any
// other; there is no transition graph for orders.
func (s *OrderService) SetStatus(ctx context.Context, orderID, status, actorEmail string) (*models.Order, error) {
	if !domain.IsOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown order status %q", models.ErrInvalidState, status)
	}

	var order *models.Order
	err := s.store.RunInTx(ctx, func(q *repository.Queries) error {
		var err error
		order, err = q.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		prev := order.Status
		if prev == status {
			return nil
		}
		if err := q.UpdateOrderStatus(ctx, orderID, status); err != nil {
			return err
		}
		order.Status = status
		return s.audit.Write(ctx, q, "order", orderID, actorEmail, "set_status", prev, status)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeOrderStatusChanged, order,
		fmt.Sprintf("Order %s is now %s", order.ID, order.Status))
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.store.Queries().GetOrder(ctx, orderID)
}

// GetForOwner hides orders that belong to someone else behind a not-found,
// so the existence of a foreign order id leaks nothing.
func (s *OrderService) GetForOwner(ctx context.Context, orderID, ownerEmail string) (*models.Order, error) {
	order, err := s.store.Queries().GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(order.UserEmail, ownerEmail) {
		return nil, models.ErrNotFound
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, email string) ([]models.Order, error) {
	return s.store.Queries().ListOrdersForUser(ctx, normalizeEmail(email))
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.store.Queries().ListAllOrders(ctx)
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order, message string) {
	observability.IncrementEventPublished(eventType)
	s.bus.Publish(ctx, events.Event{
		Type:      eventType,
		Message:   message,
		UserEmail: order.UserEmail,
		EntityID:  order.ID,
	})
}
