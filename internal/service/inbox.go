package service

import (
	"context"
	"fmt"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/observability"
)

// InboxService delivers admin messages to user inboxes.
type InboxService struct {
	store QueryStore
	bus   *events.Bus
}

func NewInboxService(store QueryStore, bus *events.Bus) *InboxService {
	return &InboxService{store: store, bus: bus}
}

// Send delivers a message to a user's inbox. Messages arrive unread.
func (s *InboxService) Send(ctx context.Context, userEmail, body string) (*models.Message, error) {
	if body == "" {
		return nil, fmt.Errorf("message body is required")
	}
	msg := &models.Message{
		ID:        newID(domain.MessageIDPrefix),
		UserEmail: normalizeEmail(userEmail),
		From:      domain.MessageSenderAdmin,
		Body:      body,
	}
	if err := s.store.Queries().InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	observability.IncrementEventPublished(events.TypeMessageSent)
	s.bus.Publish(ctx, events.Event{
		Type:      events.TypeMessageSent,
		Message:   fmt.Sprintf("Message %s sent to %s", msg.ID, msg.UserEmail),
		UserEmail: msg.UserEmail,
		EntityID:  msg.ID,
	})
	return msg, nil
}

func (s *InboxService) ListForUser(ctx context.Context, email string) ([]models.Message, error) {
	return s.store.Queries().ListMessagesForUser(ctx, normalizeEmail(email))
}

// MarkAllRead flips every unread message for the user and reports how many
// changed. Calling it twice in a row is a no-op the second time.
func (s *InboxService) MarkAllRead(ctx context.Context, email string) (int64, error) {
	return s.store.Queries().MarkAllRead(ctx, normalizeEmail(email))
}

func (s *InboxService) CountUnread(ctx context.Context, email string) (int64, error) {
	return s.store.Queries().CountUnread(ctx, normalizeEmail(email))
}
