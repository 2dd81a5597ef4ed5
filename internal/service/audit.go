package service

import (
	"context"
	"fmt"

	"github.com/socialboost/panel/internal/models"
	"github.com/socialboost/panel/internal/repository"
)

// AuditService writes immutable audit trail entries.
type AuditService struct {
	store QueryStore
}

func NewAuditService(store QueryStore) *AuditService {
	return &AuditService{store: store}
}

// Write stores a single immutable audit record through the caller's queries,
// so an entry written inside a transaction rolls back with it.
func (s *AuditService) Write(ctx context.Context, qtx *repository.Queries, entityType, entityID, actorEmail, action, prevState, nextState string) error {
	entry := &models.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		ActorEmail: actorEmail,
		Action:     action,
		PrevState:  prevState,
		NextState:  nextState,
	}
	if err := qtx.InsertAuditEntry(ctx, entry); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *AuditService) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return s.store.Queries().ListAuditEntries(ctx, limit)
}
