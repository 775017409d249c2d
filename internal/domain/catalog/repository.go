package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/billing/backend/internal/domain/shared"
)

// ItemRepository defines the persistence interface for catalog items
type ItemRepository interface {
	Save(ctx context.Context, item *Item) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	FindByIDsForTenant(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Item, error)
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Item, int64, error)

	// AdjustStock applies a signed stock delta as a single conditional
	// update. Negative deltas that would drive stock below zero fail
	// with shared.ErrInsufficientStock; an unknown item fails with
	// shared.ErrNotFound.
	AdjustStock(ctx context.Context, tenantID, itemID uuid.UUID, delta int64) error
}

// PartyRepository defines the persistence interface for parties
type PartyRepository interface {
	Save(ctx context.Context, party *Party) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Party, error)
	FindForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]*Party, int64, error)
	ExistsForTenant(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}
