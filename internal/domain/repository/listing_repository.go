package repository

import (
	"context"

	"scentswap/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	Update(ctx context.Context, listing *entity.Listing) error

	// ListByOwner pages through a user's listings ordered by creation time.
	// The returned cursor is empty when the scan is exhausted.
	ListByOwner(ctx context.Context, ownerUID string, pageSize int, cursor string) ([]*entity.Listing, string, error)

	// BulkSetOwnerTier pushes the denormalized owner attributes onto the given
	// listings through the store's bulk writer, reporting per-item outcomes.
	BulkSetOwnerTier(ctx context.Context, listingIDs []string, isPremium, isIdVerified bool, priority int) (succeeded, failed int, err error)
}
