package usecase

import (
	"context"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/pkg/errors"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewListingUseCase(listingRepo repository.ListingRepository, userRepo repository.UserRepository) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

type CreateListingInput struct {
	Title            string
	Fragrance        string
	Brand            string
	ImageURL         string
	PercentRemaining int
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, ownerUID string, input CreateListingInput) (*entity.Listing, error) {
	owner, err := uc.userRepo.GetByID(ctx, ownerUID)
	if err != nil {
		return nil, err
	}

	listing := &entity.Listing{
		OwnerUID:         owner.ID,
		Title:            input.Title,
		Fragrance:        input.Fragrance,
		Brand:            input.Brand,
		ImageURL:         input.ImageURL,
		PercentRemaining: input.PercentRemaining,
		Status:           entity.ListingStatusActive,

		// Seeded from the owner so a new listing never waits for the
		// propagation job to render correctly.
		OwnerIsPremium:    owner.IsPremium,
		OwnerIsIdVerified: owner.IsIdVerified,
		OwnerPriority:     owner.PriorityRank(),
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	return uc.listingRepo.GetByID(ctx, id)
}

func (uc *ListingUseCase) ListOwn(ctx context.Context, ownerUID string, pageSize int, cursor string) ([]*entity.Listing, string, error) {
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return uc.listingRepo.ListByOwner(ctx, ownerUID, pageSize, cursor)
}

func (uc *ListingUseCase) ArchiveListing(ctx context.Context, ownerUID, id string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.OwnerUID != ownerUID {
		return nil, errors.Forbidden("You can only archive your own listing", nil)
	}

	listing.Status = entity.ListingStatusArchived
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}
