package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/pkg/errors"
)

type firestoreListingRepository struct {
	client *firestore.Client
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client: client,
	}
}

func (r *firestoreListingRepository) listingDoc(id string) *firestore.DocumentRef {
	return r.client.Collection("listings").Doc(id)
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	_, err := r.listingDoc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.listingDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}

	return &listing, nil
}

func (r *firestoreListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	listing.UpdatedAt = time.Now()

	_, err := r.listingDoc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to update listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) ListByOwner(ctx context.Context, ownerUID string, pageSize int, cursor string) ([]*entity.Listing, string, error) {
	query := r.client.Collection("listings").
		Where("ownerUid", "==", ownerUID).
		OrderBy("createdAt", firestore.Asc).
		Limit(pageSize)

	if cursor != "" {
		after, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", errors.BadRequest("Invalid cursor", err)
		}
		query = query.StartAfter(after)
	}

	iter := query.Documents(ctx)
	var listings []*entity.Listing

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", errors.Internal("Failed to iterate listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			log.Printf("Error parsing listing data for %s: %v", doc.Ref.ID, err)
			continue
		}
		listing.ID = doc.Ref.ID
		listings = append(listings, &listing)
	}

	next := ""
	if len(listings) == pageSize {
		next = listings[len(listings)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return listings, next, nil
}

func (r *firestoreListingRepository) BulkSetOwnerTier(ctx context.Context, listingIDs []string, isPremium, isIdVerified bool, priority int) (int, int, error) {
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(listingIDs))

	for _, id := range listingIDs {
		job, err := bw.Update(r.listingDoc(id), []firestore.Update{
			{Path: "ownerIsPremium", Value: isPremium},
			{Path: "ownerIsIdVerified", Value: isIdVerified},
			{Path: "ownerPriority", Value: priority},
			{Path: "updatedAt", Value: time.Now()},
		})
		if err != nil {
			log.Printf("BulkWriter tier enqueue failed for listing %s: %v", id, err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	succeeded := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Printf("BulkWriter tier update failed: %v", err)
			continue
		}
		succeeded++
	}

	return succeeded, len(listingIDs) - succeeded, nil
}
