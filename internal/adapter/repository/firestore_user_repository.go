package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) userDoc(id string) *firestore.DocumentRef {
	return r.client.Collection("users").Doc(id)
}

func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.userDoc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to create user", err)
	}

	return nil
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.userDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}

	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.userDoc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetFormattedAddress(ctx context.Context, uid, formattedAddress string) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "formattedAddress", Value: formattedAddress},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update user address", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetTierFlags(ctx context.Context, uid string, isPremium, isIdVerified bool) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "isPremium", Value: isPremium},
		{Path: "isIdVerified", Value: isIdVerified},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update user tier flags", err)
	}

	return nil
}

func (r *firestoreUserRepository) IncrementUnreadCount(ctx context.Context, uid string, delta int) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "unreadMessagesCount", Value: firestore.Increment(delta)},
	})
	if err != nil {
		return errors.Internal("Failed to adjust unread count", err)
	}

	return nil
}

func (r *firestoreUserRepository) SetUnreadCount(ctx context.Context, uid string, count int, checkedAt time.Time) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "unreadMessagesCount", Value: count},
		{Path: "countsCheckedAt", Value: checkedAt},
	})
	if err != nil {
		return errors.Internal("Failed to overwrite unread count", err)
	}

	return nil
}

func (r *firestoreUserRepository) AddUnreadConversation(ctx context.Context, uid, swapID string) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "unreadConversations", Value: firestore.ArrayUnion(swapID)},
	})
	if err != nil {
		return errors.Internal("Failed to add unread conversation", err)
	}

	return nil
}

func (r *firestoreUserRepository) RemoveUnreadConversation(ctx context.Context, uid, swapID string) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "unreadConversations", Value: firestore.ArrayRemove(swapID)},
	})
	if err != nil {
		return errors.Internal("Failed to remove unread conversation", err)
	}

	return nil
}

func (r *firestoreUserRepository) IncrementMonthlySwapCount(ctx context.Context, uid string, delta int) error {
	_, err := r.userDoc(uid).Update(ctx, []firestore.Update{
		{Path: "monthlySwapCount", Value: firestore.Increment(delta)},
	})
	if err != nil {
		return errors.Internal("Failed to adjust monthly swap count", err)
	}

	return nil
}

func (r *firestoreUserRepository) ListPage(ctx context.Context, pageSize int, cursor string) ([]*entity.User, string, error) {
	query := r.client.Collection("users").OrderBy("createdAt", firestore.Asc).Limit(pageSize)
	return r.listUsers(ctx, query, pageSize, cursor)
}

// ListWithMonthlySwaps deliberately carries no cursor. The inequality filter
// forces the order onto monthlySwapCount, and createdAt is not monotonic under
// that ordering, so a createdAt cursor would skip users whose createdAt
// precedes an earlier page's tail. The reset job zeroes each processed
// counter, which removes it from this query's result set; repeating the first
// page therefore visits every matching user.
func (r *firestoreUserRepository) ListWithMonthlySwaps(ctx context.Context, pageSize int) ([]*entity.User, error) {
	query := r.client.Collection("users").
		Where("monthlySwapCount", ">", 0).
		OrderBy("monthlySwapCount", firestore.Asc).
		Limit(pageSize)
	users, _, err := r.collectUsers(ctx, query, pageSize)
	return users, err
}

func (r *firestoreUserRepository) listUsers(ctx context.Context, query firestore.Query, pageSize int, cursor string) ([]*entity.User, string, error) {
	if cursor != "" {
		after, err := time.Parse(time.RFC3339Nano, cursor)
		if err != nil {
			return nil, "", errors.BadRequest("Invalid cursor", err)
		}
		query = query.StartAfter(after)
	}

	return r.collectUsers(ctx, query, pageSize)
}

func (r *firestoreUserRepository) collectUsers(ctx context.Context, query firestore.Query, pageSize int) ([]*entity.User, string, error) {
	iter := query.Documents(ctx)
	var users []*entity.User

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Error parsing user data for %s: %v", doc.Ref.ID, err)
			continue
		}
		user.ID = doc.Ref.ID
		users = append(users, &user)
	}

	next := ""
	if len(users) == pageSize {
		next = users[len(users)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return users, next, nil
}

func (r *firestoreUserRepository) BulkResetMonthlyCounts(ctx context.Context, uids []string) (int, int, error) {
	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(uids))

	for _, uid := range uids {
		job, err := bw.Update(r.userDoc(uid), []firestore.Update{
			{Path: "monthlySwapCount", Value: 0},
		})
		if err != nil {
			log.Printf("BulkWriter reset enqueue failed for user %s: %v", uid, err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	succeeded := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Printf("BulkWriter monthly reset failed: %v", err)
			continue
		}
		succeeded++
	}

	return succeeded, len(uids) - succeeded, nil
}
