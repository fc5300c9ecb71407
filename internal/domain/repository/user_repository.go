package repository

import (
	"context"
	"time"

	"scentswap/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	SetFormattedAddress(ctx context.Context, uid, formattedAddress string) error
	SetTierFlags(ctx context.Context, uid string, isPremium, isIdVerified bool) error

	// Opportunistic counter adjustments; the reconciliation jobs own these
	// values for correctness purposes.
	IncrementUnreadCount(ctx context.Context, uid string, delta int) error
	SetUnreadCount(ctx context.Context, uid string, count int, checkedAt time.Time) error
	AddUnreadConversation(ctx context.Context, uid, swapID string) error
	RemoveUnreadConversation(ctx context.Context, uid, swapID string) error
	IncrementMonthlySwapCount(ctx context.Context, uid string, delta int) error

	// ListPage pages through all users ordered by creation time. The returned
	// cursor is empty when the scan is exhausted.
	ListPage(ctx context.Context, pageSize int, cursor string) ([]*entity.User, string, error)

	// ListWithMonthlySwaps returns up to pageSize users whose monthly swap
	// counter is non-zero. There is no cursor: the reset job zeroes counters
	// as it processes, so repeating this query walks the whole set.
	ListWithMonthlySwaps(ctx context.Context, pageSize int) ([]*entity.User, error)

	// BulkResetMonthlyCounts zeroes the monthly counter for the given users
	// through the store's bulk writer, reporting per-item outcomes.
	BulkResetMonthlyCounts(ctx context.Context, uids []string) (succeeded, failed int, err error)
}
