package repository

import (
	"context"
	"time"

	"scentswap/internal/domain/entity"
)

type SwapRepository interface {
	Create(ctx context.Context, swap *entity.Swap) error
	GetByID(ctx context.Context, id string) (*entity.Swap, error)
	ListByParticipant(ctx context.Context, uid string, limit, offset int) ([]*entity.Swap, int64, error)

	// ListStale pages through swaps in the given statuses created before the
	// threshold, ordered by creation time. The returned cursor is empty when
	// the scan is exhausted.
	ListStale(ctx context.Context, before time.Time, statuses []string, pageSize int, cursor string) ([]*entity.Swap, string, error)

	Delete(ctx context.Context, id string) error

	// Transition writes. Each applies all of its fields in a single atomic call.
	SetStatus(ctx context.Context, id, status string) error
	SetAddressConfirmed(ctx context.Context, id, uid, formattedAddress string) error
	SetShipmentConfirmed(ctx context.Context, id, uid, trackingNumber string, at time.Time) error

	CreateMessage(ctx context.Context, message *entity.Message) error

	// CreateMessageIfAbsent writes the message only if no document exists at
	// its ID, returning an ALREADY_EXISTS error otherwise.
	CreateMessageIfAbsent(ctx context.Context, message *entity.Message) error

	GetMessageByID(ctx context.Context, swapID, messageID string) (*entity.Message, error)
	UpdateMessage(ctx context.Context, swapID string, message *entity.Message) error
	ListMessages(ctx context.Context, swapID string, limit, offset int) ([]*entity.Message, int64, error)

	// AddMessageReader appends uid to the message's readBy set. Returns true
	// if uid was newly added, false if it was already present.
	AddMessageReader(ctx context.Context, swapID, messageID, uid string) (bool, error)

	// Bounded sub-collection deletes for the cleanup job; each call removes at
	// most batchSize documents and reports how many it removed.
	DeleteMessagesBatch(ctx context.Context, swapID string, batchSize int) (int, error)
	DeletePresenceBatch(ctx context.Context, swapID string, batchSize int) (int, error)

	SetPresence(ctx context.Context, swapID string, presence *entity.Presence) error
	GetPresence(ctx context.Context, swapID, uid string) (*entity.Presence, error)
}
