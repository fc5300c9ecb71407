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

type firestoreSwapRepository struct {
	client *firestore.Client
}

func NewFirestoreSwapRepository(client *firestore.Client) repository.SwapRepository {
	return &firestoreSwapRepository{
		client: client,
	}
}

func (r *firestoreSwapRepository) swapDoc(id string) *firestore.DocumentRef {
	return r.client.Collection("swaps").Doc(id)
}

func (r *firestoreSwapRepository) Create(ctx context.Context, swap *entity.Swap) error {
	if swap.ID == "" {
		swap.ID = uuid.New().String()
	}

	now := time.Now()
	swap.CreatedAt = now
	swap.UpdatedAt = now

	_, err := r.swapDoc(swap.ID).Set(ctx, swap)
	if err != nil {
		return errors.Internal("Failed to create swap", err)
	}

	return nil
}

func (r *firestoreSwapRepository) GetByID(ctx context.Context, id string) (*entity.Swap, error) {
	doc, err := r.swapDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Swap", err)
		}
		return nil, errors.Internal("Failed to get swap", err)
	}

	var swap entity.Swap
	if err := doc.DataTo(&swap); err != nil {
		return nil, errors.Internal("Failed to parse swap data", err)
	}

	return &swap, nil
}

func (r *firestoreSwapRepository) ListByParticipant(ctx context.Context, uid string, limit, offset int) ([]*entity.Swap, int64, error) {
	query := r.client.Collection("swaps").Where("participants", "array-contains", uid).OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching swaps for user %s: %v", uid, err)
		return nil, 0, errors.Internal("Failed to fetch swaps", err)
	}

	total := int64(len(allDocs))

	start := offset
	end := len(allDocs)
	if limit > 0 {
		end = start + limit
		if end > len(allDocs) {
			end = len(allDocs)
		}
	}
	if start > len(allDocs) {
		start = len(allDocs)
	}

	var swaps []*entity.Swap
	for i := start; i < end; i++ {
		var swap entity.Swap
		if err := allDocs[i].DataTo(&swap); err != nil {
			log.Printf("Error parsing swap data for user %s: %v", uid, err)
			continue // Skip bad data instead of failing
		}
		swaps = append(swaps, &swap)
	}

	return swaps, total, nil
}

func (r *firestoreSwapRepository) ListStale(ctx context.Context, before time.Time, statuses []string, pageSize int, cursor string) ([]*entity.Swap, string, error) {
	query := r.client.Collection("swaps").
		Where("status", "in", statuses).
		Where("createdAt", "<", before).
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
	var swaps []*entity.Swap

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", errors.Internal("Failed to iterate stale swaps", err)
		}

		var swap entity.Swap
		if err := doc.DataTo(&swap); err != nil {
			log.Printf("Error parsing stale swap %s: %v", doc.Ref.ID, err)
			continue
		}
		swaps = append(swaps, &swap)
	}

	next := ""
	if len(swaps) == pageSize {
		next = swaps[len(swaps)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	return swaps, next, nil
}

func (r *firestoreSwapRepository) Delete(ctx context.Context, id string) error {
	_, err := r.swapDoc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete swap", err)
	}

	return nil
}

func (r *firestoreSwapRepository) SetStatus(ctx context.Context, id, status string) error {
	_, err := r.swapDoc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update swap status", err)
	}

	return nil
}

func (r *firestoreSwapRepository) SetAddressConfirmed(ctx context.Context, id, uid, formattedAddress string) error {
	swap, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	partyField := "offeredBy"
	if uid == swap.RequestedFrom.UID {
		partyField = "requestedFrom"
	} else if uid != swap.OfferedBy.UID {
		return errors.BadRequest("User is not a swap participant", nil)
	}

	// One Update call so the flag and the address snapshot land together.
	_, err = r.swapDoc(id).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{partyField, "formattedAddress"}, Value: formattedAddress},
		{FieldPath: firestore.FieldPath{"addressConfirmation", uid}, Value: true},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to confirm address", err)
	}

	return nil
}

func (r *firestoreSwapRepository) SetShipmentConfirmed(ctx context.Context, id, uid, trackingNumber string, at time.Time) error {
	updates := []firestore.Update{
		{FieldPath: firestore.FieldPath{"shipmentStatus", uid}, Value: true},
		{FieldPath: firestore.FieldPath{"confirmationTimestamps", uid}, Value: at},
		{Path: "updatedAt", Value: time.Now()},
	}

	// A confirmation without a tracking number is valid and stays
	// distinguishable: the flag is set, the trackingNumbers entry is absent.
	if trackingNumber != "" {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"trackingNumbers", uid}, Value: trackingNumber,
		})
	}

	_, err := r.swapDoc(id).Update(ctx, updates)
	if err != nil {
		return errors.Internal("Failed to confirm shipment", err)
	}

	return nil
}

func (r *firestoreSwapRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	_, err := r.swapDoc(message.SwapID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreSwapRepository) CreateMessageIfAbsent(ctx context.Context, message *entity.Message) error {
	message.CreatedAt = time.Now()

	_, err := r.swapDoc(message.SwapID).Collection("messages").Doc(message.ID).Create(ctx, message)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.AlreadyExists("System message", err)
		}
		return errors.Internal("Failed to create system message", err)
	}

	return nil
}

func (r *firestoreSwapRepository) GetMessageByID(ctx context.Context, swapID, messageID string) (*entity.Message, error) {
	doc, err := r.swapDoc(swapID).Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreSwapRepository) UpdateMessage(ctx context.Context, swapID string, message *entity.Message) error {
	_, err := r.swapDoc(swapID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreSwapRepository) ListMessages(ctx context.Context, swapID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.swapDoc(swapID).Collection("messages").OrderBy("createdAt", firestore.Desc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for swap %s: %v", swapID, err)
		return nil, 0, errors.Internal("Failed to count messages for swap", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for swap %s: %v", swapID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for swap %s: %v", swapID, err)
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreSwapRepository) AddMessageReader(ctx context.Context, swapID, messageID, uid string) (bool, error) {
	docRef := r.swapDoc(swapID).Collection("messages").Doc(messageID)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Message may have been deleted with its swap - silently skip
			log.Printf("AddMessageReader: Message %s not found in swap %s (may be old/deleted)", messageID, swapID)
			return false, nil
		}
		return false, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return false, errors.Internal("Failed to parse message data", err)
	}

	for _, reader := range message.ReadBy {
		if reader == uid {
			return false, nil // Already marked as read
		}
	}

	_, err = docRef.Update(ctx, []firestore.Update{
		{Path: "readBy", Value: firestore.ArrayUnion(uid)},
	})
	if err != nil {
		return false, errors.Internal("Failed to update message read status", err)
	}

	return true, nil
}

func (r *firestoreSwapRepository) DeleteMessagesBatch(ctx context.Context, swapID string, batchSize int) (int, error) {
	return r.deleteChildBatch(ctx, r.swapDoc(swapID).Collection("messages"), batchSize)
}

func (r *firestoreSwapRepository) DeletePresenceBatch(ctx context.Context, swapID string, batchSize int) (int, error) {
	return r.deleteChildBatch(ctx, r.swapDoc(swapID).Collection("presence"), batchSize)
}

func (r *firestoreSwapRepository) deleteChildBatch(ctx context.Context, coll *firestore.CollectionRef, batchSize int) (int, error) {
	docs, err := coll.Limit(batchSize).Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to list documents for deletion", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			log.Printf("BulkWriter delete enqueue failed for %s: %v", doc.Ref.Path, err)
			continue
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			log.Printf("BulkWriter delete failed: %v", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

func (r *firestoreSwapRepository) SetPresence(ctx context.Context, swapID string, presence *entity.Presence) error {
	_, err := r.swapDoc(swapID).Collection("presence").Doc(presence.UID).Set(ctx, presence)
	if err != nil {
		return errors.Internal("Failed to set presence", err)
	}

	return nil
}

func (r *firestoreSwapRepository) GetPresence(ctx context.Context, swapID, uid string) (*entity.Presence, error) {
	doc, err := r.swapDoc(swapID).Collection("presence").Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil // No record means not viewing
		}
		return nil, errors.Internal("Failed to get presence", err)
	}

	var presence entity.Presence
	if err := doc.DataTo(&presence); err != nil {
		return nil, errors.Internal("Failed to parse presence data", err)
	}

	return &presence, nil
}
