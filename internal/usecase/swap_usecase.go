package usecase

import (
	"context"
	"time"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/internal/domain/service"
	"scentswap/internal/infrastructure/ratelimit"
	ws "scentswap/internal/infrastructure/websocket"
	"scentswap/pkg/errors"
	"scentswap/pkg/logger"
)

// SwapUseCase drives the swap lifecycle. Every transition validates its
// precondition against a fresh read, applies its mutation as one atomic
// repository call, and records the transition as a typed message in the swap's
// conversation. The two confirmation rendezvous (address, shipment) are
// resolved by create-if-absent system messages, never by locks.
type SwapUseCase struct {
	swapRepo    repository.SwapRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	counters    *CounterUseCase
	notifier    service.Notifier
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewSwapUseCase(
	swapRepo repository.SwapRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	counters *CounterUseCase,
	notifier service.Notifier,
	wsManager *ws.Manager,
) *SwapUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &SwapUseCase{
		swapRepo:    swapRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		counters:    counters,
		notifier:    notifier,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type CreateSwapInput struct {
	OfferedListingID   string
	RequestedListingID string
	Note               string
}

type TransitionResult struct {
	Status        string `json:"status"`
	BothConfirmed bool   `json:"both_confirmed,omitempty"`
	BothShipped   bool   `json:"both_shipped,omitempty"`
	SwapCompleted bool   `json:"swap_completed,omitempty"`
}

func partySnapshot(user *entity.User) entity.PartySnapshot {
	return entity.PartySnapshot{
		UID:              user.ID,
		Username:         user.Username,
		PhotoURL:         user.PhotoURL,
		IsPremium:        user.IsPremium,
		IsIdVerified:     user.IsIdVerified,
		FormattedAddress: user.FormattedAddress,
	}
}

func listingSnapshot(listing *entity.Listing) entity.ListingSnapshot {
	return entity.ListingSnapshot{
		ID:               listing.ID,
		Title:            listing.Title,
		Fragrance:        listing.Fragrance,
		Brand:            listing.Brand,
		ImageURL:         listing.ImageURL,
		PercentRemaining: listing.PercentRemaining,
	}
}

func eventSnapshot(swap *entity.Swap) *entity.SwapEventSnapshot {
	return &entity.SwapEventSnapshot{
		OfferedBy:        swap.OfferedBy,
		RequestedFrom:    swap.RequestedFrom,
		OfferedListing:   swap.OfferedListing,
		RequestedListing: swap.RequestedListing,
	}
}

func (uc *SwapUseCase) CreateSwap(ctx context.Context, actorUID string, input CreateSwapInput) (*entity.Swap, error) {
	allowed, waitTime := uc.rateLimiter.Allow(actorUID, "create_swap")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before requesting another swap", waitTime)
	}

	offered, err := uc.listingRepo.GetByID(ctx, input.OfferedListingID)
	if err != nil {
		return nil, err
	}
	requested, err := uc.listingRepo.GetByID(ctx, input.RequestedListingID)
	if err != nil {
		return nil, err
	}

	if offered.OwnerUID != actorUID {
		return nil, errors.Forbidden("You can only offer your own listing", nil)
	}
	if requested.OwnerUID == actorUID {
		return nil, errors.BadRequest("You cannot request a swap with yourself", nil)
	}
	if offered.Status != entity.ListingStatusActive || requested.Status != entity.ListingStatusActive {
		return nil, errors.BadRequest("Both listings must be active", nil)
	}

	offeror, err := uc.userRepo.GetByID(ctx, actorUID)
	if err != nil {
		return nil, err
	}
	counterparty, err := uc.userRepo.GetByID(ctx, requested.OwnerUID)
	if err != nil {
		return nil, err
	}

	swap := &entity.Swap{
		Status:           entity.SwapStatusRequested,
		OfferedBy:        partySnapshot(offeror),
		RequestedFrom:    partySnapshot(counterparty),
		OfferedListing:   listingSnapshot(offered),
		RequestedListing: listingSnapshot(requested),
		Participants:     []string{offeror.ID, counterparty.ID},
		AddressConfirmation: map[string]bool{
			offeror.ID:      false,
			counterparty.ID: false,
		},
		ShipmentStatus: map[string]bool{
			offeror.ID:      false,
			counterparty.ID: false,
		},
	}

	if err := uc.swapRepo.Create(ctx, swap); err != nil {
		return nil, err
	}

	message := &entity.Message{
		ID:             entity.RequestMessageID,
		SwapID:         swap.ID,
		Type:           entity.MessageTypeSwapRequest,
		Text:           input.Note,
		SenderUID:      offeror.ID,
		SenderUsername: offeror.Username,
		ReadBy:         []string{offeror.ID},
		Snapshot:       eventSnapshot(swap),
	}
	if err := uc.swapRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	uc.counters.OnMessageWritten(ctx, swap, message, nil)

	if err := uc.userRepo.IncrementMonthlySwapCount(ctx, offeror.ID, 1); err != nil {
		logger.LogSwapError(swap.ID, "monthly_count", err)
	}

	uc.wsManager.PushEvent(swap.Participants, ws.Event{
		Type:    "swap_updated",
		SwapID:  swap.ID,
		Payload: swap,
	})

	return swap, nil
}

func (uc *SwapUseCase) GetSwap(ctx context.Context, actorUID, swapID string) (*entity.Swap, error) {
	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorUID) {
		return nil, errors.Forbidden("You are not a participant in this swap", nil)
	}
	return swap, nil
}

func (uc *SwapUseCase) ListSwaps(ctx context.Context, actorUID string, limit, offset int) ([]*entity.Swap, int64, error) {
	return uc.swapRepo.ListByParticipant(ctx, actorUID, limit, offset)
}

// AcceptSwap moves requested -> accepted. The original request message is
// retyped in place (never duplicated) with a fresh timestamp, and its readBy
// is reset to the acceptor so the offeror sees the acceptance as unread.
func (uc *SwapUseCase) AcceptSwap(ctx context.Context, swapID, actorUID string) (*TransitionResult, error) {
	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorUID) {
		return nil, errors.Forbidden("You are not a participant in this swap", nil)
	}
	if swap.IsTerminal() {
		return nil, errors.Conflict("Swap is already closed")
	}
	if actorUID != swap.RequestedFrom.UID {
		return nil, errors.Forbidden("Only the requested party can accept a swap", nil)
	}
	if swap.Status != entity.SwapStatusRequested {
		return nil, errors.Conflict("Swap is already accepted")
	}

	if err := uc.swapRepo.SetStatus(ctx, swap.ID, entity.SwapStatusAccepted); err != nil {
		return nil, err
	}
	swap.Status = entity.SwapStatusAccepted

	message, err := uc.swapRepo.GetMessageByID(ctx, swap.ID, entity.RequestMessageID)
	if err != nil {
		return nil, err
	}

	prev := *message
	message.Type = entity.MessageTypeSwapAccepted
	message.SenderUID = actorUID
	message.SenderUsername = swap.RequestedFrom.Username
	message.ReadBy = []string{actorUID}
	message.Snapshot = eventSnapshot(swap)
	message.CreatedAt = time.Now()

	if err := uc.swapRepo.UpdateMessage(ctx, swap.ID, message); err != nil {
		return nil, err
	}

	uc.counters.OnMessageWritten(ctx, swap, message, &prev)
	uc.dispatchNotice(ctx, "acceptance", swap.OtherPartyUID(actorUID), swap)

	uc.wsManager.PushEvent(swap.Participants, ws.Event{
		Type:    "swap_updated",
		SwapID:  swap.ID,
		Payload: swap,
	})

	return &TransitionResult{Status: swap.Status}, nil
}

// RejectOrCancelSwap destroys a swap that never left the requested state. This
// is the only transition that deletes rather than mutates: an uncompleted
// negotiation leaves no trace. Derived unread signals are cleared before the
// delete so nothing orphaned survives it.
func (uc *SwapUseCase) RejectOrCancelSwap(ctx context.Context, swapID, actorUID, decision string) (*TransitionResult, error) {
	if decision != entity.SwapDecisionCancel && decision != entity.SwapDecisionReject {
		return nil, errors.BadRequest("Decision must be cancel or reject", nil)
	}

	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorUID) {
		return nil, errors.Forbidden("You are not a participant in this swap", nil)
	}
	if swap.IsTerminal() {
		return nil, errors.Conflict("Swap is already closed")
	}
	if swap.Status != entity.SwapStatusRequested {
		return nil, errors.Conflict("Swap can no longer be withdrawn")
	}
	if decision == entity.SwapDecisionCancel && actorUID != swap.OfferedBy.UID {
		return nil, errors.Forbidden("Only the offering party can cancel", nil)
	}
	if decision == entity.SwapDecisionReject && actorUID != swap.RequestedFrom.UID {
		return nil, errors.Forbidden("Only the requested party can reject", nil)
	}

	messages, _, err := uc.swapRepo.ListMessages(ctx, swap.ID, 0, 0)
	if err != nil {
		return nil, err
	}
	uc.counters.OnSwapDeleted(ctx, swap, messages)

	// Parent first, then children: a live client reattaching presence to a
	// half-deleted swap is worse than briefly orphaned children.
	if err := uc.swapRepo.Delete(ctx, swap.ID); err != nil {
		return nil, err
	}
	uc.deleteChildren(ctx, swap.ID)

	status := entity.SwapStatusCancelled
	if decision == entity.SwapDecisionReject {
		status = entity.SwapStatusRejected
	}

	uc.wsManager.PushEvent(swap.Participants, ws.Event{
		Type:   "swap_updated",
		SwapID: swap.ID,
		Payload: map[string]string{
			"status": status,
		},
	})

	return &TransitionResult{Status: status}, nil
}

func (uc *SwapUseCase) deleteChildren(ctx context.Context, swapID string) {
	const batchSize = 100
	for {
		n, err := uc.swapRepo.DeleteMessagesBatch(ctx, swapID, batchSize)
		if err != nil {
			logger.LogSwapError(swapID, "delete_messages", err)
			break
		}
		if n < batchSize {
			break
		}
	}
	for {
		n, err := uc.swapRepo.DeletePresenceBatch(ctx, swapID, batchSize)
		if err != nil {
			logger.LogSwapError(swapID, "delete_presence", err)
			break
		}
		if n < batchSize {
			break
		}
	}
}

// ConfirmAddress records one party's shipping address. The address lands on
// both the swap snapshot and the party's own profile (it outlives this swap).
// The second confirmation to arrive advances the swap to shipment_pending; the
// pending_shipment message's fixed identity resolves the race when both
// confirmations arrive together.
func (uc *SwapUseCase) ConfirmAddress(ctx context.Context, swapID, actorUID, formattedAddress string) (*TransitionResult, error) {
	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorUID) {
		return nil, errors.Forbidden("You are not a participant in this swap", nil)
	}
	if swap.IsTerminal() {
		return nil, errors.Conflict("Swap is already closed")
	}
	if swap.Status != entity.SwapStatusAccepted && swap.Status != entity.SwapStatusShipmentPending {
		return nil, errors.Conflict("Swap is not awaiting address confirmation")
	}

	if formattedAddress == "" {
		// Re-use the address on file when the party has one.
		user, err := uc.userRepo.GetByID(ctx, actorUID)
		if err != nil {
			return nil, err
		}
		if user.FormattedAddress == "" {
			return nil, errors.BadRequest("A shipping address is required", nil)
		}
		formattedAddress = user.FormattedAddress
	}

	if err := uc.swapRepo.SetAddressConfirmed(ctx, swap.ID, actorUID, formattedAddress); err != nil {
		return nil, err
	}
	if err := uc.userRepo.SetFormattedAddress(ctx, actorUID, formattedAddress); err != nil {
		logger.LogSwapError(swap.ID, "profile_address", err)
	}

	// Re-read both flags; two handler invocations may race to this point.
	swap, err = uc.swapRepo.GetByID(ctx, swap.ID)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Status: swap.Status, BothConfirmed: swap.BothAddressesConfirmed()}
	if !result.BothConfirmed {
		return result, nil
	}

	actorName := swap.OfferedBy.Username
	if actorUID == swap.RequestedFrom.UID {
		actorName = swap.RequestedFrom.Username
	}

	message := &entity.Message{
		ID:             entity.PendingShipmentMessageID,
		SwapID:         swap.ID,
		Type:           entity.MessageTypePendingShipment,
		SenderUID:      actorUID,
		SenderUsername: actorName,
		ReadBy:         []string{actorUID},
		Snapshot:       eventSnapshot(swap),
	}

	err = uc.swapRepo.CreateMessageIfAbsent(ctx, message)
	if errors.Is(err, "ALREADY_EXISTS") {
		// The other confirmation won the race and performed the transition.
		result.Status = entity.SwapStatusShipmentPending
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	if err := uc.swapRepo.SetStatus(ctx, swap.ID, entity.SwapStatusShipmentPending); err != nil {
		return nil, err
	}
	swap.Status = entity.SwapStatusShipmentPending
	result.Status = swap.Status

	uc.counters.OnMessageWritten(ctx, swap, message, nil)

	uc.wsManager.PushEvent(swap.Participants, ws.Event{
		Type:    "swap_updated",
		SwapID:  swap.ID,
		Payload: swap,
	})

	return result, nil
}

// ConfirmShipment records one party's shipment, optionally with a tracking
// number. A confirmation without tracking is valid and stays distinguishable
// from "not yet confirmed". The second confirmation completes the swap exactly
// once, guarded by the completed message's fixed identity.
func (uc *SwapUseCase) ConfirmShipment(ctx context.Context, swapID, actorUID, trackingNumber string) (*TransitionResult, error) {
	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(actorUID) {
		return nil, errors.Forbidden("You are not a participant in this swap", nil)
	}
	if swap.IsTerminal() {
		return nil, errors.Conflict("Swap is already closed")
	}
	if swap.Status != entity.SwapStatusShipmentPending {
		return nil, errors.Conflict("Swap is not awaiting shipment confirmation")
	}
	if !swap.BothAddressesConfirmed() {
		// Should be unreachable while status is shipment_pending; guards the
		// invariant against partially repaired documents.
		return nil, errors.Conflict("Both addresses must be confirmed before shipping")
	}

	if err := uc.swapRepo.SetShipmentConfirmed(ctx, swap.ID, actorUID, trackingNumber, time.Now()); err != nil {
		return nil, err
	}

	swap, err = uc.swapRepo.GetByID(ctx, swap.ID)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{Status: swap.Status, BothShipped: swap.BothShipmentsConfirmed()}
	if !result.BothShipped {
		return result, nil
	}

	actorName := swap.OfferedBy.Username
	if actorUID == swap.RequestedFrom.UID {
		actorName = swap.RequestedFrom.Username
	}

	message := &entity.Message{
		ID:             entity.CompletedMessageID,
		SwapID:         swap.ID,
		Type:           entity.MessageTypeSwapCompleted,
		SenderUID:      actorUID,
		SenderUsername: actorName,
		ReadBy:         []string{actorUID},
		Snapshot:       eventSnapshot(swap),
	}

	err = uc.swapRepo.CreateMessageIfAbsent(ctx, message)
	if errors.Is(err, "ALREADY_EXISTS") {
		result.Status = entity.SwapStatusCompleted
		result.SwapCompleted = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	if err := uc.swapRepo.SetStatus(ctx, swap.ID, entity.SwapStatusCompleted); err != nil {
		return nil, err
	}
	swap.Status = entity.SwapStatusCompleted
	result.Status = swap.Status
	result.SwapCompleted = true

	uc.counters.OnMessageWritten(ctx, swap, message, nil)
	uc.retireListings(ctx, swap)

	uc.dispatchNotice(ctx, "completion", swap.OfferedBy.UID, swap)
	uc.dispatchNotice(ctx, "completion", swap.RequestedFrom.UID, swap)

	uc.wsManager.PushEvent(swap.Participants, ws.Event{
		Type:    "swap_updated",
		SwapID:  swap.ID,
		Payload: swap,
	})

	return result, nil
}

// retireListings marks both listings swapped once the exchange completes.
// Best-effort; a failure only leaves a listing browsable until corrected.
func (uc *SwapUseCase) retireListings(ctx context.Context, swap *entity.Swap) {
	for _, id := range []string{swap.OfferedListing.ID, swap.RequestedListing.ID} {
		listing, err := uc.listingRepo.GetByID(ctx, id)
		if err != nil {
			logger.LogSwapError(swap.ID, "retire_listing", err)
			continue
		}
		listing.Status = entity.ListingStatusSwapped
		if err := uc.listingRepo.Update(ctx, listing); err != nil {
			logger.LogSwapError(swap.ID, "retire_listing", err)
		}
	}
}

// dispatchNotice fires a lifecycle notification. Best-effort by design:
// failures are logged and swallowed, never retried inline, and a notice that
// cannot be assembled (no device token, missing titles) is skipped without
// attempting the downstream call.
func (uc *SwapUseCase) dispatchNotice(ctx context.Context, kind, toUID string, swap *entity.Swap) {
	user, err := uc.userRepo.GetByID(ctx, toUID)
	if err != nil {
		logger.Warn("Notification lookup failed for %s: %v", toUID, err)
		return
	}

	offeredTitle := swap.OfferedListing.Title
	requestedTitle := swap.RequestedListing.Title
	if user.FCMToken == "" || offeredTitle == "" || requestedTitle == "" {
		logger.Warn("Notification skipped for %s: missing token or listing titles", toUID)
		return
	}

	switch kind {
	case "acceptance":
		err = uc.notifier.SendAcceptanceNotice(ctx, user.FCMToken, offeredTitle, requestedTitle)
	case "completion":
		err = uc.notifier.SendCompletionNotice(ctx, user.FCMToken, offeredTitle, requestedTitle)
	}
	if err != nil {
		logger.Error("Notification dispatch failed for %s: %v", toUID, err)
	}
}
