package usecase

import (
	"context"
	"time"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/internal/infrastructure/ratelimit"
	ws "scentswap/internal/infrastructure/websocket"
	"scentswap/pkg/errors"
	"scentswap/pkg/logger"
)

// ConversationUseCase covers the conversation attached to a swap: standard
// messages, read marking, presence heartbeats, and the caller's own counters.
type ConversationUseCase struct {
	swapRepo    repository.SwapRepository
	userRepo    repository.UserRepository
	counters    *CounterUseCase
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
}

func NewConversationUseCase(
	swapRepo repository.SwapRepository,
	userRepo repository.UserRepository,
	counters *CounterUseCase,
	wsManager *ws.Manager,
) *ConversationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ConversationUseCase{
		swapRepo:    swapRepo,
		userRepo:    userRepo,
		counters:    counters,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
	}
}

type CountersResponse struct {
	UnreadMessagesCount int      `json:"unread_messages_count"`
	MonthlySwapCount    int      `json:"monthly_swap_count"`
	UnreadConversations []string `json:"unread_conversations"`
}

func (uc *ConversationUseCase) participantSwap(ctx context.Context, swapID, uid string) (*entity.Swap, error) {
	swap, err := uc.swapRepo.GetByID(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(uid) {
		return nil, errors.Forbidden("You are not a participant in this swap", nil)
	}
	return swap, nil
}

func (uc *ConversationUseCase) SendMessage(ctx context.Context, swapID, senderUID, text string) (*entity.Message, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderUID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	if text == "" {
		return nil, errors.BadRequest("Message text is required", nil)
	}

	swap, err := uc.participantSwap(ctx, swapID, senderUID)
	if err != nil {
		return nil, err
	}

	sender, err := uc.userRepo.GetByID(ctx, senderUID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		SwapID:         swap.ID,
		Type:           entity.MessageTypeStandard,
		Text:           text,
		SenderUID:      sender.ID,
		SenderUsername: sender.Username,
		ReadBy:         []string{sender.ID},
	}

	if err := uc.swapRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	uc.counters.OnMessageWritten(ctx, swap, message, nil)

	uc.wsManager.PushEvent(swap.Participants, ws.Event{
		Type:    "message_created",
		SwapID:  swap.ID,
		Payload: message,
	})

	return message, nil
}

func (uc *ConversationUseCase) ListMessages(ctx context.Context, swapID, uid string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.participantSwap(ctx, swapID, uid); err != nil {
		return nil, 0, err
	}
	return uc.swapRepo.ListMessages(ctx, swapID, limit, offset)
}

// MarkMessagesRead adds the caller to each message's readBy set and, when the
// caller has caught up on the whole swap, clears the conversation badge. The
// unread message counter itself is left to the daily validator.
func (uc *ConversationUseCase) MarkMessagesRead(ctx context.Context, swapID, uid string, messageIDs []string) error {
	if _, err := uc.participantSwap(ctx, swapID, uid); err != nil {
		return err
	}

	newlyRead := false
	for _, messageID := range messageIDs {
		added, err := uc.swapRepo.AddMessageReader(ctx, swapID, messageID, uid)
		if err != nil {
			logger.Warn("Read marking failed for message %s in swap %s: %v", messageID, swapID, err)
			continue
		}
		if added {
			newlyRead = true
		}
	}

	if newlyRead {
		uc.counters.OnMessagesRead(ctx, swapID, uid)
	}

	return nil
}

// Heartbeat upserts the caller's presence record for the swap. view-enter
// sends active=true, view-exit active=false; every call refreshes lastActive.
func (uc *ConversationUseCase) Heartbeat(ctx context.Context, swapID, uid string, active bool) error {
	allowed, waitTime := uc.rateLimiter.Allow(uid, "presence")
	if !allowed {
		return errors.TooManyRequests("Rate limit exceeded", waitTime)
	}

	if _, err := uc.participantSwap(ctx, swapID, uid); err != nil {
		return err
	}

	return uc.swapRepo.SetPresence(ctx, swapID, &entity.Presence{
		UID:        uid,
		Active:     active,
		LastActive: time.Now(),
	})
}

func (uc *ConversationUseCase) GetCounters(ctx context.Context, uid string) (*CountersResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	unread := user.UnreadConversations
	if unread == nil {
		unread = []string{}
	}

	return &CountersResponse{
		UnreadMessagesCount: user.UnreadMessagesCount,
		MonthlySwapCount:    user.MonthlySwapCount,
		UnreadConversations: unread,
	}, nil
}
