package usecase

import (
	"context"
	"reflect"
	"time"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/pkg/logger"
)

// CounterUseCase maintains the per-user unread aggregates that hang off every
// message write. The counters it adjusts are opportunistic: the daily
// validator job is the source of truth of last resort, so a missed or extra
// increment here is drift, not corruption.
type CounterUseCase struct {
	swapRepo       repository.SwapRepository
	userRepo       repository.UserRepository
	presenceWindow time.Duration
	now            func() time.Time
}

func NewCounterUseCase(
	swapRepo repository.SwapRepository,
	userRepo repository.UserRepository,
	presenceWindow time.Duration,
) *CounterUseCase {
	return &CounterUseCase{
		swapRepo:       swapRepo,
		userRepo:       userRepo,
		presenceWindow: presenceWindow,
		now:            time.Now,
	}
}

// materialChange compares two versions of a message by structural equality
// excluding readBy. A read-status mutation alone must never re-trigger the
// increment rule.
func materialChange(prev, next *entity.Message) bool {
	a := *prev
	b := *next
	a.ReadBy = nil
	b.ReadBy = nil
	return !reflect.DeepEqual(a, b)
}

// OnMessageWritten applies the increment rule for a newly created message, or
// for an in-place retype. prev is the prior version on an update, nil on a
// create. Failures are logged and swallowed; the validator job repairs drift.
func (uc *CounterUseCase) OnMessageWritten(ctx context.Context, swap *entity.Swap, message, prev *entity.Message) {
	if message.Hidden {
		return
	}
	if message.SenderUID == "" {
		// Integrity guard: a message with no sender cannot be attributed, so
		// it must not count against anyone.
		logger.Warn("Counter maintainer: message %s in swap %s has no sender, skipping", message.ID, swap.ID)
		return
	}
	if prev != nil && !materialChange(prev, message) {
		return
	}

	for _, uid := range swap.Participants {
		if uid == message.SenderUID {
			continue
		}

		presence, err := uc.swapRepo.GetPresence(ctx, swap.ID, uid)
		if err != nil {
			logger.Warn("Counter maintainer: presence lookup failed for %s in swap %s: %v", uid, swap.ID, err)
		}
		if presence != nil && presence.ActiveWithin(uc.presenceWindow, uc.now()) {
			// Recipient is looking at the conversation right now; an unread
			// signal would only flicker.
			continue
		}

		if err := uc.userRepo.IncrementUnreadCount(ctx, uid, 1); err != nil {
			logger.Warn("Counter maintainer: unread increment failed for %s: %v", uid, err)
		}
		if err := uc.userRepo.AddUnreadConversation(ctx, uid, swap.ID); err != nil {
			logger.Warn("Counter maintainer: unread conversation add failed for %s: %v", uid, err)
		}
	}
}

// OnMessagesRead applies the decrement rule after readerUID was newly added to
// one or more messages in the swap. The rule works at whole-swap granularity:
// when no message in the swap remains unread by the reader, the swap leaves
// the reader's unreadConversations set. unreadMessagesCount is deliberately
// not decremented here; only the daily validator corrects it.
func (uc *CounterUseCase) OnMessagesRead(ctx context.Context, swapID, readerUID string) {
	messages, _, err := uc.swapRepo.ListMessages(ctx, swapID, 0, 0)
	if err != nil {
		logger.Warn("Counter maintainer: message scan failed for swap %s: %v", swapID, err)
		return
	}

	for _, message := range messages {
		if message.UnreadBy(readerUID) {
			return
		}
	}

	if err := uc.userRepo.RemoveUnreadConversation(ctx, readerUID, swapID); err != nil {
		logger.Warn("Counter maintainer: unread conversation remove failed for %s: %v", readerUID, err)
	}
}

// OnSwapDeleted clears every derived unread signal pointing at a swap that is
// about to be destroyed, so no orphaned badge survives the delete.
func (uc *CounterUseCase) OnSwapDeleted(ctx context.Context, swap *entity.Swap, messages []*entity.Message) {
	for _, uid := range swap.Participants {
		unread := 0
		for _, message := range messages {
			if !message.Hidden && message.UnreadBy(uid) {
				unread++
			}
		}

		if unread > 0 {
			if err := uc.userRepo.IncrementUnreadCount(ctx, uid, -unread); err != nil {
				logger.Warn("Counter maintainer: unread decrement failed for %s: %v", uid, err)
			}
		}
		if err := uc.userRepo.RemoveUnreadConversation(ctx, uid, swap.ID); err != nil {
			logger.Warn("Counter maintainer: unread conversation remove failed for %s: %v", uid, err)
		}
	}
}
