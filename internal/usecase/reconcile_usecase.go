package usecase

import (
	"context"
	"time"

	"scentswap/internal/domain/entity"
	"scentswap/internal/domain/repository"
	"scentswap/pkg/logger"
)

// ReconcileUseCase hosts the scheduled repair jobs. Every job is idempotent,
// pages through its working set with a bounded batch size, and treats item
// failures as count-and-continue: the next scheduled run retries naturally.
// These jobs own the aggregate counters and denormalized listing fields for
// correctness purposes; interactive writes to them are only opportunistic.
type ReconcileUseCase struct {
	swapRepo    repository.SwapRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository

	pageSize       int
	retention      time.Duration
	childDelay     time.Duration
	childBatchSize int

	now   func() time.Time
	sleep func(time.Duration)
}

func NewReconcileUseCase(
	swapRepo repository.SwapRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	pageSize int,
	retention time.Duration,
	childDelay time.Duration,
	childBatchSize int,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		swapRepo:       swapRepo,
		userRepo:       userRepo,
		listingRepo:    listingRepo,
		pageSize:       pageSize,
		retention:      retention,
		childDelay:     childDelay,
		childBatchSize: childBatchSize,
		now:            time.Now,
		sleep:          time.Sleep,
	}
}

type JobResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Corrected int `json:"corrected,omitempty"`
	Deleted   int `json:"deleted,omitempty"`
}

// ValidateUnreadCounts recomputes every user's true unread count from ground
// truth and overwrites the stored counter on disagreement. This is the
// authoritative repair path for the deliberate decrement gap in the
// interactive maintainer.
func (uc *ReconcileUseCase) ValidateUnreadCounts(ctx context.Context) (*JobResult, error) {
	result := &JobResult{}
	cursor := ""

	for {
		users, next, err := uc.userRepo.ListPage(ctx, uc.pageSize, cursor)
		if err != nil {
			logger.Error("Unread validator: user page failed at cursor %q: %v", cursor, err)
			return result, err
		}

		for _, user := range users {
			result.Processed++

			actual, err := uc.trueUnreadCount(ctx, user.ID)
			if err != nil {
				logger.Warn("Unread validator: recount failed for user %s: %v", user.ID, err)
				result.Failed++
				continue
			}

			if actual != user.UnreadMessagesCount {
				if err := uc.userRepo.SetUnreadCount(ctx, user.ID, actual, uc.now()); err != nil {
					logger.Warn("Unread validator: overwrite failed for user %s: %v", user.ID, err)
					result.Failed++
					continue
				}
				logger.Info("Unread validator: corrected user %s from %d to %d", user.ID, user.UnreadMessagesCount, actual)
				result.Corrected++
			}
			result.Succeeded++
		}

		if next == "" {
			break
		}
		cursor = next
	}

	logger.LogJobRun("validate_unread_counts", result.Processed, result.Succeeded, result.Failed)
	return result, nil
}

func (uc *ReconcileUseCase) trueUnreadCount(ctx context.Context, uid string) (int, error) {
	swaps, _, err := uc.swapRepo.ListByParticipant(ctx, uid, 0, 0)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, swap := range swaps {
		messages, _, err := uc.swapRepo.ListMessages(ctx, swap.ID, 0, 0)
		if err != nil {
			return 0, err
		}
		for _, message := range messages {
			if !message.Hidden && message.UnreadBy(uid) {
				count++
			}
		}
	}

	return count, nil
}

// ResetMonthlySwapCounts zeroes every non-zero monthly counter through the
// bulk writer. Safe to re-run: a second pass finds nothing left to reset.
//
// Each successful reset removes its user from the non-zero query's result set,
// so the loop re-queries the first page until it comes back empty instead of
// paging with a cursor. A pass that resets nothing ends the run; the next
// scheduled run retries whatever failed.
func (uc *ReconcileUseCase) ResetMonthlySwapCounts(ctx context.Context) (*JobResult, error) {
	result := &JobResult{}

	for {
		users, err := uc.userRepo.ListWithMonthlySwaps(ctx, uc.pageSize)
		if err != nil {
			logger.Error("Monthly reset: user page failed: %v", err)
			return result, err
		}
		if len(users) == 0 {
			break
		}

		uids := make([]string, 0, len(users))
		for _, user := range users {
			uids = append(uids, user.ID)
		}

		succeeded, failed, err := uc.userRepo.BulkResetMonthlyCounts(ctx, uids)
		result.Processed += len(uids)
		if err != nil {
			logger.Error("Monthly reset: bulk write failed: %v", err)
			result.Failed += len(uids)
			break
		}
		result.Succeeded += succeeded
		result.Failed += failed

		if succeeded == 0 {
			break
		}
	}

	logger.LogJobRun("reset_monthly_swap_counts", result.Processed, result.Succeeded, result.Failed)
	return result, nil
}

// CleanupExpiredSwaps removes swaps that sat in requested past the retention
// threshold, along with their message and presence sub-collections. The parent
// document goes first so live clients cannot reattach presence to a
// half-deleted swap; a short delay follows to let listeners react before the
// children vanish. Children are deleted in bounded batches inside an explicit
// loop, yielding between batches.
func (uc *ReconcileUseCase) CleanupExpiredSwaps(ctx context.Context) (*JobResult, error) {
	result := &JobResult{}
	threshold := uc.now().Add(-uc.retention)
	statuses := []string{entity.SwapStatusRequested}
	cursor := ""

	for {
		swaps, next, err := uc.swapRepo.ListStale(ctx, threshold, statuses, uc.pageSize, cursor)
		if err != nil {
			logger.Error("Expired cleanup: stale page failed at cursor %q: %v", cursor, err)
			return result, err
		}

		for _, swap := range swaps {
			result.Processed++

			if err := uc.deleteSwapCascade(ctx, swap); err != nil {
				logger.Warn("Expired cleanup: failed for swap %s: %v", swap.ID, err)
				result.Failed++
				continue
			}
			result.Succeeded++
			result.Deleted++
		}

		if next == "" {
			break
		}
		cursor = next
	}

	logger.LogJobRun("cleanup_expired_swaps", result.Processed, result.Succeeded, result.Failed)
	return result, nil
}

func (uc *ReconcileUseCase) deleteSwapCascade(ctx context.Context, swap *entity.Swap) error {
	if err := uc.swapRepo.Delete(ctx, swap.ID); err != nil {
		return err
	}

	// Badge entries pointing at the dead swap; the unread counter itself is
	// the validator's job.
	for _, uid := range swap.Participants {
		if err := uc.userRepo.RemoveUnreadConversation(ctx, uid, swap.ID); err != nil {
			logger.Warn("Expired cleanup: badge removal failed for %s: %v", uid, err)
		}
	}

	uc.sleep(uc.childDelay)

	for {
		n, err := uc.swapRepo.DeleteMessagesBatch(ctx, swap.ID, uc.childBatchSize)
		if err != nil {
			return err
		}
		if n < uc.childBatchSize {
			break
		}
		uc.sleep(uc.childDelay)
	}

	for {
		n, err := uc.swapRepo.DeletePresenceBatch(ctx, swap.ID, uc.childBatchSize)
		if err != nil {
			return err
		}
		if n < uc.childBatchSize {
			break
		}
		uc.sleep(uc.childDelay)
	}

	return nil
}

// PropagateOwnerTier pushes a user's premium/verified flags and recomputed
// priority rank onto every listing they own, paginated by creation order.
func (uc *ReconcileUseCase) PropagateOwnerTier(ctx context.Context, uid string) (*JobResult, error) {
	result := &JobResult{}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return result, err
	}
	priority := user.PriorityRank()

	cursor := ""
	for {
		listings, next, err := uc.listingRepo.ListByOwner(ctx, uid, uc.pageSize, cursor)
		if err != nil {
			logger.Error("Tier propagation: listing page failed for %s at cursor %q: %v", uid, cursor, err)
			return result, err
		}
		if len(listings) == 0 {
			break
		}

		ids := make([]string, 0, len(listings))
		for _, listing := range listings {
			ids = append(ids, listing.ID)
		}

		succeeded, failed, err := uc.listingRepo.BulkSetOwnerTier(ctx, ids, user.IsPremium, user.IsIdVerified, priority)
		if err != nil {
			logger.Error("Tier propagation: bulk write failed for %s: %v", uid, err)
			result.Failed += len(ids)
		} else {
			result.Succeeded += succeeded
			result.Failed += failed
		}
		result.Processed += len(ids)

		if next == "" {
			break
		}
		cursor = next
	}

	logger.LogJobRun("propagate_owner_tier", result.Processed, result.Succeeded, result.Failed)
	return result, nil
}

// SetUserTier updates a user's premium/verification flags and propagates the
// denormalized attributes inline, so listings never show a stale tier longer
// than one propagation run.
func (uc *ReconcileUseCase) SetUserTier(ctx context.Context, uid string, isPremium, isIdVerified bool) (*JobResult, error) {
	if err := uc.userRepo.SetTierFlags(ctx, uid, isPremium, isIdVerified); err != nil {
		return nil, err
	}
	return uc.PropagateOwnerTier(ctx, uid)
}
