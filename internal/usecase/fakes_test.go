package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"scentswap/internal/domain/entity"
	"scentswap/pkg/errors"
)

// In-memory repository fakes. Every method takes the store lock, mirroring
// the document store's per-operation atomicity, so the concurrency tests
// exercise real interleavings of the use case logic.

type fakeSwapRepo struct {
	mu       sync.Mutex
	swaps    map[string]*entity.Swap
	messages map[string]map[string]*entity.Message
	presence map[string]map[string]*entity.Presence
	seq      int
}

func newFakeSwapRepo() *fakeSwapRepo {
	return &fakeSwapRepo{
		swaps:    make(map[string]*entity.Swap),
		messages: make(map[string]map[string]*entity.Message),
		presence: make(map[string]map[string]*entity.Presence),
	}
}

func (r *fakeSwapRepo) Create(ctx context.Context, swap *entity.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if swap.ID == "" {
		r.seq++
		swap.ID = fmt.Sprintf("swap-%d", r.seq)
	}
	now := time.Now()
	swap.CreatedAt = now
	swap.UpdatedAt = now

	copied := *swap
	r.swaps[swap.ID] = &copied
	return nil
}

func (r *fakeSwapRepo) GetByID(ctx context.Context, id string) (*entity.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	swap, ok := r.swaps[id]
	if !ok {
		return nil, errors.NotFound("Swap", nil)
	}
	copied := *swap
	return &copied, nil
}

func (r *fakeSwapRepo) ListByParticipant(ctx context.Context, uid string, limit, offset int) ([]*entity.Swap, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Swap
	for _, swap := range r.swaps {
		for _, p := range swap.Participants {
			if p == uid {
				copied := *swap
				out = append(out, &copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeSwapRepo) ListStale(ctx context.Context, before time.Time, statuses []string, pageSize int, cursor string) ([]*entity.Swap, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Swap
	for _, swap := range r.swaps {
		if !swap.CreatedAt.Before(before) {
			continue
		}
		for _, status := range statuses {
			if swap.Status == status {
				copied := *swap
				out = append(out, &copied)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, "", nil
}

func (r *fakeSwapRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.swaps[id]; !ok {
		return errors.NotFound("Swap", nil)
	}
	delete(r.swaps, id)
	return nil
}

func (r *fakeSwapRepo) SetStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	swap, ok := r.swaps[id]
	if !ok {
		return errors.NotFound("Swap", nil)
	}
	swap.Status = status
	swap.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSwapRepo) SetAddressConfirmed(ctx context.Context, id, uid, formattedAddress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	swap, ok := r.swaps[id]
	if !ok {
		return errors.NotFound("Swap", nil)
	}
	if swap.AddressConfirmation == nil {
		swap.AddressConfirmation = make(map[string]bool)
	}
	swap.AddressConfirmation[uid] = true
	switch uid {
	case swap.OfferedBy.UID:
		swap.OfferedBy.FormattedAddress = formattedAddress
	case swap.RequestedFrom.UID:
		swap.RequestedFrom.FormattedAddress = formattedAddress
	}
	swap.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSwapRepo) SetShipmentConfirmed(ctx context.Context, id, uid, trackingNumber string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	swap, ok := r.swaps[id]
	if !ok {
		return errors.NotFound("Swap", nil)
	}
	if swap.ShipmentStatus == nil {
		swap.ShipmentStatus = make(map[string]bool)
	}
	swap.ShipmentStatus[uid] = true
	if trackingNumber != "" {
		if swap.TrackingNumbers == nil {
			swap.TrackingNumbers = make(map[string]string)
		}
		swap.TrackingNumbers[uid] = trackingNumber
	}
	if swap.ConfirmationTimestamps == nil {
		swap.ConfirmationTimestamps = make(map[string]time.Time)
	}
	swap.ConfirmationTimestamps[uid] = at
	swap.UpdatedAt = time.Now()
	return nil
}

func (r *fakeSwapRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		r.seq++
		message.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	if r.messages[message.SwapID] == nil {
		r.messages[message.SwapID] = make(map[string]*entity.Message)
	}
	copied := *message
	r.messages[message.SwapID][message.ID] = &copied
	return nil
}

func (r *fakeSwapRepo) CreateMessageIfAbsent(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.messages[message.SwapID] == nil {
		r.messages[message.SwapID] = make(map[string]*entity.Message)
	}
	if _, ok := r.messages[message.SwapID][message.ID]; ok {
		return errors.AlreadyExists("Message", nil)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	copied := *message
	r.messages[message.SwapID][message.ID] = &copied
	return nil
}

func (r *fakeSwapRepo) GetMessageByID(ctx context.Context, swapID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[swapID][messageID]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *message
	return &copied, nil
}

func (r *fakeSwapRepo) UpdateMessage(ctx context.Context, swapID string, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.messages[swapID][message.ID]; !ok {
		return errors.NotFound("Message", nil)
	}
	copied := *message
	r.messages[swapID][message.ID] = &copied
	return nil
}

func (r *fakeSwapRepo) ListMessages(ctx context.Context, swapID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Message
	for _, message := range r.messages[swapID] {
		copied := *message
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (r *fakeSwapRepo) AddMessageReader(ctx context.Context, swapID, messageID, uid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[swapID][messageID]
	if !ok {
		return false, errors.NotFound("Message", nil)
	}
	for _, reader := range message.ReadBy {
		if reader == uid {
			return false, nil
		}
	}
	message.ReadBy = append(message.ReadBy, uid)
	return true, nil
}

func (r *fakeSwapRepo) DeleteMessagesBatch(ctx context.Context, swapID string, batchSize int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id := range r.messages[swapID] {
		if n == batchSize {
			break
		}
		delete(r.messages[swapID], id)
		n++
	}
	return n, nil
}

func (r *fakeSwapRepo) DeletePresenceBatch(ctx context.Context, swapID string, batchSize int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for uid := range r.presence[swapID] {
		if n == batchSize {
			break
		}
		delete(r.presence[swapID], uid)
		n++
	}
	return n, nil
}

func (r *fakeSwapRepo) SetPresence(ctx context.Context, swapID string, presence *entity.Presence) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.presence[swapID] == nil {
		r.presence[swapID] = make(map[string]*entity.Presence)
	}
	copied := *presence
	r.presence[swapID][presence.UID] = &copied
	return nil
}

func (r *fakeSwapRepo) GetPresence(ctx context.Context, swapID, uid string) (*entity.Presence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	presence, ok := r.presence[swapID][uid]
	if !ok {
		return nil, nil
	}
	copied := *presence
	return &copied, nil
}

func (r *fakeSwapRepo) messageCount(swapID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages[swapID])
}

type fakeUserRepo struct {
	mu         sync.Mutex
	users      map[string]*entity.User
	resetFails bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*entity.User),
	}
}

func (r *fakeUserRepo) put(user *entity.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.put(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetFormattedAddress(ctx context.Context, uid, formattedAddress string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.FormattedAddress = formattedAddress
	return nil
}

func (r *fakeUserRepo) SetTierFlags(ctx context.Context, uid string, isPremium, isIdVerified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.IsPremium = isPremium
	user.IsIdVerified = isIdVerified
	return nil
}

func (r *fakeUserRepo) IncrementUnreadCount(ctx context.Context, uid string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.UnreadMessagesCount += delta
	return nil
}

func (r *fakeUserRepo) SetUnreadCount(ctx context.Context, uid string, count int, checkedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.UnreadMessagesCount = count
	user.CountsCheckedAt = checkedAt
	return nil
}

func (r *fakeUserRepo) AddUnreadConversation(ctx context.Context, uid, swapID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	for _, id := range user.UnreadConversations {
		if id == swapID {
			return nil
		}
	}
	user.UnreadConversations = append(user.UnreadConversations, swapID)
	return nil
}

func (r *fakeUserRepo) RemoveUnreadConversation(ctx context.Context, uid, swapID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	kept := user.UnreadConversations[:0]
	for _, id := range user.UnreadConversations {
		if id != swapID {
			kept = append(kept, id)
		}
	}
	user.UnreadConversations = kept
	return nil
}

func (r *fakeUserRepo) IncrementMonthlySwapCount(ctx context.Context, uid string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[uid]
	if !ok {
		return errors.NotFound("User", nil)
	}
	user.MonthlySwapCount += delta
	return nil
}

func (r *fakeUserRepo) ListPage(ctx context.Context, pageSize int, cursor string) ([]*entity.User, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.User
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, "", nil
}

func (r *fakeUserRepo) ListWithMonthlySwaps(ctx context.Context, pageSize int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.User
	for _, user := range r.users {
		if user.MonthlySwapCount > 0 {
			copied := *user
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MonthlySwapCount == out[j].MonthlySwapCount {
			return out[i].ID < out[j].ID
		}
		return out[i].MonthlySwapCount < out[j].MonthlySwapCount
	})
	if len(out) > pageSize {
		out = out[:pageSize]
	}
	return out, nil
}

func (r *fakeUserRepo) BulkResetMonthlyCounts(ctx context.Context, uids []string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resetFails {
		return 0, len(uids), nil
	}

	succeeded := 0
	failed := 0
	for _, uid := range uids {
		user, ok := r.users[uid]
		if !ok {
			failed++
			continue
		}
		user.MonthlySwapCount = 0
		succeeded++
	}
	return succeeded, failed, nil
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[string]*entity.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{
		listings: make(map[string]*entity.Listing),
	}
}

func (r *fakeListingRepo) put(listing *entity.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *listing
	r.listings[listing.ID] = &copied
}

func (r *fakeListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	r.put(listing)
	return nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	copied := *listing
	return &copied, nil
}

func (r *fakeListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	copied := *listing
	r.listings[listing.ID] = &copied
	return nil
}

func (r *fakeListingRepo) ListByOwner(ctx context.Context, ownerUID string, pageSize int, cursor string) ([]*entity.Listing, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.Listing
	for _, listing := range r.listings {
		if listing.OwnerUID == ownerUID {
			copied := *listing
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, "", nil
}

func (r *fakeListingRepo) BulkSetOwnerTier(ctx context.Context, listingIDs []string, isPremium, isIdVerified bool, priority int) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	succeeded := 0
	failed := 0
	for _, id := range listingIDs {
		listing, ok := r.listings[id]
		if !ok {
			failed++
			continue
		}
		listing.OwnerIsPremium = isPremium
		listing.OwnerIsIdVerified = isIdVerified
		listing.OwnerPriority = priority
		succeeded++
	}
	return succeeded, failed, nil
}

type notice struct {
	kind        string
	deviceToken string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *fakeNotifier) SendAcceptanceNotice(ctx context.Context, deviceToken, offeredTitle, requestedTitle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{kind: "acceptance", deviceToken: deviceToken})
	return nil
}

func (n *fakeNotifier) SendCompletionNotice(ctx context.Context, deviceToken, offeredTitle, requestedTitle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{kind: "completion", deviceToken: deviceToken})
	return nil
}

func (n *fakeNotifier) sent() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notice, len(n.notices))
	copy(out, n.notices)
	return out
}
