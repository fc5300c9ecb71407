package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scentswap/internal/domain/entity"
	ws "scentswap/internal/infrastructure/websocket"
	"scentswap/pkg/errors"
)

type conversationFixture struct {
	swapRepo *fakeSwapRepo
	userRepo *fakeUserRepo
	uc       *ConversationUseCase
	swap     *entity.Swap
}

func newConversationFixture(t *testing.T) *conversationFixture {
	t.Helper()

	f := &conversationFixture{
		swapRepo: newFakeSwapRepo(),
		userRepo: newFakeUserRepo(),
	}

	f.userRepo.put(&entity.User{ID: "alice", Username: "alice"})
	f.userRepo.put(&entity.User{ID: "bob", Username: "bob"})

	f.swap = &entity.Swap{
		Status:        entity.SwapStatusAccepted,
		OfferedBy:     entity.PartySnapshot{UID: "alice", Username: "alice"},
		RequestedFrom: entity.PartySnapshot{UID: "bob", Username: "bob"},
		Participants:  []string{"alice", "bob"},
	}
	require.NoError(t, f.swapRepo.Create(context.Background(), f.swap))

	counters := NewCounterUseCase(f.swapRepo, f.userRepo, 30*time.Second)
	f.uc = NewConversationUseCase(f.swapRepo, f.userRepo, counters, ws.NewManager())
	return f
}

func TestSendMessage(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	message, err := f.uc.SendMessage(ctx, f.swap.ID, "alice", "how is the sillage?")
	require.NoError(t, err)
	assert.Equal(t, entity.MessageTypeStandard, message.Type)
	assert.Equal(t, "alice", message.SenderUID)
	assert.Equal(t, []string{"alice"}, message.ReadBy)
	assert.NotEmpty(t, message.ID)

	bob, err := f.userRepo.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.UnreadMessagesCount)
	assert.Equal(t, []string{f.swap.ID}, bob.UnreadConversations)
}

func TestSendMessageValidation(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	_, err := f.uc.SendMessage(ctx, f.swap.ID, "alice", "")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	_, err = f.uc.SendMessage(ctx, f.swap.ID, "mallory", "let me in")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = f.uc.SendMessage(ctx, "no-such-swap", "alice", "hello?")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestMarkMessagesRead(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	first, err := f.uc.SendMessage(ctx, f.swap.ID, "alice", "one")
	require.NoError(t, err)
	second, err := f.uc.SendMessage(ctx, f.swap.ID, "alice", "two")
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkMessagesRead(ctx, f.swap.ID, "bob", []string{first.ID, second.ID}))

	bob, err := f.userRepo.GetByID(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bob.UnreadConversations)

	// Marking the same messages again is a no-op.
	require.NoError(t, f.uc.MarkMessagesRead(ctx, f.swap.ID, "bob", []string{first.ID, second.ID}))

	stored, err := f.swapRepo.GetMessageByID(ctx, f.swap.ID, first.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, stored.ReadBy)
}

func TestHeartbeatUpsertsPresence(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	require.NoError(t, f.uc.Heartbeat(ctx, f.swap.ID, "bob", true))

	presence, err := f.swapRepo.GetPresence(ctx, f.swap.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, presence)
	assert.True(t, presence.Active)
	assert.False(t, presence.LastActive.IsZero())

	require.NoError(t, f.uc.Heartbeat(ctx, f.swap.ID, "bob", false))

	presence, err = f.swapRepo.GetPresence(ctx, f.swap.ID, "bob")
	require.NoError(t, err)
	require.NotNil(t, presence)
	assert.False(t, presence.Active)

	err = f.uc.Heartbeat(ctx, f.swap.ID, "mallory", true)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestGetCounters(t *testing.T) {
	f := newConversationFixture(t)
	ctx := context.Background()

	counters, err := f.uc.GetCounters(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, counters.UnreadMessagesCount)
	assert.NotNil(t, counters.UnreadConversations)
	assert.Empty(t, counters.UnreadConversations)

	_, err = f.uc.SendMessage(ctx, f.swap.ID, "alice", "ping")
	require.NoError(t, err)

	counters, err = f.uc.GetCounters(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, counters.UnreadMessagesCount)
	assert.Equal(t, []string{f.swap.ID}, counters.UnreadConversations)
}
