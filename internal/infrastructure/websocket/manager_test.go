package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func channelClosed(ch chan []byte) bool {
	select {
	case _, ok := <-ch:
		return !ok
	default:
		return false
	}
}

func TestReconnectReplacesOldConnection(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	first := &Client{UserID: "alice", Send: make(chan []byte, 4)}
	second := &Client{UserID: "alice", Send: make(chan []byte, 4)}

	m.Register <- first
	m.Register <- second

	// The replaced connection's send channel is closed so its write pump
	// shuts the stale socket down.
	require.Eventually(t, func() bool {
		return channelClosed(first.Send)
	}, time.Second, 10*time.Millisecond)

	// The old connection's read pump unregisters late; that must not kick
	// the connection that replaced it.
	m.Unregister <- first

	require.Eventually(t, func() bool {
		m.SendToUser("alice", []byte("ping"))
		select {
		case msg, ok := <-second.Send:
			return ok && string(msg) == "ping"
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestUnregisterRemovesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	client := &Client{UserID: "bob", Send: make(chan []byte, 4)}
	m.Register <- client
	m.Unregister <- client

	require.Eventually(t, func() bool {
		return channelClosed(client.Send)
	}, time.Second, 10*time.Millisecond)

	// Delivery to an unregistered user is a silent no-op.
	m.SendToUser("bob", []byte("ping"))
}
