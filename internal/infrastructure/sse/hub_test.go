package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freightboard/freightboard/internal/domain/notification"
)

func TestHub_BroadcastToUser(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	userA := "user-a"
	userB := "user-b"
	a := notification.NewSSEClient("client-1", &userA)
	b := notification.NewSSEClient("client-2", &userB)
	anon := notification.NewSSEClient("client-3", nil)
	hub.Register(a)
	hub.Register(b)
	hub.Register(anon)
	require.Equal(t, 3, hub.ClientCount())

	msg := notification.NewSSEMessage("bid_placed", json.RawMessage(`{"loadId":"x"}`))
	hub.BroadcastToUser(userA, msg)

	require.Len(t, a.MessageChan, 1)
	assert.Equal(t, msg, <-a.MessageChan)
	assert.Empty(t, b.MessageChan)
	assert.Empty(t, anon.MessageChan)
}

func TestHub_BroadcastToAll(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	userA := "user-a"
	a := notification.NewSSEClient("client-1", &userA)
	anon := notification.NewSSEClient("client-2", nil)
	hub.Register(a)
	hub.Register(anon)

	hub.BroadcastToAll(notification.NewSSEMessage("load_posted", json.RawMessage(`{}`)))

	assert.Len(t, a.MessageChan, 1)
	assert.Len(t, anon.MessageChan, 1)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	userA := "user-a"
	a := notification.NewSSEClient("client-1", &userA)
	hub.Register(a)
	hub.Unregister("client-1")

	assert.Zero(t, hub.ClientCount())
	_, open := <-a.MessageChan
	assert.False(t, open)

	// Unregistering an unknown client is a no-op.
	hub.Unregister("client-1")
}

func TestHub_SlowClientDropsMessages(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	userA := "user-a"
	a := notification.NewSSEClient("client-1", &userA)
	hub.Register(a)

	for i := 0; i < 150; i++ {
		hub.BroadcastToUser(userA, notification.NewSSEMessage("load_transition", json.RawMessage(`{}`)))
	}

	// The channel buffers 100; the overflow is dropped, not blocked on.
	assert.Len(t, a.MessageChan, 100)
}
