package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addClient wires a connection-less client straight into the hub so tests can
// exercise room bookkeeping and fanout without a real websocket.
func addClient(hub *ChatHub, userID uint) *Client {
	client := &Client{
		Hub:    hub,
		UserID: userID,
		Send:   make(chan []byte, 10),
	}
	hub.mu.Lock()
	if hub.userConns[userID] == nil {
		hub.userConns[userID] = make(map[*Client]bool)
	}
	hub.userConns[userID][client] = true
	hub.mu.Unlock()
	return client
}

func TestChatHub_JoinLeaveConversation(t *testing.T) {
	hub := NewChatHub()
	addClient(hub, 1)

	hub.JoinConversation(1, 101)
	assert.True(t, hub.InConversation(1, 101))
	assert.Equal(t, []uint{1}, hub.RoomMembers(101))

	hub.LeaveConversation(1, 101)
	assert.False(t, hub.InConversation(1, 101))
	assert.Empty(t, hub.RoomMembers(101))
}

func TestChatHub_JoinRequiresConnection(t *testing.T) {
	hub := NewChatHub()

	// No registered client for user 9, the join is ignored.
	hub.JoinConversation(9, 101)
	assert.False(t, hub.InConversation(9, 101))
}

func TestChatHub_BroadcastToConversation(t *testing.T) {
	hub := NewChatHub()
	client := addClient(hub, 1)
	hub.JoinConversation(1, 101)

	hub.BroadcastToConversation(101, ChatEvent{
		Type:    "new_message",
		OfferID: 101,
		Payload: "Salut",
	})

	var received ChatEvent
	require.NoError(t, json.Unmarshal(<-client.Send, &received))
	assert.Equal(t, "new_message", received.Type)
	assert.Equal(t, uint(101), received.OfferID)
}

func TestChatHub_BroadcastSkipsNonMembers(t *testing.T) {
	hub := NewChatHub()
	participant := addClient(hub, 1)
	outsider := addClient(hub, 2)
	hub.JoinConversation(1, 404)

	hub.BroadcastToConversation(404, ChatEvent{Type: "new_message", OfferID: 404})

	select {
	case <-participant.Send:
	default:
		t.Fatal("participant did not receive the event")
	}

	select {
	case <-outsider.Send:
		t.Fatal("non-member unexpectedly received the event")
	default:
	}
}

func TestChatHub_MultiDeviceFanout(t *testing.T) {
	hub := NewChatHub()
	phone := addClient(hub, 1)
	laptop := addClient(hub, 1)
	hub.JoinConversation(1, 202)

	hub.BroadcastToConversation(202, ChatEvent{Type: "new_message", OfferID: 202})

	select {
	case <-phone.Send:
	default:
		t.Error("first device did not receive the event")
	}
	select {
	case <-laptop.Send:
	default:
		t.Error("second device did not receive the event")
	}
}

func TestChatHub_UnregisterLastClientLeavesRooms(t *testing.T) {
	hub := NewChatHub()
	phone := addClient(hub, 7)
	laptop := addClient(hub, 7)
	hub.JoinConversation(7, 303)

	// One device remains, room membership survives.
	hub.UnregisterClient(phone)
	assert.True(t, hub.InConversation(7, 303))

	hub.UnregisterClient(laptop)
	assert.False(t, hub.InConversation(7, 303))
	assert.Empty(t, hub.RoomMembers(303))

	hub.mu.RLock()
	_, connected := hub.userConns[7]
	hub.mu.RUnlock()
	assert.False(t, connected)
}

func TestChatHub_UnregisterUnknownClient(t *testing.T) {
	hub := NewChatHub()
	stray := &Client{Hub: hub, UserID: 99, Send: make(chan []byte, 1)}

	// Must not panic or disturb hub state.
	hub.UnregisterClient(stray)
	assert.Empty(t, hub.RoomMembers(1))
}

func TestChatHub_StartWiringDeliversRedisEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewChatHub()
	client := addClient(hub, 1)
	hub.JoinConversation(1, 55)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	payload, err := json.Marshal(ChatEvent{Type: "new_message", UserID: 2, Payload: "Buna"})
	require.NoError(t, err)
	require.NoError(t, n.PublishChatMessage(context.Background(), 55, string(payload)))

	select {
	case raw := <-client.Send:
		var event ChatEvent
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "new_message", event.Type)
		assert.Equal(t, uint(55), event.OfferID)
		assert.Equal(t, uint(2), event.UserID)
	case <-time.After(time.Second):
		t.Fatal("redis event did not reach the local client")
	}
}
