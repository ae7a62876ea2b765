package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"bazar/internal/middleware"
	"bazar/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// ChatHub manages websocket clients for offer conversations. Rooms are keyed
// by offer id; a user joins the room for an offer only after the server has
// verified they are a participant of that accepted offer.
type ChatHub struct {
	mu sync.RWMutex

	// offerID -> set of userIDs present in the room
	rooms map[uint]map[uint]struct{}

	// userID -> set of offerIDs the user has joined
	userRooms map[uint]map[uint]struct{}

	// userID -> set of active clients (multi-device)
	userConns map[uint]map[*Client]bool
}

// Name returns a human-readable identifier for this hub.
func (h *ChatHub) Name() string { return "chat hub" }

// ChatEvent is the wire format for every event delivered over the chat
// websocket, server-to-client and client-to-server alike.
type ChatEvent struct {
	Type       string      `json:"type"` // "message", "new_message", "typing", "joined", "left", "error"
	OfferID    uint        `json:"offer_id,omitempty"`
	UserID     uint        `json:"user_id,omitempty"`
	SenderName string      `json:"sender_name,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
}

// NewChatHub creates a new ChatHub instance.
func NewChatHub() *ChatHub {
	return &ChatHub{
		rooms:     make(map[uint]map[uint]struct{}),
		userRooms: make(map[uint]map[uint]struct{}),
		userConns: make(map[uint]map[*Client]bool),
	}
}

// Register creates a client for the user's websocket connection. Fails when
// the per-user connection limit is reached.
func (h *ChatHub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*Client]bool)
	}
	if len(h.userConns[userID]) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, fmt.Errorf("user connection limit reached")
	}

	client := NewClient(h, conn, userID)
	h.userConns[userID][client] = true
	h.mu.Unlock()

	observability.ActiveWebSockets.Inc()
	middleware.Logger.Info("chat client registered", "user_id", userID)
	return client, nil
}

// UnregisterClient removes a client. When the user's last client goes away,
// the user is also removed from every room they had joined.
func (h *ChatHub) UnregisterClient(client *Client) {
	h.mu.Lock()

	clients, ok := h.userConns[client.UserID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, present := clients[client]; !present {
		h.mu.Unlock()
		return
	}
	delete(clients, client)
	observability.ActiveWebSockets.Dec()

	if len(clients) > 0 {
		h.mu.Unlock()
		middleware.Logger.Info("chat client unregistered", "user_id", client.UserID, "remaining", len(clients))
		return
	}
	delete(h.userConns, client.UserID)

	if rooms, ok := h.userRooms[client.UserID]; ok {
		for offerID := range rooms {
			if members, ok := h.rooms[offerID]; ok {
				delete(members, client.UserID)
				if len(members) == 0 {
					delete(h.rooms, offerID)
				}
			}
		}
		delete(h.userRooms, client.UserID)
	}
	h.mu.Unlock()

	middleware.Logger.Info("chat user disconnected", "user_id", client.UserID)
}

// JoinConversation adds the user to an offer's room. Authorization happens
// before this call; the hub only tracks membership.
func (h *ChatHub) JoinConversation(userID, offerID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.userConns[userID]; !ok {
		middleware.Logger.Warn("join for disconnected user", "user_id", userID, "offer_id", offerID)
		return
	}

	if h.rooms[offerID] == nil {
		h.rooms[offerID] = make(map[uint]struct{})
	}
	h.rooms[offerID][userID] = struct{}{}

	if h.userRooms[userID] == nil {
		h.userRooms[userID] = make(map[uint]struct{})
	}
	h.userRooms[userID][offerID] = struct{}{}
}

// LeaveConversation removes the user from an offer's room.
func (h *ChatHub) LeaveConversation(userID, offerID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[offerID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.rooms, offerID)
		}
	}
	if rooms, ok := h.userRooms[userID]; ok {
		delete(rooms, offerID)
	}
}

// InConversation reports whether the user has joined the offer's room.
func (h *ChatHub) InConversation(userID, offerID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rooms, ok := h.userRooms[userID]
	if !ok {
		return false
	}
	_, joined := rooms[offerID]
	return joined
}

// RoomMembers returns the userIDs currently in an offer's room.
func (h *ChatHub) RoomMembers(offerID uint) []uint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[offerID]
	if !ok {
		return []uint{}
	}
	result := make([]uint, 0, len(members))
	for userID := range members {
		result = append(result, userID)
	}
	return result
}

// BroadcastToConversation delivers an event to every client of every user in
// the offer's room.
func (h *ChatHub) BroadcastToConversation(offerID uint, event ChatEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[offerID]
	if !ok {
		return
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		middleware.Logger.Error("marshal chat event failed", "error", err)
		return
	}

	for userID := range members {
		if clients, ok := h.userConns[userID]; ok {
			for client := range clients {
				client.TrySend(eventJSON)
			}
		}
	}
	observability.WebSocketEvents.WithLabelValues(event.Type).Inc()
}

// StartWiring subscribes the hub to Redis so events published by any instance
// reach the clients connected here.
func (h *ChatHub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartChatSubscriber(ctx, func(channel, payload string) {
		var offerID uint
		var eventType string

		if _, err := fmt.Sscanf(channel, "chat:offer:%d", &offerID); err == nil {
			eventType = "new_message"
		} else if _, err := fmt.Sscanf(channel, "typing:offer:%d", &offerID); err == nil {
			eventType = "typing"
		} else {
			middleware.Logger.Warn("unknown chat channel", "channel", channel)
			return
		}

		var event ChatEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			middleware.Logger.Error("decode chat event failed", "channel", channel, "error", err)
			return
		}
		if event.Type == "" {
			event.Type = eventType
		}
		event.OfferID = offerID

		h.BroadcastToConversation(offerID, event)
	})
}

// Shutdown gracefully closes all websocket connections.
func (h *ChatHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.userConns {
		for client := range clients {
			if err := client.Conn.WriteMessage(websocket.TextMessage,
				[]byte(`{"type":"server_shutdown","payload":{"message":"Server is shutting down"}}`)); err != nil {
				middleware.Logger.Warn("shutdown notice failed", "user_id", userID, "error", err)
			}
			if err := client.Conn.Close(); err != nil {
				middleware.Logger.Warn("close websocket failed", "user_id", userID, "error", err)
			}
		}
	}

	h.rooms = make(map[uint]map[uint]struct{})
	h.userRooms = make(map[uint]map[uint]struct{})
	h.userConns = make(map[uint]map[*Client]bool)
	return nil
}
