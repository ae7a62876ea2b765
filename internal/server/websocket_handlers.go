package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bazar/internal/middleware"
	"bazar/internal/notifications"
	"bazar/internal/observability"
	"bazar/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketChatHandler handles websocket connections for real-time chat.
// Every room-scoped action (join, message, typing) is authorized against the
// offer's participants; failures are reported back to the sender as "error"
// events instead of being dropped silently.
func (s *Server) WebSocketChatHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		ctx := context.Background()

		userIDVal := conn.Locals("userID")
		if userIDVal == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"unauthorized"}}`))
			_ = conn.Close()
			return
		}
		userID := userIDVal.(uint)

		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			middleware.Logger.Warn("websocket user lookup failed", "user_id", userID, "error", err)
			_ = conn.Close()
			return
		}
		senderName := user.DisplayName()

		client, err := s.chatHub.Register(userID, conn)
		if err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","payload":{"message":"`+err.Error()+`"}}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *notifications.Client, raw []byte) {
			var event notifications.ChatEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				s.sendWSError(c, 0, "Invalid message format")
				return
			}

			switch event.Type {
			case "join":
				if err := s.chatService.Authorize(ctx, event.OfferID, userID); err != nil {
					s.sendWSError(c, event.OfferID, "Not authorized for this conversation")
					return
				}
				s.chatHub.JoinConversation(userID, event.OfferID)

				response := notifications.ChatEvent{
					Type:    "joined",
					OfferID: event.OfferID,
					Payload: map[string]interface{}{"offer_id": event.OfferID},
				}
				if responseJSON, err := json.Marshal(response); err == nil {
					c.TrySend(responseJSON)
				}

			case "leave":
				s.chatHub.LeaveConversation(userID, event.OfferID)

			case "typing":
				if !s.chatHub.InConversation(userID, event.OfferID) {
					s.sendWSError(c, event.OfferID, "Join the conversation first")
					return
				}
				// Cap typing indicators to 10 per 10 seconds per user.
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "typing", id, 10, 10*time.Second)
				if !allowed {
					return
				}

				isTyping := false
				if payload, ok := event.Payload.(map[string]interface{}); ok {
					isTyping, _ = payload["is_typing"].(bool)
				}
				if s.notifier != nil {
					if perr := s.notifier.PublishTypingIndicator(ctx, event.OfferID, userID, senderName, isTyping); perr != nil {
						middleware.Logger.Warn("publish typing failed", "error", perr)
					}
				} else {
					s.chatHub.BroadcastToConversation(event.OfferID, notifications.ChatEvent{
						Type:       "typing",
						OfferID:    event.OfferID,
						UserID:     userID,
						SenderName: senderName,
						Payload:    map[string]interface{}{"is_typing": isTyping},
					})
				}

			case "message":
				content := ""
				if payload, ok := event.Payload.(map[string]interface{}); ok {
					content, _ = payload["content"].(string)
				}

				// Same rate as the HTTP send endpoint.
				id := fmt.Sprintf("user:%d", userID)
				allowed, _ := middleware.CheckRateLimit(ctx, s.redis, "send_chat", id, 30, time.Minute)
				if !allowed {
					s.sendWSError(c, event.OfferID, "Rate limit exceeded. Please wait a moment.")
					return
				}

				msg, err := s.chatService.SendMessage(ctx, service.SendMessageInput{
					SenderID: userID,
					OfferID:  event.OfferID,
					Content:  content,
				})
				if err != nil {
					s.sendWSError(c, event.OfferID, err.Error())
					return
				}
				observability.ChatMessages.WithLabelValues("websocket").Inc()

				outbound := notifications.ChatEvent{
					Type:       "new_message",
					OfferID:    event.OfferID,
					UserID:     userID,
					SenderName: senderName,
					Payload:    msg,
				}
				if s.notifier != nil {
					outboundJSON, err := json.Marshal(outbound)
					if err != nil {
						middleware.Logger.Error("marshal chat message failed", "error", err)
						return
					}
					if perr := s.notifier.PublishChatMessage(ctx, event.OfferID, string(outboundJSON)); perr != nil {
						middleware.Logger.Warn("publish chat message failed", "error", perr)
						s.chatHub.BroadcastToConversation(event.OfferID, outbound)
					}
				} else {
					s.chatHub.BroadcastToConversation(event.OfferID, outbound)
				}

			default:
				s.sendWSError(c, event.OfferID, "Unknown event type")
			}
		}

		welcome := notifications.ChatEvent{
			Type:    "connected",
			UserID:  userID,
			Payload: map[string]interface{}{"user_id": userID, "name": senderName},
		}
		if welcomeJSON, err := json.Marshal(welcome); err == nil {
			client.TrySend(welcomeJSON)
		}

		go client.WritePump()

		// Read pump runs in the handler goroutine (blocking).
		client.ReadPump()
	})
}

// sendWSError delivers an "error" event to a single client.
func (s *Server) sendWSError(c *notifications.Client, offerID uint, message string) {
	event := notifications.ChatEvent{
		Type:    "error",
		OfferID: offerID,
		Payload: map[string]string{"message": message},
	}
	if eventJSON, err := json.Marshal(event); err == nil {
		c.TrySend(eventJSON)
	}
}
