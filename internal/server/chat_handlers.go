package server

import (
	"encoding/json"

	"bazar/internal/models"
	"bazar/internal/notifications"
	"bazar/internal/observability"
	"bazar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetConversation handles GET /api/chat/offer/:offerId
func (s *Server) GetConversation(c *fiber.Ctx) error {
	userID := currentUserID(c)
	offerID, err := s.parseID(c, "offerId")
	if err != nil {
		return nil
	}

	conv, err := s.chatService.ResolveConversation(c.Context(), offerID, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(conv)
}

// GetConversations handles GET /api/chat/conversations
func (s *Server) GetConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)

	items, err := s.chatService.Conversations(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// GetMessages handles GET /api/chat/offer/:offerId/messages
func (s *Server) GetMessages(c *fiber.Ctx) error {
	userID := currentUserID(c)
	offerID, err := s.parseID(c, "offerId")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	messages, err := s.chatService.Messages(c.Context(), offerID, userID, p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(messages)
}

// SendMessage handles POST /api/chat/offer/:offerId/messages. The message is
// persisted first, then fanned out to websocket clients via Redis.
func (s *Server) SendMessage(c *fiber.Ctx) error {
	userID := currentUserID(c)
	offerID, err := s.parseID(c, "offerId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, err := s.chatService.SendMessage(c.Context(), service.SendMessageInput{
		SenderID: userID,
		OfferID:  offerID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	observability.ChatMessages.WithLabelValues("http").Inc()

	s.publishNewMessage(c, msg)
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// publishNewMessage fans a persisted message out to the offer's conversation,
// via Redis when available, otherwise directly through the local hub.
func (s *Server) publishNewMessage(c *fiber.Ctx, msg *models.Message) {
	event := notifications.ChatEvent{
		Type:       "new_message",
		OfferID:    msg.OfferID,
		UserID:     msg.SenderID,
		SenderName: msg.Sender.DisplayName(),
		Payload:    msg,
	}

	if s.notifier != nil {
		payload, err := json.Marshal(event)
		if err == nil {
			if err := s.notifier.PublishChatMessage(c.Context(), msg.OfferID, string(payload)); err == nil {
				return
			}
		}
	}
	s.chatHub.BroadcastToConversation(msg.OfferID, event)
}
