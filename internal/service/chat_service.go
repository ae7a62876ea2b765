package service

import (
	"context"

	"bazar/internal/models"
	"bazar/internal/repository"
	"bazar/internal/validation"

	"gorm.io/gorm"
)

// ChatService resolves conversations and mediates message exchange. A
// conversation exists for every ACCEPTED offer and only for its buyer and the
// listing owner; the offer id is the conversation key.
type ChatService struct {
	offerRepo repository.OfferRepository
	msgRepo   repository.MessageRepository
	db        *gorm.DB
}

// NewChatService returns a new ChatService.
func NewChatService(offerRepo repository.OfferRepository, msgRepo repository.MessageRepository, db *gorm.DB) *ChatService {
	return &ChatService{
		offerRepo: offerRepo,
		msgRepo:   msgRepo,
		db:        db,
	}
}

// authorizedOffer loads the offer with its listing and participants and
// enforces the conversation access rule: the offer must be ACCEPTED and the
// requester must be the buyer or the listing owner.
func (s *ChatService) authorizedOffer(ctx context.Context, offerID, requesterID uint) (*models.Offer, error) {
	offer, err := s.offerRepo.GetByIDFull(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != models.OfferStatusAccepted {
		return nil, models.NewForbiddenError("Conversation requires an accepted offer")
	}
	if requesterID != offer.BuyerID && requesterID != offer.Listing.UserID {
		return nil, models.NewForbiddenError("Not a participant in this conversation")
	}
	return offer, nil
}

// ResolveConversation returns the buyer/seller pairing for an accepted offer.
func (s *ChatService) ResolveConversation(ctx context.Context, offerID, requesterID uint) (*models.ConversationView, error) {
	offer, err := s.authorizedOffer(ctx, offerID, requesterID)
	if err != nil {
		return nil, err
	}
	return &models.ConversationView{
		ID:      offer.ID,
		Listing: listingSummary(&offer.Listing),
		Buyer:   offer.Buyer.Public(),
		Seller:  offer.Listing.User.Public(),
	}, nil
}

// Authorize reports whether the requester may join the conversation for the
// given offer. Used by the websocket join path.
func (s *ChatService) Authorize(ctx context.Context, offerID, requesterID uint) error {
	_, err := s.authorizedOffer(ctx, offerID, requesterID)
	return err
}

// Conversations returns the user's inbox: one entry per accepted offer they
// participate in, with the other party, a last-message preview and the
// unread count, most recently active first.
func (s *ChatService) Conversations(ctx context.Context, userID uint) ([]models.ConversationListItem, error) {
	var offers []models.Offer
	err := s.db.WithContext(ctx).
		Joins("JOIN listings ON listings.id = offers.listing_id").
		Where("offers.status = ? AND (offers.buyer_id = ? OR listings.user_id = ?)",
			models.OfferStatusAccepted, userID, userID).
		Preload("Buyer").
		Preload("Listing").
		Preload("Listing.User").
		// Last message time drives recency; conversations with no messages
		// yet fall back to the offer's acceptance time.
		Order("COALESCE((SELECT MAX(m.created_at) FROM messages m WHERE m.offer_id = offers.id), offers.updated_at) DESC").
		Find(&offers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	items := make([]models.ConversationListItem, 0, len(offers))
	for i := range offers {
		offer := &offers[i]
		other := &offer.Buyer
		if offer.BuyerID == userID {
			other = &offer.Listing.User
		}

		item := models.ConversationListItem{
			OfferID:   offer.ID,
			OtherUser: other.Public(),
			Listing:   listingSummary(&offer.Listing),
		}
		if last, err := s.msgRepo.LastForOffer(ctx, offer.ID); err == nil && last != nil {
			item.LastMessage = &models.MessagePreview{
				Content:    last.Content,
				SenderID:   last.SenderID,
				SenderName: last.Sender.DisplayName(),
				CreatedAt:  last.CreatedAt,
			}
		}
		if unread, err := s.msgRepo.CountUnread(ctx, offer.ID, userID); err == nil {
			item.UnreadCount = unread
		}
		items = append(items, item)
	}
	return items, nil
}

// Messages returns the conversation history oldest-first and marks messages
// addressed to the requester as read.
func (s *ChatService) Messages(ctx context.Context, offerID, requesterID uint, limit, offset int) ([]models.Message, error) {
	if _, err := s.authorizedOffer(ctx, offerID, requesterID); err != nil {
		return nil, err
	}
	messages, err := s.msgRepo.ListForOffer(ctx, offerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if err := s.msgRepo.MarkRead(ctx, offerID, requesterID); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessageInput is the input for sending a chat message.
type SendMessageInput struct {
	SenderID uint
	OfferID  uint
	Content  string
}

// SendMessage persists a message in the offer's conversation. The receiver is
// derived server-side as the other participant; clients never choose it.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	if err := validation.ValidateMessageContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	offer, err := s.authorizedOffer(ctx, in.OfferID, in.SenderID)
	if err != nil {
		return nil, err
	}

	receiverID := offer.BuyerID
	if in.SenderID == offer.BuyerID {
		receiverID = offer.Listing.UserID
	}

	msg := &models.Message{
		Content:    in.Content,
		SenderID:   in.SenderID,
		ReceiverID: receiverID,
		OfferID:    in.OfferID,
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, models.NewInternalError(err)
	}
	if in.SenderID == offer.BuyerID {
		msg.Sender = offer.Buyer
	} else {
		msg.Sender = offer.Listing.User
	}
	return msg, nil
}

func listingSummary(l *models.Listing) models.ListingSummary {
	return models.ListingSummary{
		ID:       l.ID,
		Title:    l.Title,
		Price:    l.Price,
		Currency: l.Currency,
		Images:   l.Images,
	}
}
