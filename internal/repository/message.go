package repository

import (
	"context"
	"errors"
	"time"

	"bazar/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListForOffer(ctx context.Context, offerID uint, limit, offset int) ([]models.Message, error)
	LastForOffer(ctx context.Context, offerID uint) (*models.Message, error)
	CountUnread(ctx context.Context, offerID, userID uint) (int64, error)
	MarkRead(ctx context.Context, offerID, userID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListForOffer(ctx context.Context, offerID uint, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Fetched DESC to get the latest window, but clients expect ASC.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// LastForOffer returns (nil, nil) when the conversation has no messages yet.
func (r *messageRepository) LastForOffer(ctx context.Context, offerID uint) (*models.Message, error) {
	var msg models.Message
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Preload("Sender").
		Order("created_at DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountUnread counts messages addressed to userID that have not been read.
func (r *messageRepository) CountUnread(ctx context.Context, offerID, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("offer_id = ? AND receiver_id = ? AND read_at IS NULL", offerID, userID).
		Count(&count).Error
	return count, err
}

// MarkRead stamps all messages addressed to userID in the conversation.
func (r *messageRepository) MarkRead(ctx context.Context, offerID, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("offer_id = ? AND receiver_id = ? AND read_at IS NULL", offerID, userID).
		Update("read_at", now).Error
}
