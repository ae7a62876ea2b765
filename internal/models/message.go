package models

import (
	"time"
)

// Message is a chat message scoped to exactly one accepted offer. The offer id
// doubles as the conversation identifier; there is no separate conversation
// entity. Messages are immutable once created.
type Message struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	SenderID   uint       `gorm:"not null;index" json:"sender_id"`
	Sender     User       `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID uint       `gorm:"not null;index" json:"receiver_id"`
	OfferID    uint       `gorm:"not null;index" json:"offer_id"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ConversationView is the resolved buyer/seller pairing for an accepted offer.
type ConversationView struct {
	ID      uint           `json:"id"` // offer id, the conversation key
	Listing ListingSummary `json:"listing"`
	Buyer   PublicProfile  `json:"buyer"`
	Seller  PublicProfile  `json:"seller"`
}

// ListingSummary is the short listing projection embedded in conversation
// payloads.
type ListingSummary struct {
	ID       uint     `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency"`
	Images   []string `json:"images,omitempty"`
}

// ConversationListItem is one entry in a user's conversation inbox.
type ConversationListItem struct {
	OfferID     uint            `json:"offer_id"`
	OtherUser   PublicProfile   `json:"other_user"`
	Listing     ListingSummary  `json:"listing"`
	LastMessage *MessagePreview `json:"last_message"`
	UnreadCount int64           `json:"unread_count"`
}

// MessagePreview is the last-message projection for the inbox.
type MessagePreview struct {
	Content    string    `json:"content"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}
