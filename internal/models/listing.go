package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing statuses. ACTIVE listings are visible in browse results; the other
// states are terminal.
const (
	ListingStatusActive = "ACTIVE"
	ListingStatusSold   = "SOLD"
	ListingStatusClosed = "CLOSED"
)

// Listing represents an item put up for sale by exactly one user.
// Only the owning user may update or delete it.
type Listing struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"index" json:"category"`
	Price       float64        `gorm:"not null" json:"price"`
	Currency    string         `gorm:"size:3;not null" json:"currency"`
	Condition   string         `json:"condition"`
	Brand       string         `json:"brand"`
	Model       string         `json:"model"`
	Year        int            `json:"year"`
	Location    string         `json:"location"`
	Status      string         `gorm:"index;not null;default:ACTIVE" json:"status"`
	Images      []string       `gorm:"serializer:json" json:"images"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// OwnedBy reports whether the given user owns this listing.
func (l *Listing) OwnedBy(userID uint) bool {
	return l.UserID == userID
}
