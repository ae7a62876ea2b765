package models

import (
	"time"
)

// Offer lifecycle states. PENDING is the only non-terminal state: accepting
// an offer rejects every sibling on the same listing in one transaction, and
// a terminal offer never transitions again.
const (
	OfferStatusPending  = "PENDING"
	OfferStatusAccepted = "ACCEPTED"
	OfferStatusRejected = "REJECTED"
)

// Offer is a bid made by a non-owner user ("buyer") against a listing.
type Offer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ListingID uint      `gorm:"not null;index" json:"listing_id"`
	Listing   Listing   `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	BuyerID   uint      `gorm:"not null;index" json:"buyer_id"`
	Buyer     User      `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Currency  string    `gorm:"size:3;not null" json:"currency"`
	Status    string    `gorm:"index;not null;default:PENDING" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the offer has reached a final state.
func (o *Offer) Terminal() bool {
	return o.Status == OfferStatusAccepted || o.Status == OfferStatusRejected
}

// OfferView is an offer annotated with the buyer's display identity, as
// returned to the listing owner.
type OfferView struct {
	ID        uint          `json:"id"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Buyer     PublicProfile `json:"buyer"`
}
