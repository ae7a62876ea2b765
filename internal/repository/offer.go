package repository

import (
	"context"
	"errors"

	"bazar/internal/models"

	"gorm.io/gorm"
)

// OfferRepository defines persistence operations for offers.
type OfferRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Offer, error)
	// GetByIDFull loads the offer with its buyer, listing and listing owner.
	GetByIDFull(ctx context.Context, id uint) (*models.Offer, error)
	ListForListing(ctx context.Context, listingID uint) ([]models.Offer, error)
	ListForBuyer(ctx context.Context, buyerID uint) ([]models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) error
}

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository returns a new OfferRepository implementation.
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Offer", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &offer, nil
}

func (r *offerRepository) GetByIDFull(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Listing").
		Preload("Listing.User").
		First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Offer", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &offer, nil
}

func (r *offerRepository) ListForListing(ctx context.Context, listingID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) ListForBuyer(ctx context.Context, buyerID uint) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.User").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&offers).Error
	return offers, err
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}
