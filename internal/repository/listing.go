package repository

import (
	"context"
	"errors"
	"strings"

	"bazar/internal/cache"
	"bazar/internal/models"

	"gorm.io/gorm"
)

// ListingFilter narrows listing browse results.
type ListingFilter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetByIDCached(ctx context.Context, id uint) (*models.Listing, error)
	ListActive(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository returns a new ListingRepository implementation.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Preload("User").First(&listing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Listing", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

// GetByIDCached serves listing detail through the cache-aside helper. Writers
// must invalidate via cache.InvalidateListing.
func (r *listingRepository) GetByIDCached(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	err := cache.Aside(ctx, cache.ListingKey(id), &listing, cache.ListingTTL, func() error {
		got, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		listing = *got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) ListActive(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("status = ?", models.ListingStatusActive)

	if filter.Category != "" {
		q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(filter.Category)+"%")
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var listings []models.Listing
	err := q.Order("created_at DESC").Find(&listings).Error
	return listings, err
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, err
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.ID)
	return nil
}
