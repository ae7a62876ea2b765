// Package service provides application business logic (listings, offers, chat).
package service

import (
	"context"
	"time"

	"bazar/internal/cache"
	"bazar/internal/models"
	"bazar/internal/repository"
	"bazar/internal/validation"

	"gorm.io/gorm"
)

// ListingService provides listing CRUD with ownership enforcement.
type ListingService struct {
	listingRepo     repository.ListingRepository
	db              *gorm.DB
	defaultCurrency string
}

// NewListingService returns a new ListingService.
func NewListingService(listingRepo repository.ListingRepository, db *gorm.DB, defaultCurrency string) *ListingService {
	if defaultCurrency == "" {
		defaultCurrency = "RON"
	}
	return &ListingService{
		listingRepo:     listingRepo,
		db:              db,
		defaultCurrency: defaultCurrency,
	}
}

// AuthorizeMutation succeeds iff the requester owns the listing. Pure check,
// used by listing updates/deletes.
func AuthorizeMutation(listing *models.Listing, requesterID uint) error {
	if !listing.OwnedBy(requesterID) {
		return models.NewForbiddenError("Only the listing owner may modify it")
	}
	return nil
}

// AuthorizeOfferCreation fails when the buyer owns the listing (self-offer
// prevention).
func AuthorizeOfferCreation(listing *models.Listing, buyerID uint) error {
	if listing.OwnedBy(buyerID) {
		return models.NewForbiddenError("Cannot offer on own listing")
	}
	return nil
}

// CreateListingInput is the input for creating a listing.
type CreateListingInput struct {
	UserID      uint
	Title       string
	Description string
	Category    string
	Price       float64
	Currency    string
	Condition   string
	Brand       string
	Model       string
	Year        int
	Location    string
	Images      []string
}

// Create validates input, applies defaults and persists an ACTIVE listing.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (*models.Listing, error) {
	if err := validation.ValidateListingTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateAmount(in.Price); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	currency := validation.NormalizeCurrency(in.Currency)
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	year := in.Year
	if year == 0 {
		year = time.Now().Year()
	}
	brand := in.Brand
	if brand == "" {
		brand = "N/A"
	}
	model := in.Model
	if model == "" {
		model = "N/A"
	}

	listing := &models.Listing{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Currency:    currency,
		Condition:   in.Condition,
		Brand:       brand,
		Model:       model,
		Year:        year,
		Location:    in.Location,
		Status:      models.ListingStatusActive,
		Images:      in.Images,
		UserID:      in.UserID,
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.listingRepo.GetByID(ctx, listing.ID)
}

// UpdateListingInput carries partial listing updates; nil fields are left
// unchanged.
type UpdateListingInput struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Currency    *string
	Condition   *string
	Brand       *string
	Model       *string
	Year        *int
	Location    *string
	Images      []string
}

// Update applies a partial update after the ownership check.
func (s *ListingService) Update(ctx context.Context, listingID, requesterID uint, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeMutation(listing, requesterID); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateListingTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		listing.Title = *in.Title
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Category != nil {
		listing.Category = *in.Category
	}
	if in.Price != nil {
		if err := validation.ValidateAmount(*in.Price); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		listing.Price = *in.Price
	}
	if in.Currency != nil {
		currency := validation.NormalizeCurrency(*in.Currency)
		if err := validation.ValidateCurrency(currency); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if currency != "" {
			listing.Currency = currency
		}
	}
	if in.Condition != nil {
		listing.Condition = *in.Condition
	}
	if in.Brand != nil {
		listing.Brand = *in.Brand
	}
	if in.Model != nil {
		listing.Model = *in.Model
	}
	if in.Year != nil {
		listing.Year = *in.Year
	}
	if in.Location != nil {
		listing.Location = *in.Location
	}
	if in.Images != nil {
		listing.Images = in.Images
	}

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes the listing together with its offers and their messages in
// one transaction, after the ownership check. The cascade is explicit so the
// invariant stays visible instead of hiding behind database FK configuration.
func (s *ListingService) Delete(ctx context.Context, listingID, requesterID uint) error {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if err := AuthorizeMutation(listing, requesterID); err != nil {
		return err
	}
	return s.purge(ctx, listingID)
}

// AdminDelete is the administrative override: the same cascade as Delete,
// without the ownership check.
func (s *ListingService) AdminDelete(ctx context.Context, listingID uint) error {
	if _, err := s.listingRepo.GetByID(ctx, listingID); err != nil {
		return err
	}
	return s.purge(ctx, listingID)
}

// purge removes the listing together with its offers and their messages in
// one transaction.
func (s *ListingService) purge(ctx context.Context, listingID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"offer_id IN (?)",
			tx.Model(&models.Offer{}).Select("id").Where("listing_id = ?", listingID),
		).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", listingID).Delete(&models.Offer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Listing{}, listingID).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	cache.InvalidateListing(ctx, listingID)
	return nil
}

// Browse returns ACTIVE listings matching the filter, newest first.
func (s *ListingService) Browse(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	return s.listingRepo.ListActive(ctx, filter)
}

// Get returns listing detail through the cache.
func (s *ListingService) Get(ctx context.Context, id uint) (*models.Listing, error) {
	return s.listingRepo.GetByIDCached(ctx, id)
}

// Mine returns the requester's own listings, any status.
func (s *ListingService) Mine(ctx context.Context, userID uint) ([]models.Listing, error) {
	return s.listingRepo.ListByOwner(ctx, userID)
}
