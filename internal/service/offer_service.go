package service

import (
	"context"
	"errors"

	"bazar/internal/models"
	"bazar/internal/observability"
	"bazar/internal/repository"
	"bazar/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OfferService implements the offer lifecycle: creation, listing and the
// accept decision. An offer is PENDING until the listing owner accepts or a
// sibling acceptance rejects it; terminal states never change again.
type OfferService struct {
	offerRepo   repository.OfferRepository
	listingRepo repository.ListingRepository
	db          *gorm.DB
}

// NewOfferService returns a new OfferService.
func NewOfferService(offerRepo repository.OfferRepository, listingRepo repository.ListingRepository, db *gorm.DB) *OfferService {
	return &OfferService{
		offerRepo:   offerRepo,
		listingRepo: listingRepo,
		db:          db,
	}
}

// CreateOfferInput is the input for creating an offer.
type CreateOfferInput struct {
	BuyerID   uint
	ListingID uint
	Amount    float64
	Currency  string
}

// Create places a PENDING offer on a listing. The buyer must not own the
// listing; the currency defaults to the listing's when omitted. A buyer may
// hold several pending offers on the same listing.
func (s *OfferService) Create(ctx context.Context, in CreateOfferInput) (*models.Offer, error) {
	listing, err := s.listingRepo.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if err := AuthorizeOfferCreation(listing, in.BuyerID); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount(in.Amount); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	currency := validation.NormalizeCurrency(in.Currency)
	if err := validation.ValidateCurrency(currency); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if currency == "" {
		currency = listing.Currency
	}

	offer := &models.Offer{
		ListingID: in.ListingID,
		BuyerID:   in.BuyerID,
		Amount:    in.Amount,
		Currency:  currency,
		Status:    models.OfferStatusPending,
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		return nil, err
	}
	observability.OfferDecisions.WithLabelValues("created").Inc()
	return s.offerRepo.GetByIDFull(ctx, offer.ID)
}

// ListForListing returns all offers on a listing, visible only to its owner,
// annotated with the buyer's public profile.
func (s *OfferService) ListForListing(ctx context.Context, requesterID, listingID uint) ([]models.OfferView, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(requesterID) {
		return nil, models.NewForbiddenError("Only the listing owner may view its offers")
	}

	offers, err := s.offerRepo.ListForListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	views := make([]models.OfferView, 0, len(offers))
	for i := range offers {
		views = append(views, models.OfferView{
			ID:        offers[i].ID,
			Amount:    offers[i].Amount,
			Currency:  offers[i].Currency,
			Status:    offers[i].Status,
			CreatedAt: offers[i].CreatedAt,
			Buyer:     offers[i].Buyer.Public(),
		})
	}
	return views, nil
}

// ListMine returns the requester's offers across all listings, newest first.
func (s *OfferService) ListMine(ctx context.Context, buyerID uint) ([]models.Offer, error) {
	return s.offerRepo.ListForBuyer(ctx, buyerID)
}

// Accept marks an offer ACCEPTED and rejects every sibling offer on the same
// listing, atomically. The whole sibling set is row-locked first so that two
// concurrent accepts on the same listing serialize: the loser observes the
// winner's terminal state and gets CONFLICT.
func (s *OfferService) Accept(ctx context.Context, requesterID, offerID uint) (_ *models.Offer, err error) {
	span, ctx := observability.NewSpan(ctx, "offer.accept",
		trace.WithAttributes(attribute.Int("offer.id", int(offerID))))
	defer func() {
		span.SetError(err)
		span.End()
	}()

	// Unlocked pre-read to learn the listing; authoritative state is
	// re-checked under lock inside the transaction.
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	listing, err := s.listingRepo.GetByID(ctx, offer.ListingID)
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(requesterID) {
		return nil, models.NewForbiddenError("Only the listing owner may accept offers")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var siblings []models.Offer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("listing_id = ?", offer.ListingID).
			Order("id").
			Find(&siblings).Error; err != nil {
			return err
		}

		var target *models.Offer
		for i := range siblings {
			if siblings[i].ID == offerID {
				target = &siblings[i]
			}
			if siblings[i].Status == models.OfferStatusAccepted {
				return models.NewConflictError("Listing already has an accepted offer")
			}
		}
		if target == nil {
			return models.NewNotFoundError("Offer", offerID)
		}
		if target.Terminal() {
			return models.NewConflictError("Offer is no longer pending")
		}

		if err := tx.Model(&models.Offer{}).
			Where("id = ?", offerID).
			Update("status", models.OfferStatusAccepted).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Offer{}).
			Where("listing_id = ? AND id <> ? AND status = ?", offer.ListingID, offerID, models.OfferStatusPending).
			Update("status", models.OfferStatusRejected).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			if appErr.Code == "CONFLICT" {
				observability.OfferDecisions.WithLabelValues("conflict").Inc()
			}
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}

	observability.OfferDecisions.WithLabelValues("accepted").Inc()
	return s.offerRepo.GetByIDFull(ctx, offerID)
}
