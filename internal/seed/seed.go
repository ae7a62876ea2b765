package seed

import (
	"fmt"
	"math/rand"

	"bazar/internal/middleware"
	"bazar/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumListings int
	ShouldClean bool
}

// Seed populates the database with demo marketplace data: users, listings,
// offers on them, and message history for the conversations of accepted
// offers.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 20
	}
	if opts.NumListings <= 0 {
		opts.NumListings = 60
	}

	middleware.Logger.Info("seeding database", "users", opts.NumUsers, "listings", opts.NumListings)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	for i := 0; i < opts.NumListings; i++ {
		owner := users[rand.Intn(len(users))]
		listing, err := f.CreateListing(owner)
		if err != nil {
			return fmt.Errorf("create listing: %w", err)
		}

		// 0-3 offers per listing, from random non-owner buyers
		numOffers := rand.Intn(4)
		offers := make([]*models.Offer, 0, numOffers)
		for j := 0; j < numOffers; j++ {
			buyer := users[rand.Intn(len(users))]
			if buyer.ID == owner.ID {
				continue
			}
			offer, err := f.CreateOffer(listing, buyer)
			if err != nil {
				return fmt.Errorf("create offer: %w", err)
			}
			offers = append(offers, offer)
		}

		// A third of listings with offers get one accepted, siblings rejected.
		if len(offers) > 0 && rand.Intn(3) == 0 {
			accepted := offers[rand.Intn(len(offers))]
			if err := db.Model(&models.Offer{}).
				Where("id = ?", accepted.ID).
				Update("status", models.OfferStatusAccepted).Error; err != nil {
				return fmt.Errorf("accept offer: %w", err)
			}
			if err := db.Model(&models.Offer{}).
				Where("listing_id = ? AND id <> ?", listing.ID, accepted.ID).
				Update("status", models.OfferStatusRejected).Error; err != nil {
				return fmt.Errorf("reject siblings: %w", err)
			}

			for k := 0; k < rand.Intn(8)+2; k++ {
				senderID, receiverID := accepted.BuyerID, listing.UserID
				if k%2 == 1 {
					senderID, receiverID = listing.UserID, accepted.BuyerID
				}
				if _, err := f.CreateMessage(accepted, senderID, receiverID); err != nil {
					return fmt.Errorf("create message: %w", err)
				}
			}
		}
	}

	middleware.Logger.Info("seeding complete")
	return nil
}

// clearData deletes all marketplace rows in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Message{}, &models.Offer{}, &models.Listing{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
