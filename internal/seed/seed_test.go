package seed

import (
	"testing"

	"bazar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Offer{},
		&models.Message{},
	))
	return db
}

func TestFactoryCreateUser(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Email)
	assert.NotEmpty(t, user.DisplayName())

	// Overrides win over generated values.
	org, err := f.CreateUser(func(u *models.User) {
		u.PersonType = models.PersonTypeOrganization
		u.CompanyName = "Piese Auto SRL"
	})
	require.NoError(t, err)
	assert.Equal(t, "Piese Auto SRL", org.DisplayName())
}

func TestFactoryCreateListingAndOffer(t *testing.T) {
	db := setupSeedDB(t)
	f := NewFactory(db)

	owner, err := f.CreateUser()
	require.NoError(t, err)
	buyer, err := f.CreateUser()
	require.NoError(t, err)

	listing, err := f.CreateListing(owner)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, listing.UserID)
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	assert.Positive(t, listing.Price)

	offer, err := f.CreateOffer(listing, buyer)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusPending, offer.Status)
	assert.Equal(t, listing.Currency, offer.Currency)
	assert.LessOrEqual(t, offer.Amount, listing.Price)
}

func TestSeedPopulatesMarketplace(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 6, NumListings: 15}))

	var userCount, listingCount, offerCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Listing{}).Count(&listingCount).Error)
	require.NoError(t, db.Model(&models.Offer{}).Count(&offerCount).Error)
	assert.Equal(t, int64(6), userCount)
	assert.Equal(t, int64(15), listingCount)

	// Every accepted offer has no accepted sibling and messages stay between
	// the offer's two participants.
	var accepted []models.Offer
	require.NoError(t, db.Preload("Listing").Where("status = ?", models.OfferStatusAccepted).Find(&accepted).Error)
	for _, offer := range accepted {
		var rivals int64
		require.NoError(t, db.Model(&models.Offer{}).
			Where("listing_id = ? AND status = ? AND id <> ?", offer.ListingID, models.OfferStatusAccepted, offer.ID).
			Count(&rivals).Error)
		assert.Zero(t, rivals, "listing %d has competing accepted offers", offer.ListingID)

		var messages []models.Message
		require.NoError(t, db.Where("offer_id = ?", offer.ID).Find(&messages).Error)
		for _, msg := range messages {
			assert.Contains(t, []uint{offer.BuyerID, offer.Listing.UserID}, msg.SenderID)
			assert.Contains(t, []uint{offer.BuyerID, offer.Listing.UserID}, msg.ReceiverID)
		}
	}

	// No message hangs off a non-accepted offer.
	var strayMessages int64
	require.NoError(t, db.Model(&models.Message{}).
		Joins("JOIN offers ON offers.id = messages.offer_id").
		Where("offers.status <> ?", models.OfferStatusAccepted).
		Count(&strayMessages).Error)
	assert.Zero(t, strayMessages)
}

func TestSeedClean(t *testing.T) {
	db := setupSeedDB(t)

	require.NoError(t, Seed(db, Options{NumUsers: 3, NumListings: 5}))
	require.NoError(t, Seed(db, Options{NumUsers: 3, NumListings: 5, ShouldClean: true}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(3), userCount)
}
