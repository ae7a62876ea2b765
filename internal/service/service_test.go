package service

import (
	"testing"

	"bazar/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.Offer{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, first, last string) *models.User {
	t.Helper()
	user := &models.User{
		Email:      email,
		Password:   "pw",
		PersonType: models.PersonTypeIndividual,
		FirstName:  first,
		LastName:   last,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestListing(t *testing.T, db *gorm.DB, owner *models.User, title string, price float64) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		Title:    title,
		Price:    price,
		Currency: "RON",
		Status:   models.ListingStatusActive,
		UserID:   owner.ID,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}
