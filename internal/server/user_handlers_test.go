package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"bazar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMyProfile(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	user := createUser(t, db, "ana@example.com", "Ana", "Marin")

	resp, raw := doJSON(t, app, "GET", "/api/users/me", authToken(t, s, user.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var got models.User
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.NotContains(t, string(raw), `"password"`)
}

func TestGetMyProfileRequiresAuth(t *testing.T) {
	s, _ := setupTestServer(t)
	app := newTestApp(s)

	resp, _ := doJSON(t, app, "GET", "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateMyProfilePartial(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	user := createUser(t, db, "ana@example.com", "Ana", "Marin")

	resp, raw := doJSON(t, app, "PUT", "/api/users/me", authToken(t, s, user.ID), map[string]interface{}{
		"phone":    "+40 721 000 000",
		"location": "Brasov",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var got models.User
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "+40 721 000 000", got.Phone)
	assert.Equal(t, "Brasov", got.Location)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, "Marin", got.LastName)
}

func TestDeleteMyAccountCascades(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	buyer := createUser(t, db, "buyer@example.com", "Bianca", "Ionescu")
	listing := createListingRow(t, db, seller.ID, "Bicicleta Pegas", 1200)
	offer := createAcceptedOffer(t, db, listing, buyer.ID, 1000)
	require.NoError(t, db.Create(&models.Message{
		Content:    "Salut",
		SenderID:   buyer.ID,
		ReceiverID: seller.ID,
		OfferID:    offer.ID,
	}).Error)

	resp, _ := doJSON(t, app, "DELETE", "/api/users/me", authToken(t, s, buyer.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The buyer's offers and their messages are gone; the listing survives.
	var offerCount, msgCount, listingCount int64
	require.NoError(t, db.Model(&models.Offer{}).Where("buyer_id = ?", buyer.ID).Count(&offerCount).Error)
	require.NoError(t, db.Model(&models.Message{}).Where("offer_id = ?", offer.ID).Count(&msgCount).Error)
	require.NoError(t, db.Model(&models.Listing{}).Where("id = ?", listing.ID).Count(&listingCount).Error)
	assert.Zero(t, offerCount)
	assert.Zero(t, msgCount)
	assert.Equal(t, int64(1), listingCount)

	// The deleted account can no longer authenticate against protected routes.
	resp, _ = doJSON(t, app, "GET", "/api/users/me", authToken(t, s, buyer.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
