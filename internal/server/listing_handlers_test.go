package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"bazar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListing(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")

	resp, raw := doJSON(t, app, "POST", "/api/listings", authToken(t, s, seller.ID), map[string]interface{}{
		"title":    "Masina de spalat Arctic",
		"price":    1100,
		"category": "Electrocasnice",
		"location": "Cluj-Napoca",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var listing models.Listing
	require.NoError(t, json.Unmarshal(raw, &listing))
	assert.Equal(t, models.ListingStatusActive, listing.Status)
	assert.Equal(t, "RON", listing.Currency)
	assert.Equal(t, time.Now().Year(), listing.Year)
	assert.Equal(t, seller.ID, listing.UserID)
}

func TestCreateListingValidation(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	token := authToken(t, s, seller.ID)

	resp, _ := doJSON(t, app, "POST", "/api/listings", token, map[string]interface{}{
		"price": 100,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/listings", token, map[string]interface{}{
		"title": "Fara pret",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", "/api/listings", token, map[string]interface{}{
		"title": "Pret negativ",
		"price": -50,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBrowseListings(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	for i, title := range []string{"Bicicleta Pegas", "Trotineta electrica", "Bicicleta de munte"} {
		listing := createListingRow(t, db, seller.ID, title, float64(500+i*100))
		if i == 0 {
			listing.Category = "Sport"
			require.NoError(t, db.Save(listing).Error)
		}
	}

	// Browsing is public, no token needed.
	resp, raw := doJSON(t, app, "GET", "/api/listings", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var listings []models.Listing
	require.NoError(t, json.Unmarshal(raw, &listings))
	assert.Len(t, listings, 3)

	resp, raw = doJSON(t, app, "GET", "/api/listings?q=bicicleta", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listings))
	assert.Len(t, listings, 2)

	resp, raw = doJSON(t, app, "GET", "/api/listings?category=Sport", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "Bicicleta Pegas", listings[0].Title)

	resp, raw = doJSON(t, app, "GET", "/api/listings?limit=2", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &listings))
	assert.Len(t, listings, 2)
}

func TestGetListingDetail(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	listing := createListingRow(t, db, seller.ID, "Bicicleta Pegas", 1200)

	resp, raw := doJSON(t, app, "GET", fmt.Sprintf("/api/listings/%d", listing.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var got models.Listing
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, listing.Title, got.Title)
	assert.Equal(t, "Radu Popescu", got.User.DisplayName())

	resp, _ = doJSON(t, app, "GET", "/api/listings/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, "GET", "/api/listings/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateListingOwnerOnly(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	other := createUser(t, db, "other@example.com", "Bianca", "Ionescu")
	listing := createListingRow(t, db, seller.ID, "Bicicleta Pegas", 1200)
	path := fmt.Sprintf("/api/listings/%d", listing.ID)

	resp, raw := doJSON(t, app, "PUT", path, authToken(t, s, other.ID), map[string]interface{}{
		"price": 1,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))

	resp, raw = doJSON(t, app, "PUT", path, authToken(t, s, seller.ID), map[string]interface{}{
		"price":    1000,
		"location": "Timisoara",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var updated models.Listing
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, float64(1000), updated.Price)
	assert.Equal(t, "Timisoara", updated.Location)
	assert.Equal(t, "Bicicleta Pegas", updated.Title)
}

func TestDeleteListingCascades(t *testing.T) {
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

	resp, _ := doJSON(t, app, "DELETE",
		fmt.Sprintf("/api/listings/%d", listing.ID), authToken(t, s, buyer.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, "DELETE",
		fmt.Sprintf("/api/listings/%d", listing.ID), authToken(t, s, seller.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var offerCount, msgCount int64
	require.NoError(t, db.Model(&models.Offer{}).Where("listing_id = ?", listing.ID).Count(&offerCount).Error)
	require.NoError(t, db.Model(&models.Message{}).Where("offer_id = ?", offer.ID).Count(&msgCount).Error)
	assert.Zero(t, offerCount)
	assert.Zero(t, msgCount)

	resp, _ = doJSON(t, app, "GET", fmt.Sprintf("/api/listings/%d", listing.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetMyListings(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	other := createUser(t, db, "other@example.com", "Bianca", "Ionescu")
	createListingRow(t, db, seller.ID, "Bicicleta Pegas", 1200)
	createListingRow(t, db, other.ID, "Trotineta", 600)

	resp, raw := doJSON(t, app, "GET", "/api/users/me/listings", authToken(t, s, seller.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var listings []models.Listing
	require.NoError(t, json.Unmarshal(raw, &listings))
	require.Len(t, listings, 1)
	assert.Equal(t, "Bicicleta Pegas", listings[0].Title)
}
