package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"bazar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createAcceptedOffer(t *testing.T, db *gorm.DB, listing *models.Listing, buyerID uint, amount float64) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		ListingID: listing.ID,
		BuyerID:   buyerID,
		Amount:    amount,
		Currency:  listing.Currency,
		Status:    models.OfferStatusAccepted,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

func TestSendAndGetMessages(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	buyer := createUser(t, db, "buyer@example.com", "Bianca", "Ionescu")
	listing := createListingRow(t, db, seller.ID, "Canapea extensibila", 900)
	offer := createAcceptedOffer(t, db, listing, buyer.ID, 750)

	buyerToken := authToken(t, s, buyer.ID)
	sellerToken := authToken(t, s, seller.ID)
	msgPath := fmt.Sprintf("/api/chat/offer/%d/messages", offer.ID)

	resp, raw := doJSON(t, app, "POST", msgPath, buyerToken, map[string]interface{}{
		"content": "Se poate livra maine?",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var msg models.Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, buyer.ID, msg.SenderID)
	assert.Equal(t, seller.ID, msg.ReceiverID)
	assert.Equal(t, offer.ID, msg.OfferID)

	resp, raw = doJSON(t, app, "POST", msgPath, sellerToken, map[string]interface{}{
		"content": "Da, dupa ora 18.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, buyer.ID, msg.ReceiverID)

	resp, raw = doJSON(t, app, "GET", msgPath, buyerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var messages []models.Message
	require.NoError(t, json.Unmarshal(raw, &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, "Se poate livra maine?", messages[0].Content)
	assert.Equal(t, "Da, dupa ora 18.", messages[1].Content)
}

func TestSendMessageValidation(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	buyer := createUser(t, db, "buyer@example.com", "Bianca", "Ionescu")
	listing := createListingRow(t, db, seller.ID, "Canapea extensibila", 900)
	offer := createAcceptedOffer(t, db, listing, buyer.ID, 750)

	resp, raw := doJSON(t, app, "POST",
		fmt.Sprintf("/api/chat/offer/%d/messages", offer.ID),
		authToken(t, s, buyer.ID),
		map[string]interface{}{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
}

func TestMessagesRequireAcceptedOffer(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	buyer := createUser(t, db, "buyer@example.com", "Bianca", "Ionescu")
	listing := createListingRow(t, db, seller.ID, "Canapea extensibila", 900)

	offer := &models.Offer{
		ListingID: listing.ID,
		BuyerID:   buyer.ID,
		Amount:    750,
		Currency:  "RON",
		Status:    models.OfferStatusPending,
	}
	require.NoError(t, db.Create(offer).Error)

	path := fmt.Sprintf("/api/chat/offer/%d/messages", offer.ID)
	resp, _ := doJSON(t, app, "GET", path, authToken(t, s, buyer.ID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, "POST", path, authToken(t, s, buyer.ID), map[string]interface{}{
		"content": "Buna!",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGetConversationsInbox(t *testing.T) {
	s, db := setupTestServer(t)
	app := newTestApp(s)

	seller := createUser(t, db, "seller@example.com", "Radu", "Popescu")
	buyer := createUser(t, db, "buyer@example.com", "Bianca", "Ionescu")
	outsider := createUser(t, db, "altcineva@example.com", "Mihai", "Dinu")
	listing := createListingRow(t, db, seller.ID, "Canapea extensibila", 900)
	offer := createAcceptedOffer(t, db, listing, buyer.ID, 750)

	buyerToken := authToken(t, s, buyer.ID)
	msgPath := fmt.Sprintf("/api/chat/offer/%d/messages", offer.ID)
	for _, content := range []string{"Buna ziua", "Mai este disponibila?"} {
		resp, raw := doJSON(t, app, "POST", msgPath, buyerToken, map[string]interface{}{"content": content})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	}

	// Seller sees one conversation with two unread messages from the buyer.
	resp, raw := doJSON(t, app, "GET", "/api/chat/conversations", authToken(t, s, seller.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var items []models.ConversationListItem
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 1)
	assert.Equal(t, offer.ID, items[0].OfferID)
	assert.Equal(t, "Bianca Ionescu", items[0].OtherUser.Name)
	assert.Equal(t, int64(2), items[0].UnreadCount)
	require.NotNil(t, items[0].LastMessage)
	assert.Equal(t, "Mai este disponibila?", items[0].LastMessage.Content)

	// Reading the thread clears the unread counter.
	resp, _ = doJSON(t, app, "GET", msgPath, authToken(t, s, seller.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, raw = doJSON(t, app, "GET", "/api/chat/conversations", authToken(t, s, seller.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &items))
	require.Len(t, items, 1)
	assert.Zero(t, items[0].UnreadCount)

	// An uninvolved user has an empty inbox.
	resp, raw = doJSON(t, app, "GET", "/api/chat/conversations", authToken(t, s, outsider.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &items))
	assert.Empty(t, items)
}
