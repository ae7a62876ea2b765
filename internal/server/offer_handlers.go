package server

import (
	"bazar/internal/models"
	"bazar/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateOffer handles POST /api/offers
func (s *Server) CreateOffer(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		ListingID uint    `json:"listing_id"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ListingID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Listing ID is required"))
	}

	offer, err := s.offerService.Create(c.Context(), service.CreateOfferInput{
		BuyerID:   userID,
		ListingID: req.ListingID,
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// GetOffersForListing handles GET /api/offers/listing/:listingId
func (s *Server) GetOffersForListing(c *fiber.Ctx) error {
	userID := currentUserID(c)
	listingID, err := s.parseID(c, "listingId")
	if err != nil {
		return nil
	}

	offers, err := s.offerService.ListForListing(c.Context(), userID, listingID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(offers)
}

// GetMyOffers handles GET /api/offers/me
func (s *Server) GetMyOffers(c *fiber.Ctx) error {
	userID := currentUserID(c)

	offers, err := s.offerService.ListMine(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(offers)
}

// AcceptOffer handles POST /api/offers/:offerId/accept
func (s *Server) AcceptOffer(c *fiber.Ctx) error {
	userID := currentUserID(c)
	offerID, err := s.parseID(c, "offerId")
	if err != nil {
		return nil
	}

	offer, err := s.offerService.Accept(c.Context(), userID, offerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(offer)
}
