package server

import (
	"bazar/internal/models"
	"bazar/internal/repository"
	"bazar/internal/service"

	"github.com/gofiber/fiber/v2"
)

type listingPayload struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Currency    *string  `json:"currency"`
	Condition   *string  `json:"condition"`
	Brand       *string  `json:"brand"`
	Model       *string  `json:"model"`
	Year        *int     `json:"year"`
	Location    *string  `json:"location"`
	Images      []string `json:"images"`
}

// CreateListing handles POST /api/listings
func (s *Server) CreateListing(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req listingPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Title == nil || req.Price == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title and price are required"))
	}

	in := service.CreateListingInput{
		UserID: userID,
		Title:  *req.Title,
		Price:  *req.Price,
		Images: req.Images,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Currency != nil {
		in.Currency = *req.Currency
	}
	if req.Condition != nil {
		in.Condition = *req.Condition
	}
	if req.Brand != nil {
		in.Brand = *req.Brand
	}
	if req.Model != nil {
		in.Model = *req.Model
	}
	if req.Year != nil {
		in.Year = *req.Year
	}
	if req.Location != nil {
		in.Location = *req.Location
	}

	listing, err := s.listingService.Create(c.Context(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// GetListings handles GET /api/listings
func (s *Server) GetListings(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.ListingFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	listings, err := s.listingService.Browse(c.Context(), filter)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listings)
}

// GetListing handles GET /api/listings/:id
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	listing, err := s.listingService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listing)
}

// GetMyListings handles GET /api/users/me/listings
func (s *Server) GetMyListings(c *fiber.Ctx) error {
	userID := currentUserID(c)

	listings, err := s.listingService.Mine(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listings)
}

// UpdateListing handles PUT /api/listings/:id
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req listingPayload
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	listing, err := s.listingService.Update(c.Context(), id, userID, service.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Currency:    req.Currency,
		Condition:   req.Condition,
		Brand:       req.Brand,
		Model:       req.Model,
		Year:        req.Year,
		Location:    req.Location,
		Images:      req.Images,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(listing)
}

// DeleteListing handles DELETE /api/listings/:id
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	userID := currentUserID(c)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.listingService.Delete(c.Context(), id, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
