package server

import (
	"context"

	"bazar/internal/cache"
	"bazar/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		CompanyName *string `json:"company_name"`
		Phone       *string `json:"phone"`
		Location    *string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.CompanyName != nil {
		user.CompanyName = *req.CompanyName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(user)
}

// DeleteMyAccount handles DELETE /api/users/me. The cascade removes the
// user's listings with their offers and messages, the user's own offers on
// other listings with their messages, and finally the account.
func (s *Server) DeleteMyAccount(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if err := s.deleteUserCascade(c.Context(), userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// deleteUserCascade removes a user and everything hanging off the account in
// one transaction. Shared by account self-deletion and the admin override.
func (s *Server) deleteUserCascade(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ownListings := tx.Model(&models.Listing{}).Select("id").Where("user_id = ?", userID)
		affectedOffers := tx.Model(&models.Offer{}).Select("id").
			Where("buyer_id = ? OR listing_id IN (?)", userID, ownListings)

		if err := tx.Where("offer_id IN (?)", affectedOffers).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("buyer_id = ? OR listing_id IN (?)", userID, ownListings).
			Delete(&models.Offer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Listing{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, userID).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, userID)
	return nil
}
