package server

import (
	"time"

	"bazar/internal/middleware"
	"bazar/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired gates the /api/admin group: the authenticated user must have
// the admin flag. Runs after AuthRequired.
func (s *Server) AdminRequired(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if !user.IsAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Administrator access required"))
	}
	return c.Next()
}

type adminUserSummary struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	CompanyName  string    `json:"company_name,omitempty"`
	PersonType   string    `json:"person_type"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	ListingCount int64     `json:"listing_count"`
}

// AdminListUsers handles GET /api/admin/users: every account, newest first,
// with the number of listings each one holds.
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	var rows []adminUserSummary
	err := s.db.WithContext(c.Context()).
		Model(&models.User{}).
		Select("users.id, users.email, users.first_name, users.last_name, users.company_name, users.person_type, users.is_admin, users.created_at, COUNT(listings.id) AS listing_count").
		Joins("LEFT JOIN listings ON listings.user_id = users.id AND listings.deleted_at IS NULL").
		Group("users.id").
		Order("users.created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Scan(&rows).Error
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(rows)
}

// AdminListListings handles GET /api/admin/listings: all listings regardless
// of status, with owner info, newest first.
func (s *Server) AdminListListings(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	var listings []models.Listing
	err := s.db.WithContext(c.Context()).
		Preload("User").
		Order("created_at DESC").
		Limit(p.Limit).
		Offset(p.Offset).
		Find(&listings).Error
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.JSON(listings)
}

// AdminDeleteListing handles DELETE /api/admin/listings/:id — the
// administrative removal path, same cascade as the owner's delete.
func (s *Server) AdminDeleteListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.listingService.AdminDelete(c.Context(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "listing removed by admin",
		"listing_id", id, "admin_id", currentUserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminDeleteUser handles DELETE /api/admin/users/:userId. Admin accounts
// cannot be deleted this way.
func (s *Server) AdminDeleteUser(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	target, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if target.IsAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Cannot delete administrator accounts"))
	}

	if err := s.deleteUserCascade(c.Context(), userID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "user removed by admin",
		"user_id", userID, "admin_id", currentUserID(c))
	return c.SendStatus(fiber.StatusNoContent)
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type platformStats struct {
	TotalUsers     int64           `json:"total_users"`
	TotalListings  int64           `json:"total_listings"`
	ActiveListings int64           `json:"active_listings"`
	TotalValue     float64         `json:"total_value"`
	NewUsers24h    int64           `json:"new_users_24h"`
	NewListings24h int64           `json:"new_listings_24h"`
	Categories     []categoryCount `json:"categories"`
}

// AdminStats handles GET /api/admin/stats: platform-wide totals, last-24h
// activity and the category distribution of listings.
func (s *Server) AdminStats(c *fiber.Ctx) error {
	ctx := c.Context()
	db := s.db.WithContext(ctx)
	since := time.Now().Add(-24 * time.Hour)

	var stats platformStats
	steps := []error{
		db.Model(&models.User{}).Count(&stats.TotalUsers).Error,
		db.Model(&models.Listing{}).Count(&stats.TotalListings).Error,
		db.Model(&models.Listing{}).Where("status = ?", models.ListingStatusActive).
			Count(&stats.ActiveListings).Error,
		db.Model(&models.User{}).Where("created_at >= ?", since).
			Count(&stats.NewUsers24h).Error,
		db.Model(&models.Listing{}).Where("created_at >= ?", since).
			Count(&stats.NewListings24h).Error,
		db.Model(&models.Listing{}).Select("COALESCE(SUM(price), 0)").
			Row().Scan(&stats.TotalValue),
		db.Model(&models.Listing{}).
			Select("category, COUNT(*) AS count").
			Where("category <> ''").
			Group("category").
			Order("count DESC").
			Scan(&stats.Categories).Error,
	}
	for _, err := range steps {
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
	}
	return c.JSON(stats)
}
