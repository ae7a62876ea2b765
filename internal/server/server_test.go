package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bazar/internal/config"
	"bazar/internal/middleware"
	"bazar/internal/models"
	"bazar/internal/notifications"
	"bazar/internal/repository"
	"bazar/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) (*Server, *gorm.DB) {
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

	cfg := &config.Config{
		JWTSecret:       "test-secret-test-secret-test-secret",
		Env:             "test",
		DefaultCurrency: "RON",
	}
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:      cfg,
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		listingRepo: repository.NewListingRepository(db),
		offerRepo:   repository.NewOfferRepository(db),
		messageRepo: repository.NewMessageRepository(db),
		chatHub:     notifications.NewChatHub(),
	}
	s.listingService = service.NewListingService(s.listingRepo, db, cfg.DefaultCurrency)
	s.offerService = service.NewOfferService(s.offerRepo, s.listingRepo, db)
	s.chatService = service.NewChatService(s.offerRepo, s.messageRepo, db)

	return s, db
}

func newTestApp(s *Server) *fiber.App {
	app := fiber.New()
	s.SetupRoutes(app)
	return app
}

// authToken issues a real bearer token so requests pass the auth middleware.
func authToken(t *testing.T, s *Server, userID uint) string {
	t.Helper()
	token, err := s.generateToken(userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	_ = resp.Body.Close()
	return resp, raw
}

func createUser(t *testing.T, db *gorm.DB, email, first, last string) *models.User {
	t.Helper()
	user := &models.User{
		Email:      email,
		Password:   "pw",
		PersonType: models.PersonTypeIndividual,
		FirstName:  first,
		LastName:   last,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
