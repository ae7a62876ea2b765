// Package seed provides helpers to create demo data for the marketplace
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"bazar/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var categories = []string{
	"Auto", "Electronice", "Imobiliare", "Moda", "Casa si Gradina",
	"Sport", "Animale", "Servicii", "Locuri de munca",
}

var conditions = []string{"new", "like new", "good", "used", "for parts"}

var cities = []string{
	"Bucuresti", "Cluj-Napoca", "Timisoara", "Iasi", "Constanta",
	"Craiova", "Brasov", "Galati", "Oradea", "Sibiu",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
	seq int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user. Roughly one in five is an
// organization. Optional override functions may modify the generated user
// before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Parola-demo-123"), bcrypt.DefaultCost)

	// Sequence prefix keeps generated emails unique across large seeds.
	f.seq++
	user := &models.User{
		Email:      fmt.Sprintf("u%d.%s", f.seq, gofakeit.Email()),
		Password:   string(hashedPassword),
		PersonType: models.PersonTypeIndividual,
		FirstName:  gofakeit.FirstName(),
		LastName:   gofakeit.LastName(),
		Phone:      gofakeit.Phone(),
		Location:   cities[f.rng.Intn(len(cities))],
		Verified:   f.rng.Intn(3) > 0,
	}
	if f.rng.Intn(5) == 0 {
		user.PersonType = models.PersonTypeOrganization
		user.CompanyName = gofakeit.Company()
		user.FirstName = ""
		user.LastName = ""
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateListing constructs and persists an ACTIVE listing owned by the user.
func (f *Factory) CreateListing(user *models.User, overrides ...func(*models.Listing)) (*models.Listing, error) {
	listing := &models.Listing{
		Title:       gofakeit.ProductName(),
		Description: gofakeit.Paragraph(1, 3, 8, "\n"),
		Category:    categories[f.rng.Intn(len(categories))],
		Price:       float64(gofakeit.Number(50, 25000)),
		Currency:    "RON",
		Condition:   conditions[f.rng.Intn(len(conditions))],
		Brand:       gofakeit.Company(),
		Model:       gofakeit.ProductName(),
		Year:        gofakeit.Number(2005, time.Now().Year()),
		Location:    user.Location,
		Status:      models.ListingStatusActive,
		Images: []string{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		},
		UserID: user.ID,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	listing.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(f.rng.Intn(24))*time.Hour)

	for _, override := range overrides {
		override(listing)
	}

	if err := f.db.Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateOffer constructs and persists an offer from buyer on listing, priced
// within 60-100% of the asking price.
func (f *Factory) CreateOffer(listing *models.Listing, buyer *models.User, overrides ...func(*models.Offer)) (*models.Offer, error) {
	ratio := 0.6 + f.rng.Float64()*0.4
	offer := &models.Offer{
		ListingID: listing.ID,
		BuyerID:   buyer.ID,
		Amount:    float64(int(listing.Price * ratio)),
		Currency:  listing.Currency,
		Status:    models.OfferStatusPending,
	}

	for _, override := range overrides {
		override(offer)
	}

	if err := f.db.Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// CreateMessage constructs and persists a chat message on the offer's
// conversation.
func (f *Factory) CreateMessage(offer *models.Offer, senderID, receiverID uint) (*models.Message, error) {
	msg := &models.Message{
		Content:    gofakeit.Sentence(f.rng.Intn(12) + 3),
		SenderID:   senderID,
		ReceiverID: receiverID,
		OfferID:    offer.ID,
	}
	if err := f.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}
