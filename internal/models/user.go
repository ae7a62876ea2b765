// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Person types distinguish private sellers from registered businesses.
const (
	PersonTypeIndividual   = "individual"
	PersonTypeOrganization = "organization"
)

// User represents an account in the Bazar marketplace.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"unique;not null" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	PersonType  string         `gorm:"not null;default:individual" json:"person_type"`
	FirstName   string         `json:"first_name,omitempty"`
	LastName    string         `json:"last_name,omitempty"`
	CompanyName string         `json:"company_name,omitempty"`
	Phone       string         `json:"phone,omitempty"`
	Location    string         `json:"location,omitempty"`
	Verified    bool           `json:"verified"`
	IsAdmin     bool           `json:"is_admin"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Listings    []Listing      `gorm:"foreignKey:UserID" json:"listings,omitempty"`
}

// DisplayName returns the user-facing name: "First Last" for individuals,
// the company name for organizations, falling back to the email address.
func (u *User) DisplayName() string {
	switch u.PersonType {
	case PersonTypeOrganization:
		if u.CompanyName != "" {
			return u.CompanyName
		}
	default:
		full := strings.TrimSpace(u.FirstName + " " + u.LastName)
		if full != "" {
			return full
		}
		if u.CompanyName != "" {
			return u.CompanyName
		}
	}
	return u.Email
}

// PublicProfile is the subset of user fields safe to expose to other users.
type PublicProfile struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	PersonType string `json:"person_type"`
	Location   string `json:"location,omitempty"`
	Verified   bool   `json:"verified"`
}

// Public returns the public projection of the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		Name:       u.DisplayName(),
		Email:      u.Email,
		PersonType: u.PersonType,
		Location:   u.Location,
		Verified:   u.Verified,
	}
}
