package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// DayHours часы работы в один день недели.
type DayHours struct {
	Open   string `json:"open,omitempty"`
	Close  string `json:"close,omitempty"`
	Closed bool   `json:"closed"`
}

// WorkingHours часы работы по дням недели (monday..sunday).
type WorkingHours map[string]DayHours

// Value реализует driver.Valuer.
func (w WorkingHours) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	return valueJSON(w)
}

// Scan реализует sql.Scanner.
func (w *WorkingHours) Scan(src interface{}) error {
	return scanJSON(src, w)
}

// Branch дополнительный адрес бизнеса.
type Branch struct {
	Name          string `json:"name,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	City          string `json:"city,omitempty"`
	Region        string `json:"region,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// Branches список филиалов, хранится в jsonb.
type Branches []Branch

// Value реализует driver.Valuer.
func (b Branches) Value() (driver.Value, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	return valueJSON(b)
}

// Scan реализует sql.Scanner.
func (b *Branches) Scan(src interface{}) error {
	return scanJSON(src, b)
}

// Business описывает профиль компании.
type Business struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	OwnerID         uuid.UUID      `db:"owner_id" json:"owner_id"`
	Name            string         `db:"name" json:"name"`
	BusinessType    string         `db:"business_type" json:"business_type"`
	LegalStructure  *string        `db:"legal_structure" json:"legal_structure,omitempty"`
	Description     *string        `db:"description" json:"description,omitempty"`
	StreetAddress   *string        `db:"street_address" json:"street_address,omitempty"`
	Suburb          *string        `db:"suburb" json:"suburb,omitempty"`
	City            *string        `db:"city" json:"city,omitempty"`
	Region          *string        `db:"region" json:"region,omitempty"`
	PostalCode      *string        `db:"postal_code" json:"postal_code,omitempty"`
	Country         *string        `db:"country" json:"country,omitempty"`
	Email           *string        `db:"email" json:"email,omitempty"`
	Phone           *string        `db:"phone" json:"phone,omitempty"`
	Mobile          *string        `db:"mobile" json:"mobile,omitempty"`
	Website         *string        `db:"website" json:"website,omitempty"`
	FacebookURL     *string        `db:"facebook_url" json:"facebook_url,omitempty"`
	LinkedInURL     *string        `db:"linkedin_url" json:"linkedin_url,omitempty"`
	InstagramURL    *string        `db:"instagram_url" json:"instagram_url,omitempty"`
	LogoURL         *string        `db:"logo_url" json:"logo_url,omitempty"`
	CoverImageURL   *string        `db:"cover_image_url" json:"cover_image_url,omitempty"`
	Gallery         pq.StringArray `db:"gallery" json:"gallery"`
	WorkingHours    WorkingHours   `db:"working_hours" json:"working_hours,omitempty"`
	Branches        Branches       `db:"branches" json:"branches"`
	Latitude        *float64       `db:"latitude" json:"latitude,omitempty"`
	Longitude       *float64       `db:"longitude" json:"longitude,omitempty"`
	GeocodingStatus string         `db:"geocoding_status" json:"geocoding_status"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// HasCoordinates сообщает, что адрес успешно геокодирован и координаты заданы.
func (b *Business) HasCoordinates() bool {
	return b.GeocodingStatus == GeocodingSuccess && b.Latitude != nil && b.Longitude != nil
}

// BusinessFilter параметры публичного списка компаний.
type BusinessFilter struct {
	Query        string
	BusinessType string
	City         string
	Region       string
	Sort         string
	Limit        int
	Offset       int
}
