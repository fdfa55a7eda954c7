package models

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ListingCategory категория объявления. Каждой соответствует своя таблица *_ads.
type ListingCategory string

const (
	ListingMaterials ListingCategory = "materials"
	ListingPlant     ListingCategory = "plant"
	ListingVehicles  ListingCategory = "vehicles"
	ListingPersonnel ListingCategory = "personnel"
	ListingPositions ListingCategory = "positions"
	ListingProjects  ListingCategory = "projects"
)

// ListingCategories все категории в порядке отображения.
var ListingCategories = []ListingCategory{
	ListingMaterials,
	ListingPlant,
	ListingVehicles,
	ListingPersonnel,
	ListingPositions,
	ListingProjects,
}

var listingTables = map[ListingCategory]string{
	ListingMaterials: "materials_ads",
	ListingPlant:     "plant_ads",
	ListingVehicles:  "vehicle_ads",
	ListingPersonnel: "personnel_ads",
	ListingPositions: "position_ads",
	ListingProjects:  "project_ads",
}

// listingRequiredDetails ключи details, обязательные при публикации.
var listingRequiredDetails = map[ListingCategory][]string{
	ListingMaterials: {"material_type", "quantity"},
	ListingPlant:     {"equipment_type"},
	ListingVehicles:  {"make", "model", "year"},
	ListingPersonnel: {"trade"},
	ListingPositions: {"job_title", "employment_type"},
	ListingProjects:  {"project_type"},
}

// Table возвращает имя таблицы категории и признак того, что категория известна.
func (c ListingCategory) Table() (string, bool) {
	t, ok := listingTables[c]
	return t, ok
}

// RequiredDetails возвращает ключи details, без которых объявление нельзя опубликовать.
func (c ListingCategory) RequiredDetails() []string {
	return listingRequiredDetails[c]
}

// Details специфичные для категории атрибуты объявления (jsonb).
type Details map[string]interface{}

// Value реализует driver.Valuer.
func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return valueJSON(d)
}

// Scan реализует sql.Scanner.
func (d *Details) Scan(src interface{}) error {
	return scanJSON(src, d)
}

// Listing объявление любой категории.
type Listing struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Category     ListingCategory `db:"-" json:"category"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	Title        string          `db:"title" json:"title"`
	Description  *string         `db:"description" json:"description,omitempty"`
	Price        *float64        `db:"price" json:"price,omitempty"`
	PriceType    *string         `db:"price_type" json:"price_type,omitempty"`
	City         *string         `db:"city" json:"city,omitempty"`
	Region       *string         `db:"region" json:"region,omitempty"`
	ContactName  *string         `db:"contact_name" json:"contact_name,omitempty"`
	ContactPhone *string         `db:"contact_phone" json:"contact_phone,omitempty"`
	ContactEmail *string         `db:"contact_email" json:"contact_email,omitempty"`
	Images       pq.StringArray  `db:"images" json:"images"`
	Details      Details         `db:"details" json:"details"`
	Status       string          `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// ListingFilter параметры публичного списка объявлений.
type ListingFilter struct {
	Query    string
	City     string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Limit    int
	Offset   int
}
