package dto

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// BusinessRequest represents the request to create or replace a business profile
type BusinessRequest struct {
	Name           string              `json:"name" binding:"required"`
	BusinessType   string              `json:"business_type" binding:"required"`
	LegalStructure *string             `json:"legal_structure"`
	Description    *string             `json:"description"`
	StreetAddress  *string             `json:"street_address"`
	Suburb         *string             `json:"suburb"`
	City           *string             `json:"city"`
	Region         *string             `json:"region"`
	PostalCode     *string             `json:"postal_code"`
	Country        *string             `json:"country"`
	Email          *string             `json:"email"`
	Phone          *string             `json:"phone"`
	Mobile         *string             `json:"mobile"`
	Website        *string             `json:"website"`
	FacebookURL    *string             `json:"facebook_url"`
	LinkedInURL    *string             `json:"linkedin_url"`
	InstagramURL   *string             `json:"instagram_url"`
	LogoURL        *string             `json:"logo_url"`
	CoverImageURL  *string             `json:"cover_image_url"`
	Gallery        []string            `json:"gallery"`
	WorkingHours   models.WorkingHours `json:"working_hours"`
	Branches       models.Branches     `json:"branches"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
}

// ToModel converts the request into a business model
func (r *BusinessRequest) ToModel() *models.Business {
	return &models.Business{
		Name:           r.Name,
		BusinessType:   r.BusinessType,
		LegalStructure: r.LegalStructure,
		Description:    r.Description,
		StreetAddress:  r.StreetAddress,
		Suburb:         r.Suburb,
		City:           r.City,
		Region:         r.Region,
		PostalCode:     r.PostalCode,
		Country:        r.Country,
		Email:          r.Email,
		Phone:          r.Phone,
		Mobile:         r.Mobile,
		Website:        r.Website,
		FacebookURL:    r.FacebookURL,
		LinkedInURL:    r.LinkedInURL,
		InstagramURL:   r.InstagramURL,
		LogoURL:        r.LogoURL,
		CoverImageURL:  r.CoverImageURL,
		Gallery:        r.Gallery,
		WorkingHours:   r.WorkingHours,
		Branches:       r.Branches,
		Latitude:       r.Latitude,
		Longitude:      r.Longitude,
	}
}

// UpdateLocationRequest represents a geocoding result posted by the owner
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Status    string   `json:"status" binding:"required,geocoding_status"`
}

// CategoryEndorsementRequest represents the request to toggle a category endorsement
type CategoryEndorsementRequest struct {
	Category string `json:"category" binding:"required,endorsement_category"`
}

// RecommendationRequest represents the request to create or update a recommendation
type RecommendationRequest struct {
	RelationshipType string   `json:"relationship_type" binding:"required,relationship_type"`
	Tags             []string `json:"tags" binding:"omitempty,max=3,dive,endorsement_category"`
}

// ListingRequest represents the request to create or replace a listing
type ListingRequest struct {
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	Price        *float64       `json:"price"`
	PriceType    *string        `json:"price_type"`
	City         *string        `json:"city"`
	Region       *string        `json:"region"`
	ContactName  *string        `json:"contact_name"`
	ContactPhone *string        `json:"contact_phone"`
	ContactEmail *string        `json:"contact_email"`
	Images       []string       `json:"images"`
	Details      models.Details `json:"details"`
}

// ToModel converts the request into a listing of the given category
func (r *ListingRequest) ToModel(category models.ListingCategory) *models.Listing {
	return &models.Listing{
		Category:     category,
		Title:        r.Title,
		Description:  r.Description,
		Price:        r.Price,
		PriceType:    r.PriceType,
		City:         r.City,
		Region:       r.Region,
		ContactName:  r.ContactName,
		ContactPhone: r.ContactPhone,
		ContactEmail: r.ContactEmail,
		Images:       r.Images,
		Details:      r.Details,
	}
}

// ContactBusinessRequest represents a visitor's message to a business
type ContactBusinessRequest struct {
	BusinessID uuid.UUID `json:"business_id" binding:"required"`
	Message    string    `json:"message" binding:"required"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
}

// UpdateProfileRequest represents the request to update the current user's profile
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

// ToModel converts the request into a profile model
func (r *UpdateProfileRequest) ToModel() *models.Profile {
	return &models.Profile{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		FullName:  r.FullName,
		Phone:     r.Phone,
		AvatarURL: r.AvatarURL,
	}
}
