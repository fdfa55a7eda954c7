package dto

import (
	"github.com/ignatzorin/classifieds-backend/internal/models"
)

// ListResponse represents a page of items
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewListResponse creates a ListResponse, never returning a null items array
func NewListResponse[T any](items []T, limit, offset int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Limit: limit, Offset: offset}
}

// UploadResponse represents the result of a file upload
type UploadResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	URL     string `json:"url"`
}

// NewUploadResponse creates an UploadResponse from a stored media file
func NewUploadResponse(media *models.MediaFile) UploadResponse {
	return UploadResponse{Success: true, ID: media.ID.String(), URL: media.URL}
}
