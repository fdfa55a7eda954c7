package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/dto"
	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// ListingHandler обслуживает объявления всех категорий.
type ListingHandler struct {
	listings *service.ListingService
}

// NewListingHandler создаёт новый хэндлер.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// ListPublished обрабатывает GET /api/listings/:category.
func (h *ListingHandler) ListPublished(c *gin.Context) {
	category, ok := listingCategory(c)
	if !ok {
		return
	}

	minPrice, err := common.ParseFloatQuery(c, "min_price")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	maxPrice, err := common.ParseFloatQuery(c, "max_price")
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	limit, offset := common.GetPagination(c)
	filter := models.ListingFilter{
		Query:    c.Query("q"),
		City:     strings.TrimSpace(c.Query("city")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     c.DefaultQuery("sort", "newest"),
		Limit:    limit,
		Offset:   offset,
	}

	items, err := h.listings.ListPublished(c.Request.Context(), category, filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, limit, offset))
}

// GetListing обрабатывает GET /api/listings/:category/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	category, ok := listingCategory(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := h.listings.GetListing(c.Request.Context(), category, id, common.ViewerID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// CreateDraft обрабатывает POST /api/listings/:category.
func (h *ListingHandler) CreateDraft(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}
	category, ok := listingCategory(c)
	if !ok {
		return
	}

	var req dto.ListingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	listing, err := h.listings.CreateDraft(c.Request.Context(), actor, req.ToModel(category))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// UpdateListing обрабатывает PUT /api/listings/:category/:id.
func (h *ListingHandler) UpdateListing(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}
	category, ok := listingCategory(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	var req dto.ListingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	listing, err := h.listings.UpdateListing(c.Request.Context(), actor, category, id, req.ToModel(category))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Publish обрабатывает POST /api/listings/:category/:id/publish.
func (h *ListingHandler) Publish(c *gin.Context) {
	h.changeStatus(c, h.listings.Publish)
}

// Archive обрабатывает POST /api/listings/:category/:id/archive.
func (h *ListingHandler) Archive(c *gin.Context) {
	h.changeStatus(c, h.listings.Archive)
}

// DeleteListing обрабатывает DELETE /api/listings/:category/:id.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}
	category, ok := listingCategory(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	if err := h.listings.DeleteListing(c.Request.Context(), actor, category, id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMyListings обрабатывает GET /api/me/listings.
func (h *ListingHandler) ListMyListings(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	items, err := h.listings.ListMyListings(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, len(items), 0))
}

type listingTransition func(ctx context.Context, actor *models.Actor, category models.ListingCategory, id uuid.UUID) (*models.Listing, error)

func (h *ListingHandler) changeStatus(c *gin.Context, transition listingTransition) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}
	category, ok := listingCategory(c)
	if !ok {
		return
	}
	id, ok := listingID(c)
	if !ok {
		return
	}

	listing, err := transition(c.Request.Context(), actor, category, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

type listingCategoryURI struct {
	Category string `uri:"category" binding:"required,listing_category"`
}

func listingCategory(c *gin.Context) (models.ListingCategory, bool) {
	var uri listingCategoryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		common.RespondError(c, http.StatusNotFound, "неизвестная категория объявлений")
		return "", false
	}
	return models.ListingCategory(uri.Category), true
}

func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор объявления")
		return uuid.Nil, false
	}
	return id, true
}
