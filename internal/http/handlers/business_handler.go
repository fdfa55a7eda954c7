package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/classifieds-backend/internal/dto"
	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/models"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// BusinessHandler обслуживает маршруты профилей компаний.
type BusinessHandler struct {
	businesses *service.BusinessService
}

// NewBusinessHandler создаёт новый хэндлер.
func NewBusinessHandler(businesses *service.BusinessService) *BusinessHandler {
	return &BusinessHandler{businesses: businesses}
}

// CreateBusiness обрабатывает POST /api/businesses.
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.BusinessRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	business, err := h.businesses.CreateBusiness(c.Request.Context(), actor, req.ToModel())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, business)
}

// GetBusiness обрабатывает GET /api/businesses/:id. Возвращает компанию и сводку доверия.
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор компании")
		return
	}

	viewerID := common.ViewerID(c)
	detail, err := h.businesses.GetBusinessDetail(c.Request.Context(), id, viewerID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	h.businesses.TrackView(c.Request.Context(), detail.Business, viewerID, c.ClientIP())

	c.JSON(http.StatusOK, detail)
}

// ListBusinesses обрабатывает GET /api/businesses.
func (h *BusinessHandler) ListBusinesses(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	filter := models.BusinessFilter{
		Query:        strings.TrimSpace(c.Query("q")),
		BusinessType: strings.TrimSpace(c.Query("type")),
		City:         strings.TrimSpace(c.Query("city")),
		Region:       strings.TrimSpace(c.Query("region")),
		Sort:         c.DefaultQuery("sort", "newest"),
		Limit:        limit,
		Offset:       offset,
	}

	items, err := h.businesses.ListBusinesses(c.Request.Context(), filter)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, limit, offset))
}

// ListMyBusinesses обрабатывает GET /api/me/businesses.
func (h *BusinessHandler) ListMyBusinesses(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	items, err := h.businesses.ListMyBusinesses(c.Request.Context(), actor)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListResponse(items, len(items), 0))
}

// UpdateBusiness обрабатывает PUT /api/businesses/:id.
func (h *BusinessHandler) UpdateBusiness(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор компании")
		return
	}

	var req dto.BusinessRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	business, err := h.businesses.UpdateBusiness(c.Request.Context(), actor, id, req.ToModel())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, business)
}

// UpdateLocation обрабатывает PUT /api/businesses/:id/location.
func (h *BusinessHandler) UpdateLocation(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор компании")
		return
	}

	var req dto.UpdateLocationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	if err := h.businesses.UpdateLocation(c.Request.Context(), actor, id, req.Latitude, req.Longitude, req.Status); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondOK(c, http.StatusOK, nil)
}

// DeleteBusiness обрабатывает DELETE /api/businesses/:id.
func (h *BusinessHandler) DeleteBusiness(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор компании")
		return
	}

	if err := h.businesses.DeleteBusiness(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
