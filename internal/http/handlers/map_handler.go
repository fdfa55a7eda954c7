package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// defaultZoom масштаб карты, если клиент его не передал.
const defaultZoom = 6

// MapHandler отдаёт данные для виджета карты.
type MapHandler struct {
	maps *service.MapService
}

// NewMapHandler создаёт новый хэндлер.
func NewMapHandler(maps *service.MapService) *MapHandler {
	return &MapHandler{maps: maps}
}

// Config обрабатывает GET /api/map/config.
func (h *MapHandler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, h.maps.Config())
}

// Businesses обрабатывает GET /api/map/businesses?zoom=&selected=&type=.
func (h *MapHandler) Businesses(c *gin.Context) {
	zoom := float64(defaultZoom)
	if raw := c.Query("zoom"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(parsed >= 0 && parsed <= 22) {
			common.RespondBadRequest(c, "параметр zoom должен быть числом от 0 до 22")
			return
		}
		zoom = parsed
	}

	var selected *uuid.UUID
	if raw := c.Query("selected"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.RespondBadRequest(c, "параметр selected должен быть валидным UUID")
			return
		}
		selected = &id
	}

	view, err := h.maps.View(c.Request.Context(), strings.TrimSpace(c.Query("type")), zoom, selected)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
