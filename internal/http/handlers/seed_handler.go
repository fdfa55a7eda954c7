package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// SeedHandler обрабатывает запросы для генерации демо-данных.
type SeedHandler struct {
	seedService *service.SeedService
}

// NewSeedHandler создаёт новый seed handler.
func NewSeedHandler(seedService *service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// SeedRequest представляет запрос на генерацию данных.
type SeedRequest struct {
	NumBusinesses int `json:"num_businesses" form:"num_businesses"`
	NumListings   int `json:"num_listings" form:"num_listings"`
}

// Seed генерирует демо-компании и объявления от имени текущего пользователя.
// POST /api/seed
func (h *SeedHandler) Seed(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req SeedRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, "неверное тело запроса")
			return
		}
	} else {
		req.NumBusinesses, _ = strconv.Atoi(c.Query("num_businesses"))
		req.NumListings, _ = strconv.Atoi(c.Query("num_listings"))
	}

	result, err := h.seedService.SeedData(c.Request.Context(), actor, req.NumBusinesses, req.NumListings)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondOK(c, http.StatusCreated, gin.H{
		"businesses": result.Businesses,
		"listings":   result.Listings,
	})
}
