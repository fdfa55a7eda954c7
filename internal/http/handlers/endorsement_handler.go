package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/classifieds-backend/internal/dto"
	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// EndorsementHandler обслуживает одобрения и рекомендации компаний.
type EndorsementHandler struct {
	endorsements *service.EndorsementService
}

// NewEndorsementHandler создаёт новый хэндлер.
func NewEndorsementHandler(endorsements *service.EndorsementService) *EndorsementHandler {
	return &EndorsementHandler{endorsements: endorsements}
}

// GetTrustSummary обрабатывает GET /api/businesses/:id/trust.
func (h *EndorsementHandler) GetTrustSummary(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор компании")
		return
	}

	summary, err := h.endorsements.GetTrustSummary(c.Request.Context(), id, common.ViewerID(c))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ToggleEndorsement обрабатывает POST /api/businesses/:id/endorsement.
func (h *EndorsementHandler) ToggleEndorsement(c *gin.Context) {
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

	result, err := h.endorsements.ToggleEndorsement(c.Request.Context(), actor, id)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondOK(c, http.StatusOK, gin.H{"endorsed": result.Endorsed})
}

// ToggleCategoryEndorsement обрабатывает POST /api/businesses/:id/category-endorsements.
func (h *EndorsementHandler) ToggleCategoryEndorsement(c *gin.Context) {
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

	var req dto.CategoryEndorsementRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	result, err := h.endorsements.ToggleCategoryEndorsement(c.Request.Context(), actor, id, req.Category)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondOK(c, http.StatusOK, gin.H{"endorsed": result.Endorsed, "category": req.Category})
}

// UpsertRecommendation обрабатывает PUT /api/businesses/:id/recommendation.
func (h *EndorsementHandler) UpsertRecommendation(c *gin.Context) {
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

	var req dto.RecommendationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	result, err := h.endorsements.UpsertRecommendation(c.Request.Context(), actor, id, req.RelationshipType, req.Tags)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	common.RespondOK(c, status, gin.H{"recommendation": result.Recommendation, "created": result.Created})
}

// RemoveRecommendation обрабатывает DELETE /api/businesses/:id/recommendation.
func (h *EndorsementHandler) RemoveRecommendation(c *gin.Context) {
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

	if err := h.endorsements.RemoveRecommendation(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondOK(c, http.StatusOK, nil)
}
