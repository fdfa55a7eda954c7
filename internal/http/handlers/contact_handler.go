package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/classifieds-backend/internal/dto"
	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// ContactHandler принимает обращения посетителей к компаниям.
type ContactHandler struct {
	contacts *service.ContactService
}

// NewContactHandler создаёт новый хэндлер.
func NewContactHandler(contacts *service.ContactService) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// ContactBusiness обрабатывает POST /api/contact-business.
func (h *ContactHandler) ContactBusiness(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.ContactBusinessRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondAppError(c, err)
		return
	}

	err := h.contacts.ContactBusiness(c.Request.Context(), actor, service.ContactInput{
		BusinessID: req.BusinessID,
		Message:    req.Message,
		Phone:      req.Phone,
		Company:    req.Company,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondOK(c, http.StatusOK, nil)
}
