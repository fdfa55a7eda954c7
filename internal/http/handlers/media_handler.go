package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/classifieds-backend/internal/dto"
	"github.com/ignatzorin/classifieds-backend/internal/http/handlers/common"
	"github.com/ignatzorin/classifieds-backend/internal/service"
)

// MediaHandler управляет загрузкой и удалением изображений.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload обрабатывает POST /api/upload (multipart: file, folder).
func (h *MediaHandler) Upload(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	defer src.Close()

	media, err := h.media.Upload(c.Request.Context(), actor, service.UploadInput{
		Folder:   c.PostForm("folder"),
		Filename: file.Filename,
		Size:     file.Size,
		Reader:   src,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUploadResponse(media))
}

// DeleteMedia обрабатывает DELETE /api/media/:id.
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	actor := common.CurrentActor(c)
	if actor == nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, "некорректный идентификатор")
		return
	}

	if err := h.media.Delete(c.Request.Context(), actor, id); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
