package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/service"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// ReadingHandler serves composed reading views.
type ReadingHandler struct {
	service *service.ReadingService
}

// NewReadingHandler constructs a reading handler.
func NewReadingHandler(svc *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{service: svc}
}

// Read godoc
// @Summary Get the public reading view of a published article
// @Tags Reading
// @Produce json
// @Param journalSlug path string true "Journal slug"
// @Param articleSlug path string true "Article slug"
// @Success 200 {object} response.Envelope
// @Router /reading/{journalSlug}/{articleSlug} [get]
func (h *ReadingHandler) Read(c *gin.Context) {
	view, err := h.service.GetBySlug(c.Request.Context(), c.Param("journalSlug"), c.Param("articleSlug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Preview godoc
// @Summary Get the reading view of an article regardless of status
// @Tags Reading
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/preview [get]
func (h *ReadingHandler) Preview(c *gin.Context) {
	view, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
