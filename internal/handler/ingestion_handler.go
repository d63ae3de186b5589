package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/service"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// IngestionHandler exposes the manuscript parsing pipeline.
type IngestionHandler struct {
	service *service.IngestionService
}

// NewIngestionHandler constructs an ingestion handler.
func NewIngestionHandler(svc *service.IngestionService) *IngestionHandler {
	return &IngestionHandler{service: svc}
}

// Status godoc
// @Summary Get the parsing status of an article's manuscript
// @Tags Ingestion
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/parsing [get]
func (h *IngestionHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Reparse godoc
// @Summary Queue a re-parse of the stored manuscript source
// @Tags Ingestion
// @Produce json
// @Param id path string true "Article ID"
// @Success 202 {object} response.Envelope
// @Router /articles/{id}/reparse [post]
func (h *IngestionHandler) Reparse(c *gin.Context) {
	result, err := h.service.Reparse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}
