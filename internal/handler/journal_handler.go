package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	"github.com/aethra-press/publishing-api/internal/service"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// JournalHandler handles journal endpoints.
type JournalHandler struct {
	service *service.JournalService
}

// NewJournalHandler constructs a journal handler.
func NewJournalHandler(svc *service.JournalService) *JournalHandler {
	return &JournalHandler{service: svc}
}

// List godoc
// @Summary List journals
// @Tags Journals
// @Produce json
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /journals [get]
func (h *JournalHandler) List(c *gin.Context) {
	var filter models.JournalFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	journals, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, journals, pagination)
}

// Get godoc
// @Summary Get journal by id
// @Tags Journals
// @Produce json
// @Param id path string true "Journal ID"
// @Success 200 {object} response.Envelope
// @Router /journals/{id} [get]
func (h *JournalHandler) Get(c *gin.Context) {
	journal, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, journal, nil)
}

// Create godoc
// @Summary Create journal
// @Tags Journals
// @Accept json
// @Produce json
// @Param payload body dto.CreateJournalRequest true "Journal payload"
// @Success 201 {object} response.Envelope
// @Router /journals [post]
func (h *JournalHandler) Create(c *gin.Context) {
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	journal, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, journal)
}

// Update godoc
// @Summary Update journal
// @Tags Journals
// @Accept json
// @Produce json
// @Param id path string true "Journal ID"
// @Param payload body dto.UpdateJournalRequest true "Journal payload"
// @Success 200 {object} response.Envelope
// @Router /journals/{id} [put]
func (h *JournalHandler) Update(c *gin.Context) {
	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	journal, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, journal, nil)
}

// Delete godoc
// @Summary Delete journal
// @Tags Journals
// @Param id path string true "Journal ID"
// @Success 204
// @Router /journals/{id} [delete]
func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
