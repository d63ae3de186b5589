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

// ArticleHandler handles article metadata and placement endpoints.
type ArticleHandler struct {
	service *service.HierarchyService
}

// NewArticleHandler constructs an article handler.
func NewArticleHandler(svc *service.HierarchyService) *ArticleHandler {
	return &ArticleHandler{service: svc}
}

// List godoc
// @Summary List articles
// @Tags Articles
// @Produce json
// @Param journalId query string false "Filter by journal"
// @Param volumeId query string false "Filter by volume"
// @Param issueId query string false "Filter by issue"
// @Param status query string false "Filter by status"
// @Param search query string false "Search keyword"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /articles [get]
func (h *ArticleHandler) List(c *gin.Context) {
	var filter models.ArticleFilter
	filter.JournalID = c.Query("journalId")
	filter.VolumeID = c.Query("volumeId")
	filter.IssueID = c.Query("issueId")
	filter.Status = models.ArticleStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	articles, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, articles, pagination)
}

// Contents godoc
// @Summary Published articles of a journal grouped by volume and issue
// @Tags Articles
// @Produce json
// @Param id path string true "Journal ID"
// @Success 200 {object} response.Envelope
// @Router /journals/{id}/contents [get]
func (h *ArticleHandler) Contents(c *gin.Context) {
	contents, err := h.service.Contents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contents, nil)
}

// Get godoc
// @Summary Get article by id
// @Tags Articles
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id} [get]
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Create godoc
// @Summary Create article
// @Tags Articles
// @Accept json
// @Produce json
// @Param payload body dto.CreateArticleRequest true "Article payload"
// @Success 201 {object} response.Envelope
// @Router /articles [post]
func (h *ArticleHandler) Create(c *gin.Context) {
	var req dto.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	article, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, article)
}

// Update godoc
// @Summary Update article metadata
// @Tags Articles
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.UpdateArticleRequest true "Article payload"
// @Success 200 {object} response.Envelope
// @Router /articles/{id} [put]
func (h *ArticleHandler) Update(c *gin.Context) {
	var req dto.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	article, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Move godoc
// @Summary Move article to a new placement
// @Tags Articles
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param payload body dto.PlacementRequest true "Target placement"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/placement [put]
func (h *ArticleHandler) Move(c *gin.Context) {
	var req dto.PlacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	article, err := h.service.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, article, nil)
}

// Delete godoc
// @Summary Delete article
// @Tags Articles
// @Param id path string true "Article ID"
// @Success 204
// @Router /articles/{id} [delete]
func (h *ArticleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
