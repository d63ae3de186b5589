package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/service"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// IssueHandler handles issue endpoints nested under a volume.
type IssueHandler struct {
	service *service.IssueService
}

// NewIssueHandler constructs an issue handler.
func NewIssueHandler(svc *service.IssueService) *IssueHandler {
	return &IssueHandler{service: svc}
}

// ListByVolume godoc
// @Summary List issues of a volume
// @Tags Issues
// @Produce json
// @Param id path string true "Volume ID"
// @Success 200 {object} response.Envelope
// @Router /volumes/{id}/issues [get]
func (h *IssueHandler) ListByVolume(c *gin.Context) {
	issues, err := h.service.ListByVolume(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues, nil)
}

// Get godoc
// @Summary Get issue by id
// @Tags Issues
// @Produce json
// @Param id path string true "Issue ID"
// @Success 200 {object} response.Envelope
// @Router /issues/{id} [get]
func (h *IssueHandler) Get(c *gin.Context) {
	issue, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue, nil)
}

// Create godoc
// @Summary Create issue under a volume
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Volume ID"
// @Param payload body dto.CreateIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Router /volumes/{id}/issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	issue, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// Update godoc
// @Summary Update issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param payload body dto.CreateIssueRequest true "Issue payload"
// @Success 200 {object} response.Envelope
// @Router /issues/{id} [put]
func (h *IssueHandler) Update(c *gin.Context) {
	var req dto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	issue, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue, nil)
}

// Delete godoc
// @Summary Delete issue
// @Tags Issues
// @Param id path string true "Issue ID"
// @Success 204
// @Router /issues/{id} [delete]
func (h *IssueHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
