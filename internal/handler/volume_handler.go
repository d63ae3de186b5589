package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/service"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// VolumeHandler handles volume endpoints nested under a journal.
type VolumeHandler struct {
	service *service.VolumeService
}

// NewVolumeHandler constructs a volume handler.
func NewVolumeHandler(svc *service.VolumeService) *VolumeHandler {
	return &VolumeHandler{service: svc}
}

// ListByJournal godoc
// @Summary List volumes of a journal
// @Tags Volumes
// @Produce json
// @Param id path string true "Journal ID"
// @Success 200 {object} response.Envelope
// @Router /journals/{id}/volumes [get]
func (h *VolumeHandler) ListByJournal(c *gin.Context) {
	volumes, err := h.service.ListByJournal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volumes, nil)
}

// Get godoc
// @Summary Get volume by id
// @Tags Volumes
// @Produce json
// @Param id path string true "Volume ID"
// @Success 200 {object} response.Envelope
// @Router /volumes/{id} [get]
func (h *VolumeHandler) Get(c *gin.Context) {
	volume, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volume, nil)
}

// Create godoc
// @Summary Create volume under a journal
// @Tags Volumes
// @Accept json
// @Produce json
// @Param id path string true "Journal ID"
// @Param payload body dto.CreateVolumeRequest true "Volume payload"
// @Success 201 {object} response.Envelope
// @Router /journals/{id}/volumes [post]
func (h *VolumeHandler) Create(c *gin.Context) {
	var req dto.CreateVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	volume, err := h.service.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, volume)
}

// Update godoc
// @Summary Update volume
// @Tags Volumes
// @Accept json
// @Produce json
// @Param id path string true "Volume ID"
// @Param payload body dto.CreateVolumeRequest true "Volume payload"
// @Success 200 {object} response.Envelope
// @Router /volumes/{id} [put]
func (h *VolumeHandler) Update(c *gin.Context) {
	var req dto.CreateVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	volume, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, volume, nil)
}

// Delete godoc
// @Summary Delete volume
// @Tags Volumes
// @Param id path string true "Volume ID"
// @Success 204
// @Router /volumes/{id} [delete]
func (h *VolumeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
