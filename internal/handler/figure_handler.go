package handler

import (
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/service"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// missingFigureSVG is served when a reading view references a figure that
// has been deleted or never resolved.
const missingFigureSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="480" height="320" viewBox="0 0 480 320"><rect width="480" height="320" fill="#eceff1"/><text x="240" y="166" text-anchor="middle" font-family="sans-serif" font-size="18" fill="#78909c">figure unavailable</text></svg>`

// FigureHandler handles figure registry endpoints.
type FigureHandler struct {
	service *service.FigureService
}

// NewFigureHandler constructs a figure handler.
func NewFigureHandler(svc *service.FigureService) *FigureHandler {
	return &FigureHandler{service: svc}
}

// ListByArticle godoc
// @Summary List figures of an article
// @Tags Figures
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/figures [get]
func (h *FigureHandler) ListByArticle(c *gin.Context) {
	figures, err := h.service.ListByArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, figures, nil)
}

// Get godoc
// @Summary Get figure by id
// @Tags Figures
// @Produce json
// @Param id path string true "Article ID"
// @Param figureId path string true "Figure ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/figures/{figureId} [get]
func (h *FigureHandler) Get(c *gin.Context) {
	figure, err := h.service.Get(c.Request.Context(), c.Param("figureId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, figure, nil)
}

// Add godoc
// @Summary Add a figure to an article
// @Tags Figures
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Article ID"
// @Param label formData string false "Label"
// @Param caption formData string false "Caption"
// @Param displayOrder formData int false "Display order"
// @Param file formData file true "Image"
// @Success 201 {object} response.Envelope
// @Router /articles/{id}/figures [post]
func (h *FigureHandler) Add(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	displayOrder, _ := strconv.Atoi(c.PostForm("displayOrder"))
	figure, err := h.service.Add(c.Request.Context(), c.Param("id"),
		c.PostForm("label"), c.PostForm("caption"), displayOrder, fileHeader.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, figure)
}

// ReplaceImage godoc
// @Summary Replace the image behind a figure, keeping its locator
// @Tags Figures
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Article ID"
// @Param figureId path string true "Figure ID"
// @Param file formData file true "Image"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/figures/{figureId}/image [put]
func (h *FigureHandler) ReplaceImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	figure, err := h.service.ReplaceImage(c.Request.Context(), c.Param("figureId"), fileHeader.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, figure, nil)
}

// Update godoc
// @Summary Update figure metadata
// @Tags Figures
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param figureId path string true "Figure ID"
// @Param payload body dto.UpdateFigureRequest true "Figure payload"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/figures/{figureId} [put]
func (h *FigureHandler) Update(c *gin.Context) {
	var req dto.UpdateFigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	figure, err := h.service.Update(c.Request.Context(), c.Param("figureId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, figure, nil)
}

// Delete godoc
// @Summary Delete figure
// @Tags Figures
// @Param id path string true "Article ID"
// @Param figureId path string true "Figure ID"
// @Success 204
// @Router /articles/{id}/figures/{figureId} [delete]
func (h *FigureHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("figureId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Image godoc
// @Summary Serve a figure image by its permanent locator
// @Tags Figures
// @Produce image/*
// @Param locator path string true "Figure locator"
// @Success 200 {file} binary
// @Router /figures/{locator}/image [get]
func (h *FigureHandler) Image(c *gin.Context) {
	figure, blob, err := h.service.OpenByLocator(c.Request.Context(), c.Param("locator"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer blob.Close()

	info, err := blob.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to stat image"))
		return
	}
	mimeType := mime.TypeByExtension(filepath.Ext(figure.OriginalFilename))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, info.Size(), mimeType, blob, nil)
}

// MissingImage serves a neutral placeholder for unresolved figure references.
func (h *FigureHandler) MissingImage(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/svg+xml", []byte(missingFigureSVG))
}
