package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/models"
	"github.com/aethra-press/publishing-api/internal/service"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// ArtifactHandler handles per-article file slots.
type ArtifactHandler struct {
	service *service.ArtifactService
}

// NewArtifactHandler constructs an artifact handler.
func NewArtifactHandler(svc *service.ArtifactService) *ArtifactHandler {
	return &ArtifactHandler{service: svc}
}

// List godoc
// @Summary List files attached to an article
// @Tags Files
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/files [get]
func (h *ArtifactHandler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Upload godoc
// @Summary Upload a file into an article slot
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Article ID"
// @Param kind path string true "File kind"
// @Param file formData file true "Content"
// @Success 201 {object} response.Envelope
// @Router /articles/{id}/files/{kind} [put]
func (h *ArtifactHandler) Upload(c *gin.Context) {
	if claims := claimsFromContext(c); claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	kind := models.FileKind(c.Param("kind"))
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

	record, err := h.service.Upload(c.Request.Context(), c.Param("id"), kind,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Download godoc
// @Summary Download the file stored in an article slot
// @Tags Files
// @Produce octet-stream
// @Param id path string true "Article ID"
// @Param kind path string true "File kind"
// @Success 200 {file} binary
// @Router /articles/{id}/files/{kind} [get]
func (h *ArtifactHandler) Download(c *gin.Context) {
	kind := models.FileKind(c.Param("kind"))
	// manuscript sources and branding assets are editorial-only; they are
	// reachable through signed share links instead
	if kind == models.FileKindManuscriptSource || kind == models.FileKindBrandingLogo {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "this file kind is not publicly downloadable"))
		return
	}
	record, blob, err := h.service.Download(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer blob.Close()

	mimeType := record.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", record.OriginalFilename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, record.SizeBytes, mimeType, blob, nil)
}

// ShareLink godoc
// @Summary Mint an expiring public download link for a file slot
// @Tags Files
// @Produce json
// @Param id path string true "Article ID"
// @Param kind path string true "File kind"
// @Success 200 {object} response.Envelope
// @Router /articles/{id}/files/{kind}/share-link [post]
func (h *ArtifactHandler) ShareLink(c *gin.Context) {
	link, err := h.service.ShareLink(c.Request.Context(), c.Param("id"), models.FileKind(c.Param("kind")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// SharedDownload godoc
// @Summary Download a file through a signed share link
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Share token"
// @Success 200 {file} binary
// @Router /files/shared/{token} [get]
func (h *ArtifactHandler) SharedDownload(c *gin.Context) {
	record, blob, err := h.service.OpenShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer blob.Close()

	mimeType := record.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", record.OriginalFilename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, record.SizeBytes, mimeType, blob, nil)
}

// Delete godoc
// @Summary Remove a file slot from an article
// @Tags Files
// @Param id path string true "Article ID"
// @Param kind path string true "File kind"
// @Success 204
// @Router /articles/{id}/files/{kind} [delete]
func (h *ArtifactHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), models.FileKind(c.Param("kind"))); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
