package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aethra-press/publishing-api/internal/service"
	"github.com/aethra-press/publishing-api/pkg/response"
)

// ExportHandler serves citation and issue export downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Citation godoc
// @Summary Download an article citation in RIS, BibTeX or EndNote format
// @Tags Exports
// @Produce octet-stream
// @Param id path string true "Article ID"
// @Param format query string false "Citation format (ris, bib, endnote)"
// @Success 200 {file} binary
// @Router /articles/{id}/citation [get]
func (h *ExportHandler) Citation(c *gin.Context) {
	file, err := h.service.Citation(c.Request.Context(), c.Param("id"), c.DefaultQuery("format", "ris"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, file)
}

// IssueTOC godoc
// @Summary Download the table of contents of an issue as PDF
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Issue ID"
// @Success 200 {file} binary
// @Router /issues/{id}/toc [get]
func (h *ExportHandler) IssueTOC(c *gin.Context) {
	file, err := h.service.IssueTOC(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, file)
}

// IssueCSV godoc
// @Summary Download the article listing of an issue as CSV
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Issue ID"
// @Success 200 {file} binary
// @Router /issues/{id}/articles.csv [get]
func (h *ExportHandler) IssueCSV(c *gin.Context) {
	file, err := h.service.IssueCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveExport(c, file)
}

func serveExport(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
