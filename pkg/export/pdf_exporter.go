package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TOCEntry is one article line in a table-of-contents PDF.
type TOCEntry struct {
	Title   string
	Authors []string
	Pages   string
	DOI     string
}

// TOCDocument describes the rendered issue front matter.
type TOCDocument struct {
	JournalTitle string
	Heading      string
	Subheading   string
	Entries      []TOCEntry
}

// PDFExporter renders issue tables of contents into PDF bytes.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderTOC creates a table-of-contents PDF for an issue.
func (e *PDFExporter) RenderTOC(doc TOCDocument) ([]byte, error) {
	if doc.JournalTitle == "" {
		return nil, fmt.Errorf("pdf toc requires a journal title")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 18, 15)
	pdf.AddPage()

	pdf.SetFont("Times", "B", 18)
	pdf.CellFormat(0, 10, doc.JournalTitle, "", 1, "C", false, 0, "")
	if doc.Heading != "" {
		pdf.SetFont("Times", "", 13)
		pdf.CellFormat(0, 8, doc.Heading, "", 1, "C", false, 0, "")
	}
	if doc.Subheading != "" {
		pdf.SetFont("Times", "I", 11)
		pdf.CellFormat(0, 7, doc.Subheading, "", 1, "C", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Times", "B", 12)
	pdf.CellFormat(0, 8, "Contents", "B", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, entry := range doc.Entries {
		pdf.SetFont("Times", "B", 11)
		title := entry.Title
		if entry.Pages != "" {
			title = fmt.Sprintf("%s  (pp. %s)", title, entry.Pages)
		}
		pdf.MultiCell(0, 6, title, "", "L", false)

		if len(entry.Authors) > 0 {
			pdf.SetFont("Times", "", 10)
			pdf.MultiCell(0, 5, strings.Join(entry.Authors, ", "), "", "L", false)
		}
		if entry.DOI != "" {
			pdf.SetFont("Times", "I", 9)
			pdf.CellFormat(0, 5, "doi:"+entry.DOI, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	if len(doc.Entries) == 0 {
		pdf.SetFont("Times", "I", 10)
		pdf.CellFormat(0, 6, "No articles in this issue.", "", 1, "L", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
