package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/export"
)

// ExportFile is a generated download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService generates citation records and issue front matter from
// stored metadata, as opposed to the pre-rendered artifacts uploaded
// into the file slots.
type ExportService struct {
	articles  articleRepository
	journals  journalRepository
	volumes   volumeRepository
	issues    issueRepository
	files     artifactRepository
	blobs     blobStore
	pdf       *export.PDFExporter
	csv       *export.CSVExporter
	publicURL string
	logger    *zap.Logger
}

// NewExportService creates a new export service.
func NewExportService(articles articleRepository, journals journalRepository, volumes volumeRepository, issues issueRepository, publicURL string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		articles:  articles,
		journals:  journals,
		volumes:   volumes,
		issues:    issues,
		pdf:       export.NewPDFExporter(),
		csv:       export.NewCSVExporter(),
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// AttachArtifacts lets the citation endpoint serve an uploaded citation
// file when one exists for the requested format. Without it citations
// are always generated from stored metadata.
func (s *ExportService) AttachArtifacts(files artifactRepository, blobs blobStore) {
	s.files = files
	s.blobs = blobs
}

// Citation renders the article's bibliographic record in the requested
// format (ris, bib or endnote). An uploaded file of the matching kind
// takes precedence over the generated record.
func (s *ExportService) Citation(ctx context.Context, articleID, format string) (*ExportFile, error) {
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}

	var kind models.FileKind
	var ext, contentType string
	var render func(export.Citation) []byte
	switch strings.ToLower(format) {
	case "ris":
		kind, ext, contentType, render = models.FileKindRIS, ".ris", "application/x-research-info-systems", export.RenderRIS
	case "bib", "bibtex":
		kind, ext, contentType, render = models.FileKindBib, ".bib", "application/x-bibtex", export.RenderBibTeX
	case "endnote", "enw":
		kind, ext, contentType, render = models.FileKindEndNote, ".enw", "application/x-endnote-refer", export.RenderEndNote
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown citation format %q", format))
	}

	if uploaded := s.uploadedCitation(ctx, articleID, kind); uploaded != nil {
		uploaded.ContentType = contentType
		return uploaded, nil
	}

	citation, err := s.buildCitation(ctx, article)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    article.Slug + ext,
		ContentType: contentType,
		Data:        render(*citation),
	}, nil
}

// uploadedCitation returns the stored citation file for the kind, or nil
// when none exists or it cannot be read (the generated record covers
// those cases).
func (s *ExportService) uploadedCitation(ctx context.Context, articleID string, kind models.FileKind) *ExportFile {
	if s.files == nil || s.blobs == nil {
		return nil
	}
	record, err := s.files.FindByKind(ctx, articleID, kind)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn("failed to look up uploaded citation file", zap.String("articleId", articleID), zap.Error(err))
		}
		return nil
	}
	f, err := s.blobs.Open(record.StoragePath)
	if err != nil {
		s.logger.Warn("uploaded citation file unreadable, generating from metadata",
			zap.String("articleId", articleID), zap.Error(err))
		return nil
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Warn("uploaded citation file unreadable, generating from metadata",
			zap.String("articleId", articleID), zap.Error(err))
		return nil
	}
	return &ExportFile{Filename: record.OriginalFilename, Data: data}
}

func (s *ExportService) buildCitation(ctx context.Context, article *models.Article) (*export.Citation, error) {
	journal, err := s.journals.FindByID(ctx, article.JournalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}

	citation := &export.Citation{
		Authors:      article.Authors,
		Title:        article.Title,
		JournalTitle: journal.Title,
		ISSN:         journal.ISSN,
		Pages:        article.Pages(),
		DOI:          article.DOI,
		Abstract:     article.Abstract,
		Keywords:     article.Keywords,
		URL:          fmt.Sprintf("%s/%s/articles/%s", s.publicURL, journal.Slug, article.Slug),
	}
	if article.PublishedOn != nil {
		citation.Year = article.PublishedOn.Year()
	}

	if article.VolumeID != nil {
		volume, err := s.volumes.FindByID(ctx, *article.VolumeID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
		}
		citation.Volume = fmt.Sprintf("%d", volume.VolumeNumber)
		if citation.Year == 0 {
			citation.Year = volume.Year
		}
	}
	if article.IssueID != nil {
		issue, err := s.issues.FindByID(ctx, *article.IssueID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
		}
		citation.Issue = fmt.Sprintf("%d", issue.IssueNumber)
	}
	return citation, nil
}

// IssueTOC renders the issue table of contents as a PDF.
func (s *ExportService) IssueTOC(ctx context.Context, issueID string) (*ExportFile, error) {
	issue, volume, journal, articles, err := s.loadIssueTree(ctx, issueID)
	if err != nil {
		return nil, err
	}

	doc := export.TOCDocument{
		JournalTitle: journal.Title,
		Heading:      fmt.Sprintf("Volume %d, Issue %d", volume.VolumeNumber, issue.IssueNumber),
	}
	if issue.Title != "" {
		doc.Subheading = issue.Title
	} else if issue.PublishedOn != nil {
		doc.Subheading = "Published " + issue.PublishedOn.Format("January 2006")
	}
	for _, article := range articles {
		doc.Entries = append(doc.Entries, export.TOCEntry{
			Title:   article.Title,
			Authors: article.Authors,
			Pages:   article.Pages(),
			DOI:     article.DOI,
		})
	}

	data, err := s.pdf.RenderTOC(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render issue contents")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-vol%d-issue%d-toc.pdf", journal.Slug, volume.VolumeNumber, issue.IssueNumber),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

// IssueCSV renders the issue article listing as CSV for editorial
// spreadsheets.
func (s *ExportService) IssueCSV(ctx context.Context, issueID string) (*ExportFile, error) {
	issue, volume, journal, articles, err := s.loadIssueTree(ctx, issueID)
	if err != nil {
		return nil, err
	}

	listing := export.Listing{
		Headers: []string{"Title", "Authors", "Slug", "Status", "Pages", "DOI"},
	}
	for _, article := range articles {
		listing.Records = append(listing.Records, []string{
			article.Title,
			strings.Join(article.Authors, "; "),
			article.Slug,
			string(article.Status),
			article.Pages(),
			article.DOI,
		})
	}

	data, err := s.csv.Render(listing)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render issue listing")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("%s-vol%d-issue%d-articles.csv", journal.Slug, volume.VolumeNumber, issue.IssueNumber),
		ContentType: "text/csv",
		Data:        data,
	}, nil
}

func (s *ExportService) loadIssueTree(ctx context.Context, issueID string) (*models.Issue, *models.Volume, *models.Journal, []models.Article, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, nil, nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	volume, err := s.volumes.FindByID(ctx, issue.VolumeID)
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
	}
	journal, err := s.journals.FindByID(ctx, volume.JournalID)
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}

	articles, _, err := s.articles.List(ctx, models.ArticleFilter{
		IssueID:   issueID,
		PageSize:  100,
		SortBy:    "published_on",
		SortOrder: "ASC",
	})
	if err != nil {
		return nil, nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issue articles")
	}
	return issue, volume, journal, articles, nil
}
