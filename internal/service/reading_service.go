package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type readingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

var figurePlaceholderRe = regexp.MustCompile(`\{\{FIGURE:([^}]+)\}\}`)

// ReadingService composes the public reading view of an article:
// metadata, hierarchy breadcrumb, parsed HTML with figure placeholders
// resolved to locator URLs, and download links. Composed views are
// cached per article and invalidated by every write that affects them.
type ReadingService struct {
	articles articleRepository
	journals journalRepository
	volumes  volumeRepository
	issues   issueRepository
	contents contentRepository
	figures  figureRepository
	files    artifactRepository
	cache    readingCache
	metrics  cacheMetricsRecorder
	baseURL  string
	cacheTTL time.Duration
	logger   *zap.Logger
}

// ReadingConfig carries tunables for the reading surface.
type ReadingConfig struct {
	BaseURL  string
	CacheTTL time.Duration
}

// NewReadingService creates a new reading service.
func NewReadingService(articles articleRepository, journals journalRepository, volumes volumeRepository, issues issueRepository, contents contentRepository, figures figureRepository, files artifactRepository, cache readingCache, metrics cacheMetricsRecorder, cfg ReadingConfig, logger *zap.Logger) *ReadingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReadingService{
		articles: articles,
		journals: journals,
		volumes:  volumes,
		issues:   issues,
		contents: contents,
		figures:  figures,
		files:    files,
		cache:    cache,
		metrics:  metrics,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		cacheTTL: ttl,
		logger:   logger,
	}
}

func readingCacheKey(articleID string) string {
	return "reading:article:" + articleID
}

// InvalidateArticle drops the cached reading view for an article. Write
// paths call this after every commit that changes what readers see.
func (s *ReadingService) InvalidateArticle(ctx context.Context, articleID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, readingCacheKey(articleID)+"*"); err != nil {
		s.logger.Warn("reading cache invalidation failed", zap.String("articleId", articleID), zap.Error(err))
	}
}

// GetBySlug resolves a published article through its journal and
// article slugs and returns the composed reading view.
func (s *ReadingService) GetBySlug(ctx context.Context, journalSlug, articleSlug string) (*dto.RenderableArticle, error) {
	journal, err := s.journals.FindBySlug(ctx, journalSlug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	article, err := s.articles.FindBySlug(ctx, journal.ID, strings.ToLower(articleSlug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}
	if article.Status != models.ArticleStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
	}
	return s.compose(ctx, article, journal)
}

// GetByID returns the composed reading view regardless of publication
// status, for editorial preview.
func (s *ReadingService) GetByID(ctx context.Context, articleID string) (*dto.RenderableArticle, error) {
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}
	journal, err := s.journals.FindByID(ctx, article.JournalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	return s.compose(ctx, article, journal)
}

func (s *ReadingService) compose(ctx context.Context, article *models.Article, journal *models.Journal) (*dto.RenderableArticle, error) {
	if s.cache != nil {
		lookupStart := time.Now()
		var cached dto.RenderableArticle
		err := s.cache.Get(ctx, readingCacheKey(article.ID), &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil, time.Since(lookupStart))
		}
		if err == nil {
			return &cached, nil
		}
		if !appErrors.Is(err, appErrors.ErrCacheMiss.Code) {
			s.logger.Warn("reading cache lookup failed", zap.String("articleId", article.ID), zap.Error(err))
		}
	}

	view := &dto.RenderableArticle{
		ID:          article.ID,
		Title:       article.Title,
		Slug:        article.Slug,
		Type:        article.Type,
		DOI:         article.DOI,
		Keywords:    article.Keywords,
		PublishedOn: article.PublishedOn,
		Journal: dto.JournalCrumb{
			ID:    journal.ID,
			Slug:  journal.Slug,
			Title: journal.Title,
		},
		Figures:   []dto.FigureResponse{},
		Downloads: []dto.ArtifactResponse{},
	}

	// a special-issue article has no volume or issue breadcrumb
	if article.VolumeID != nil {
		volume, err := s.volumes.FindByID(ctx, *article.VolumeID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
		}
		view.Volume = &dto.VolumeCrumb{ID: volume.ID, VolumeNumber: volume.VolumeNumber, Year: volume.Year}
	}
	if article.IssueID != nil {
		issue, err := s.issues.FindByID(ctx, *article.IssueID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
		}
		view.Issue = &dto.IssueCrumb{ID: issue.ID, IssueNumber: issue.IssueNumber, Title: issue.Title}
	}

	content, err := s.contents.FindByArticleID(ctx, article.ID)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article content")
	}

	figures, err := s.figures.ListByArticle(ctx, article.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list figures")
	}
	for _, figure := range figures {
		view.Figures = append(view.Figures, dto.FigureResponse{
			ID:               figure.ID,
			Label:            figure.Label,
			Caption:          figure.Caption,
			Locator:          figure.Locator,
			OriginalFilename: figure.OriginalFilename,
			DisplayOrder:     figure.DisplayOrder,
			ImageURL:         s.figureURL(figure.Locator),
			UpdatedAt:        figure.UpdatedAt,
		})
	}

	if content != nil {
		view.AbstractHTML = s.resolveFigures(content.AbstractHTML, figures)
		view.BodyHTML = s.resolveFigures(content.BodyHTML, figures)
		view.ReferencesHTML = content.ReferencesHTML
	}
	if view.AbstractHTML == "" && article.Abstract != "" {
		view.AbstractHTML = "<div class=\"article-abstract\"><p>" + htmlEscape(article.Abstract) + "</p></div>"
	}

	files, err := s.files.ListByArticle(ctx, article.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list article files")
	}
	for _, file := range files {
		// the raw manuscript is an editorial artifact, readers get the
		// rendered formats only
		if file.Kind == models.FileKindManuscriptSource || file.Kind == models.FileKindBrandingLogo {
			continue
		}
		view.Downloads = append(view.Downloads, dto.ArtifactResponse{
			ID:               file.ID,
			Kind:             file.Kind,
			OriginalFilename: file.OriginalFilename,
			MimeType:         file.MimeType,
			SizeBytes:        file.SizeBytes,
			DownloadURL:      fmt.Sprintf("%s/api/v1/articles/%s/files/%s", s.baseURL, article.ID, file.Kind),
			UpdatedAt:        file.UpdatedAt,
		})
	}

	if s.cache != nil {
		writeStart := time.Now()
		if err := s.cache.Set(ctx, readingCacheKey(article.ID), view, s.cacheTTL); err != nil {
			s.logger.Warn("reading cache store failed", zap.String("articleId", article.ID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveCacheWrite(time.Since(writeStart))
		}
	}
	return view, nil
}

// resolveFigures substitutes {{FIGURE:href}} placeholders with locator
// URLs. Matching runs against the uploaded image's original filename,
// with and without extension; an unmatched placeholder renders as a
// missing-image URL rather than leaking the placeholder markup.
func (s *ReadingService) resolveFigures(html string, figures []models.Figure) string {
	if html == "" || !strings.Contains(html, "{{FIGURE:") {
		return html
	}

	byName := make(map[string]string, len(figures)*2)
	for _, figure := range figures {
		name := figure.OriginalFilename
		byName[strings.ToLower(name)] = figure.Locator
		if ext := strings.LastIndex(name, "."); ext > 0 {
			byName[strings.ToLower(name[:ext])] = figure.Locator
		}
	}

	return figurePlaceholderRe.ReplaceAllStringFunc(html, func(match string) string {
		href := strings.TrimSuffix(strings.TrimPrefix(match, "{{FIGURE:"), "}}")
		key := strings.ToLower(href)
		if locator, ok := byName[key]; ok {
			return s.figureURL(locator)
		}
		if ext := strings.LastIndex(key, "."); ext > 0 {
			if locator, ok := byName[key[:ext]]; ok {
				return s.figureURL(locator)
			}
		}
		s.logger.Debug("unresolved figure reference", zap.String("href", href))
		return s.baseURL + "/api/v1/figures/missing/image"
	})
}

func (s *ReadingService) figureURL(locator string) string {
	return fmt.Sprintf("%s/api/v1/figures/%s/image", s.baseURL, locator)
}

func htmlEscape(text string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(text)
}
