package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type articleRepository interface {
	List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, int, error)
	FindByID(ctx context.Context, id string) (*models.Article, error)
	FindBySlug(ctx context.Context, journalID, slug string) (*models.Article, error)
	ExistsBySlug(ctx context.Context, journalID, slug string, excludeID string) (bool, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	UpdatePlacement(ctx context.Context, articleID string, placement models.Placement) error
	Delete(ctx context.Context, id string) error
}

type readingCacheInvalidator interface {
	InvalidateArticle(ctx context.Context, articleID string)
}

// HierarchyService places articles in the journal/volume/issue tree and
// owns article metadata. Every placement is validated as a whole before
// any column changes, and committed in a single statement, so an article
// is never observable half-moved.
type HierarchyService struct {
	articles  articleRepository
	journals  journalRepository
	volumes   volumeRepository
	issues    issueRepository
	cache     readingCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHierarchyService creates a new hierarchy service.
func NewHierarchyService(articles articleRepository, journals journalRepository, volumes volumeRepository, issues issueRepository, cache readingCacheInvalidator, logger *zap.Logger) *HierarchyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HierarchyService{
		articles:  articles,
		journals:  journals,
		volumes:   volumes,
		issues:    issues,
		cache:     cache,
		validator: validator.New(),
		logger:    logger,
	}
}

// validatePlacement checks the full placement against the hierarchy:
// the journal exists; exactly one of special-issue or volume is chosen;
// an issue requires its volume; every referenced container belongs to
// its stated parent.
func (s *HierarchyService) validatePlacement(ctx context.Context, p models.Placement) error {
	if p.JournalID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "journalId is required")
	}
	if _, err := s.journals.FindByID(ctx, p.JournalID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "journal does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}

	hasVolume := p.VolumeID != nil && *p.VolumeID != ""
	hasIssue := p.IssueID != nil && *p.IssueID != ""

	if p.IsSpecialIssue {
		if hasVolume || hasIssue {
			return appErrors.Clone(appErrors.ErrValidation, "a special-issue article cannot reference a volume or issue")
		}
		return nil
	}
	if !hasVolume {
		if hasIssue {
			return appErrors.Clone(appErrors.ErrValidation, "an issue placement requires its volume")
		}
		return appErrors.Clone(appErrors.ErrValidation, "either a volume or the special-issue flag is required")
	}

	volume, err := s.volumes.FindByID(ctx, *p.VolumeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "volume does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
	}
	if volume.JournalID != p.JournalID {
		return appErrors.Clone(appErrors.ErrValidation, "volume belongs to a different journal")
	}

	if hasIssue {
		issue, err := s.issues.FindByID(ctx, *p.IssueID)
		if err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrValidation, "issue does not exist")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
		}
		if issue.VolumeID != *p.VolumeID {
			return appErrors.Clone(appErrors.ErrValidation, "issue belongs to a different volume")
		}
	}

	return nil
}

// List returns paginated articles.
func (s *HierarchyService) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, *models.Pagination, error) {
	articles, total, err := s.articles.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list articles")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return articles, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Contents builds the read-time grouping of a journal's published
// articles: volumes (newest first) with their issues, volume-level
// articles that sit outside any issue, and the special-issue bucket.
// Nothing here is stored; the projection is recomputed per request.
func (s *HierarchyService) Contents(ctx context.Context, journalID string) (*dto.JournalContents, error) {
	journal, err := s.journals.FindByID(ctx, journalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}

	volumes, err := s.volumes.ListByJournal(ctx, journalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list volumes")
	}

	articles, err := s.listAllPublished(ctx, journalID)
	if err != nil {
		return nil, err
	}

	byIssue := make(map[string][]dto.ContentsArticle)
	byVolume := make(map[string][]dto.ContentsArticle)
	var special []dto.ContentsArticle
	for i := range articles {
		summary := contentsSummary(&articles[i])
		switch {
		case articles[i].IsSpecialIssue:
			special = append(special, summary)
		case articles[i].IssueID != nil:
			byIssue[*articles[i].IssueID] = append(byIssue[*articles[i].IssueID], summary)
		case articles[i].VolumeID != nil:
			byVolume[*articles[i].VolumeID] = append(byVolume[*articles[i].VolumeID], summary)
		}
	}

	contents := &dto.JournalContents{
		JournalID:    journal.ID,
		Slug:         journal.Slug,
		Title:        journal.Title,
		Volumes:      make([]dto.ContentsVolume, 0, len(volumes)),
		SpecialIssue: special,
	}
	for _, volume := range volumes {
		issues, err := s.issues.ListByVolume(ctx, volume.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
		}
		group := dto.ContentsVolume{
			ID:           volume.ID,
			VolumeNumber: volume.VolumeNumber,
			Year:         volume.Year,
			Title:        volume.Title,
			Label:        fmt.Sprintf("Vol. %d (%d)", volume.VolumeNumber, volume.Year),
			Issues:       make([]dto.ContentsIssue, 0, len(issues)),
			Unassigned:   byVolume[volume.ID],
		}
		for _, issue := range issues {
			group.Issues = append(group.Issues, dto.ContentsIssue{
				ID:          issue.ID,
				IssueNumber: issue.IssueNumber,
				Title:       issue.Title,
				Label:       fmt.Sprintf("No. %d", issue.IssueNumber),
				Articles:    byIssue[issue.ID],
			})
		}
		contents.Volumes = append(contents.Volumes, group)
	}
	return contents, nil
}

// listAllPublished pages through the article listing so journals with
// more articles than one page still group completely.
func (s *HierarchyService) listAllPublished(ctx context.Context, journalID string) ([]models.Article, error) {
	var out []models.Article
	filter := models.ArticleFilter{
		JournalID: journalID,
		Status:    models.ArticleStatusPublished,
		Page:      1,
		PageSize:  100,
		SortBy:    "published_on",
		SortOrder: "asc",
	}
	for {
		batch, total, err := s.articles.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list articles")
		}
		out = append(out, batch...)
		if len(batch) == 0 || len(out) >= total {
			return out, nil
		}
		filter.Page++
	}
}

func contentsSummary(article *models.Article) dto.ContentsArticle {
	summary := dto.ContentsArticle{
		ID:      article.ID,
		Title:   article.Title,
		Slug:    article.Slug,
		DOI:     article.DOI,
		Authors: article.Authors,
		Pages:   article.Pages(),
	}
	if article.PublishedOn != nil {
		summary.PublishedOn = article.PublishedOn.Format("2006-01-02")
	}
	return summary
}

// Get returns an article by identifier.
func (s *HierarchyService) Get(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}
	return article, nil
}

// Create registers a new article at a validated placement.
func (s *HierarchyService) Create(ctx context.Context, req dto.CreateArticleRequest) (*models.Article, error) {
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title, slug and a target journal are required")
	}
	if !slugRe.MatchString(req.Slug) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug must be lowercase letters, digits and hyphens")
	}

	placement := req.Placement.Placement()
	if err := s.validatePlacement(ctx, placement); err != nil {
		return nil, err
	}

	exists, err := s.articles.ExistsBySlug(ctx, placement.JournalID, req.Slug, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check article slug")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "article slug already exists in journal")
	}

	article := &models.Article{
		JournalID:      placement.JournalID,
		VolumeID:       placement.VolumeID,
		IssueID:        placement.IssueID,
		IsSpecialIssue: placement.IsSpecialIssue,
		Type:           req.Type,
		Title:          strings.TrimSpace(req.Title),
		Slug:           req.Slug,
		DOI:            strings.TrimSpace(req.DOI),
		Abstract:       req.Abstract,
		Keywords:       req.Keywords,
	}
	if err := s.articles.Create(ctx, article); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create article")
	}

	s.logger.Info("article created",
		zap.String("articleId", article.ID),
		zap.String("journalId", article.JournalID),
		zap.Bool("specialIssue", article.IsSpecialIssue))
	return article, nil
}

// Update modifies article metadata.
func (s *HierarchyService) Update(ctx context.Context, id string, req dto.UpdateArticleRequest) (*models.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if !slugRe.MatchString(slug) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "slug must be lowercase letters, digits and hyphens")
		}
		if slug != article.Slug {
			exists, err := s.articles.ExistsBySlug(ctx, article.JournalID, slug, id)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check article slug")
			}
			if exists {
				return nil, appErrors.Clone(appErrors.ErrConflict, "article slug already exists in journal")
			}
			article.Slug = slug
		}
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be empty")
		}
		article.Title = strings.TrimSpace(*req.Title)
	}
	if req.Type != nil {
		article.Type = *req.Type
	}
	if req.Status != nil {
		switch *req.Status {
		case models.ArticleStatusDraft, models.ArticleStatusPublished, models.ArticleStatusArchived:
			article.Status = *req.Status
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown article status")
		}
	}
	if req.DOI != nil {
		article.DOI = strings.TrimSpace(*req.DOI)
	}
	if req.Abstract != nil {
		article.Abstract = *req.Abstract
	}
	if req.Keywords != nil {
		article.Keywords = req.Keywords
	}
	if req.PageStart != nil {
		article.PageStart = *req.PageStart
	}
	if req.PageEnd != nil {
		article.PageEnd = *req.PageEnd
	}
	for _, date := range []struct {
		raw  *string
		dest **time.Time
	}{
		{req.ReceivedOn, &article.ReceivedOn},
		{req.AcceptedOn, &article.AcceptedOn},
		{req.PublishedOn, &article.PublishedOn},
	} {
		if date.raw == nil {
			continue
		}
		if *date.raw == "" {
			*date.dest = nil
			continue
		}
		parsed, err := time.Parse("2006-01-02", *date.raw)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "dates must be formatted YYYY-MM-DD")
		}
		*date.dest = &parsed
	}

	if err := s.articles.Update(ctx, article); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update article")
	}
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, id)
	}
	return article, nil
}

// Move re-places an article anywhere in the hierarchy, including across
// journals. Validation runs against the complete target placement first;
// the failed move leaves the current placement untouched.
func (s *HierarchyService) Move(ctx context.Context, id string, req dto.PlacementRequest) (*models.Article, error) {
	article, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	placement := req.Placement()
	if err := s.validatePlacement(ctx, placement); err != nil {
		return nil, err
	}

	if placement.JournalID != article.JournalID {
		// slug uniqueness is scoped per journal, so a cross-journal move
		// can collide with an existing slug in the target
		exists, err := s.articles.ExistsBySlug(ctx, placement.JournalID, article.Slug, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check article slug")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "article slug already exists in target journal")
		}
	}

	if err := s.articles.UpdatePlacement(ctx, id, placement); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move article")
	}

	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, id)
	}
	s.logger.Info("article moved",
		zap.String("articleId", id),
		zap.String("journalId", placement.JournalID),
		zap.Bool("specialIssue", placement.IsSpecialIssue))

	return s.Get(ctx, id)
}

// Delete removes an article.
func (s *HierarchyService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete article")
	}
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, id)
	}
	return nil
}
