package service

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type journalRepository interface {
	List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int, error)
	FindByID(ctx context.Context, id string) (*models.Journal, error)
	FindBySlug(ctx context.Context, slug string) (*models.Journal, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID string) (bool, error)
	Create(ctx context.Context, journal *models.Journal) error
	Update(ctx context.Context, journal *models.Journal) error
	Delete(ctx context.Context, id string) error
	CountArticles(ctx context.Context, id string) (int, error)
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// JournalService handles journal registry workflows.
type JournalService struct {
	repo      journalRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJournalService creates a new journal service.
func NewJournalService(repo journalRepository, logger *zap.Logger) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalService{repo: repo, validator: validator.New(), logger: logger}
}

// List returns paginated journals.
func (s *JournalService) List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, *models.Pagination, error) {
	journals, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list journals")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return journals, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a journal by identifier.
func (s *JournalService) Get(ctx context.Context, id string) (*models.Journal, error) {
	journal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	return journal, nil
}

// GetBySlug returns a journal by its public slug.
func (s *JournalService) GetBySlug(ctx context.Context, slug string) (*models.Journal, error) {
	journal, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	return journal, nil
}

// Create registers a new journal ensuring slug uniqueness.
func (s *JournalService) Create(ctx context.Context, req dto.CreateJournalRequest) (*models.Journal, error) {
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug and title are required")
	}
	if !slugRe.MatchString(req.Slug) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug must be lowercase letters, digits and hyphens")
	}

	exists, err := s.repo.ExistsBySlug(ctx, req.Slug, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check journal slug")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "journal slug already exists")
	}

	journal := &models.Journal{
		Slug:        req.Slug,
		Title:       strings.TrimSpace(req.Title),
		ShortTitle:  strings.TrimSpace(req.ShortTitle),
		ISSN:        strings.TrimSpace(req.ISSN),
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, journal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create journal")
	}

	s.logger.Info("journal created", zap.String("journalId", journal.ID), zap.String("slug", journal.Slug))
	return journal, nil
}

// Update modifies journal metadata. The slug is immutable once assigned
// so published reading URLs stay stable.
func (s *JournalService) Update(ctx context.Context, id string, req dto.UpdateJournalRequest) (*models.Journal, error) {
	journal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be empty")
		}
		journal.Title = strings.TrimSpace(*req.Title)
	}
	if req.ShortTitle != nil {
		journal.ShortTitle = strings.TrimSpace(*req.ShortTitle)
	}
	if req.ISSN != nil {
		journal.ISSN = strings.TrimSpace(*req.ISSN)
	}
	if req.Description != nil {
		journal.Description = *req.Description
	}

	if err := s.repo.Update(ctx, journal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update journal")
	}
	return journal, nil
}

// Delete removes an empty journal. Journals carrying articles cannot be
// deleted.
func (s *JournalService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountArticles(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count journal articles")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "journal still contains articles")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete journal")
	}
	return nil
}
