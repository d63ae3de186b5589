package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type figureRepository interface {
	ListByArticle(ctx context.Context, articleID string) ([]models.Figure, error)
	FindByID(ctx context.Context, id string) (*models.Figure, error)
	FindByLocator(ctx context.Context, locator string) (*models.Figure, error)
	Create(ctx context.Context, figure *models.Figure) error
	Update(ctx context.Context, figure *models.Figure) error
	ReplaceImage(ctx context.Context, id, storagePath, originalFilename string) error
	Delete(ctx context.Context, id string) error
}

// FigureService manages article figures. Each figure carries a locator
// minted once at creation; published HTML references figures through
// locators only, so replacing an image never breaks a rendered page and
// a retired locator is never handed to a different figure.
type FigureService struct {
	figures  figureRepository
	articles articleRepository
	blobs    blobStore
	cache    readingCacheInvalidator
	logger   *zap.Logger
}

// NewFigureService creates a new figure service.
func NewFigureService(figures figureRepository, articles articleRepository, blobs blobStore, cache readingCacheInvalidator, logger *zap.Logger) *FigureService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FigureService{figures: figures, articles: articles, blobs: blobs, cache: cache, logger: logger}
}

// ListByArticle returns an article's figures in display order.
func (s *FigureService) ListByArticle(ctx context.Context, articleID string) ([]models.Figure, error) {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}
	figures, err := s.figures.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list figures")
	}
	return figures, nil
}

// Get returns a figure by identifier.
func (s *FigureService) Get(ctx context.Context, id string) (*models.Figure, error) {
	figure, err := s.figures.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "figure not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load figure")
	}
	return figure, nil
}

// Add registers a new figure with a fresh locator and stores its image.
func (s *FigureService) Add(ctx context.Context, articleID, label, caption string, displayOrder int, originalFilename string, r io.Reader) (*models.Figure, error) {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read image upload")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image upload is empty")
	}

	figureID := uuid.NewString()
	// the locator is the permanent public name; it never tracks the
	// storage path, which changes on every image replacement
	locator := uuid.NewString()
	storagePath := fmt.Sprintf("figures/%s/%s%s", articleID, uuid.NewString(), safeExt(originalFilename))
	if _, err := s.blobs.Save(storagePath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store figure image")
	}

	figure := &models.Figure{
		ID:               figureID,
		ArticleID:        articleID,
		Label:            label,
		Caption:          caption,
		Locator:          locator,
		StoragePath:      storagePath,
		OriginalFilename: filepath.Base(originalFilename),
		DisplayOrder:     displayOrder,
	}
	if err := s.figures.Create(ctx, figure); err != nil {
		if cleanupErr := s.blobs.Delete(storagePath); cleanupErr != nil {
			s.logger.Warn("orphaned figure blob cleanup failed", zap.String("path", storagePath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create figure")
	}

	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, articleID)
	}
	s.logger.Info("figure added", zap.String("articleId", articleID), zap.String("figureId", figureID), zap.String("locator", locator))
	return figure, nil
}

// ReplaceImage swaps the stored image behind an existing figure. The
// locator is untouched, so every rendered page pointing at it picks up
// the new image immediately.
func (s *FigureService) ReplaceImage(ctx context.Context, figureID, originalFilename string, r io.Reader) (*models.Figure, error) {
	figure, err := s.Get(ctx, figureID)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read image upload")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "image upload is empty")
	}

	storagePath := fmt.Sprintf("figures/%s/%s%s", figure.ArticleID, uuid.NewString(), safeExt(originalFilename))
	if _, err := s.blobs.Save(storagePath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store figure image")
	}

	oldPath := figure.StoragePath
	if err := s.figures.ReplaceImage(ctx, figureID, storagePath, filepath.Base(originalFilename)); err != nil {
		if cleanupErr := s.blobs.Delete(storagePath); cleanupErr != nil {
			s.logger.Warn("orphaned figure blob cleanup failed", zap.String("path", storagePath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace figure image")
	}
	if oldPath != "" && oldPath != storagePath {
		if err := s.blobs.Delete(oldPath); err != nil {
			s.logger.Warn("previous figure blob cleanup failed", zap.String("path", oldPath), zap.Error(err))
		}
	}

	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, figure.ArticleID)
	}
	return s.Get(ctx, figureID)
}

// Update modifies figure metadata.
func (s *FigureService) Update(ctx context.Context, figureID string, req dto.UpdateFigureRequest) (*models.Figure, error) {
	figure, err := s.Get(ctx, figureID)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		figure.Label = *req.Label
	}
	if req.Caption != nil {
		figure.Caption = *req.Caption
	}
	if req.DisplayOrder != nil {
		figure.DisplayOrder = *req.DisplayOrder
	}

	if err := s.figures.Update(ctx, figure); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update figure")
	}
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, figure.ArticleID)
	}
	return figure, nil
}

// Delete removes a figure; its locator retires with it and is never
// reassigned.
func (s *FigureService) Delete(ctx context.Context, figureID string) error {
	figure, err := s.Get(ctx, figureID)
	if err != nil {
		return err
	}

	if err := s.figures.Delete(ctx, figureID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete figure")
	}
	if err := s.blobs.Delete(figure.StoragePath); err != nil {
		s.logger.Warn("figure blob cleanup failed", zap.String("path", figure.StoragePath), zap.Error(err))
	}
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, figure.ArticleID)
	}
	return nil
}

// OpenByLocator resolves a locator to its current image blob.
func (s *FigureService) OpenByLocator(ctx context.Context, locator string) (*models.Figure, *os.File, error) {
	figure, err := s.figures.FindByLocator(ctx, locator)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "figure not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load figure")
	}
	handle, err := s.blobs.Open(figure.StoragePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open figure image")
	}
	return figure, handle, nil
}
