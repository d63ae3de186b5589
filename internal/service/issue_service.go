package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type issueRepository interface {
	ListByVolume(ctx context.Context, volumeID string) ([]models.Issue, error)
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	ExistsByNumber(ctx context.Context, volumeID string, number int, excludeID string) (bool, error)
	Create(ctx context.Context, issue *models.Issue) error
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id string) error
	CountArticles(ctx context.Context, id string) (int, error)
}

// IssueService handles issue workflows within a volume.
type IssueService struct {
	repo    issueRepository
	volumes volumeRepository
	logger  *zap.Logger
}

// NewIssueService creates a new issue service.
func NewIssueService(repo issueRepository, volumes volumeRepository, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{repo: repo, volumes: volumes, logger: logger}
}

// ListByVolume returns a volume's issues.
func (s *IssueService) ListByVolume(ctx context.Context, volumeID string) ([]models.Issue, error) {
	if _, err := s.volumes.FindByID(ctx, volumeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volume not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
	}
	issues, err := s.repo.ListByVolume(ctx, volumeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	return issues, nil
}

// Get returns an issue by identifier.
func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	return issue, nil
}

// Create adds an issue to a volume, enforcing number uniqueness.
func (s *IssueService) Create(ctx context.Context, volumeID string, req dto.CreateIssueRequest) (*models.Issue, error) {
	if _, err := s.volumes.FindByID(ctx, volumeID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volume not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
	}
	if req.IssueNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "issue number must be positive")
	}

	exists, err := s.repo.ExistsByNumber(ctx, volumeID, req.IssueNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check issue number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "issue number already exists in volume")
	}

	issue := &models.Issue{
		VolumeID:    volumeID,
		IssueNumber: req.IssueNumber,
		Title:       req.Title,
	}
	if req.PublishedOn != "" {
		published, err := time.Parse("2006-01-02", req.PublishedOn)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "publishedOn must be formatted YYYY-MM-DD")
		}
		issue.PublishedOn = &published
	}

	if err := s.repo.Create(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}
	return issue, nil
}

// Update modifies issue metadata.
func (s *IssueService) Update(ctx context.Context, id string, req dto.CreateIssueRequest) (*models.Issue, error) {
	issue, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.IssueNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "issue number must be positive")
	}

	if req.IssueNumber != issue.IssueNumber {
		exists, err := s.repo.ExistsByNumber(ctx, issue.VolumeID, req.IssueNumber, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check issue number")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "issue number already exists in volume")
		}
	}

	issue.IssueNumber = req.IssueNumber
	issue.Title = req.Title
	if req.PublishedOn != "" {
		published, err := time.Parse("2006-01-02", req.PublishedOn)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "publishedOn must be formatted YYYY-MM-DD")
		}
		issue.PublishedOn = &published
	}

	if err := s.repo.Update(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update issue")
	}
	return issue, nil
}

// Delete removes an empty issue.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountArticles(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count issue articles")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "issue still contains articles")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete issue")
	}
	return nil
}
