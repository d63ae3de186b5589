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

type volumeRepository interface {
	ListByJournal(ctx context.Context, journalID string) ([]models.Volume, error)
	FindByID(ctx context.Context, id string) (*models.Volume, error)
	ExistsByNumber(ctx context.Context, journalID string, number int, excludeID string) (bool, error)
	Create(ctx context.Context, volume *models.Volume) error
	Update(ctx context.Context, volume *models.Volume) error
	Delete(ctx context.Context, id string) error
	CountArticles(ctx context.Context, id string) (int, error)
}

// VolumeService handles volume workflows within a journal.
type VolumeService struct {
	repo     volumeRepository
	journals journalRepository
	logger   *zap.Logger
}

// NewVolumeService creates a new volume service.
func NewVolumeService(repo volumeRepository, journals journalRepository, logger *zap.Logger) *VolumeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VolumeService{repo: repo, journals: journals, logger: logger}
}

// ListByJournal returns a journal's volumes.
func (s *VolumeService) ListByJournal(ctx context.Context, journalID string) ([]models.Volume, error) {
	if _, err := s.journals.FindByID(ctx, journalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	volumes, err := s.repo.ListByJournal(ctx, journalID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list volumes")
	}
	return volumes, nil
}

// Get returns a volume by identifier.
func (s *VolumeService) Get(ctx context.Context, id string) (*models.Volume, error) {
	volume, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "volume not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load volume")
	}
	return volume, nil
}

// Create adds a volume to a journal, enforcing number uniqueness.
func (s *VolumeService) Create(ctx context.Context, journalID string, req dto.CreateVolumeRequest) (*models.Volume, error) {
	if _, err := s.journals.FindByID(ctx, journalID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "journal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load journal")
	}
	if req.VolumeNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "volume number must be positive")
	}
	if req.Year < 1800 || req.Year > time.Now().Year()+1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "year is out of range")
	}

	exists, err := s.repo.ExistsByNumber(ctx, journalID, req.VolumeNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check volume number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "volume number already exists in journal")
	}

	volume := &models.Volume{
		JournalID:    journalID,
		VolumeNumber: req.VolumeNumber,
		Year:         req.Year,
		Title:        req.Title,
	}
	if err := s.repo.Create(ctx, volume); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create volume")
	}
	return volume, nil
}

// Update modifies volume metadata.
func (s *VolumeService) Update(ctx context.Context, id string, req dto.CreateVolumeRequest) (*models.Volume, error) {
	volume, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.VolumeNumber < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "volume number must be positive")
	}

	if req.VolumeNumber != volume.VolumeNumber {
		exists, err := s.repo.ExistsByNumber(ctx, volume.JournalID, req.VolumeNumber, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check volume number")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "volume number already exists in journal")
		}
	}

	volume.VolumeNumber = req.VolumeNumber
	if req.Year != 0 {
		volume.Year = req.Year
	}
	volume.Title = req.Title

	if err := s.repo.Update(ctx, volume); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update volume")
	}
	return volume, nil
}

// Delete removes an empty volume.
func (s *VolumeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountArticles(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count volume articles")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "volume still contains articles")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete volume")
	}
	return nil
}
