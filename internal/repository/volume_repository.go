package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aethra-press/publishing-api/internal/models"
)

// VolumeRepository handles persistence for journal volumes.
type VolumeRepository struct {
	db *sqlx.DB
}

// NewVolumeRepository creates a new repository instance.
func NewVolumeRepository(db *sqlx.DB) *VolumeRepository {
	return &VolumeRepository{db: db}
}

const volumeColumns = "id, journal_id, volume_number, year, title, created_at, updated_at"

// ListByJournal returns a journal's volumes, newest first.
func (r *VolumeRepository) ListByJournal(ctx context.Context, journalID string) ([]models.Volume, error) {
	query := fmt.Sprintf("SELECT %s FROM volumes WHERE journal_id = $1 ORDER BY volume_number DESC", volumeColumns)
	var volumes []models.Volume
	if err := r.db.SelectContext(ctx, &volumes, query, journalID); err != nil {
		return nil, fmt.Errorf("list volumes: %w", err)
	}
	return volumes, nil
}

// FindByID returns a volume by id.
func (r *VolumeRepository) FindByID(ctx context.Context, id string) (*models.Volume, error) {
	query := fmt.Sprintf("SELECT %s FROM volumes WHERE id = $1", volumeColumns)
	var volume models.Volume
	if err := r.db.GetContext(ctx, &volume, query, id); err != nil {
		return nil, err
	}
	return &volume, nil
}

// ExistsByNumber checks uniqueness of a volume number within a journal.
func (r *VolumeRepository) ExistsByNumber(ctx context.Context, journalID string, number int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM volumes WHERE journal_id = $1 AND volume_number = $2"
	args := []interface{}{journalID, number}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check volume number: %w", err)
	}
	return true, nil
}

// Create persists a new volume.
func (r *VolumeRepository) Create(ctx context.Context, volume *models.Volume) error {
	if volume.ID == "" {
		volume.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if volume.CreatedAt.IsZero() {
		volume.CreatedAt = now
	}
	volume.UpdatedAt = now

	const query = `INSERT INTO volumes (id, journal_id, volume_number, year, title, created_at, updated_at) VALUES (:id, :journal_id, :volume_number, :year, :title, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, volume); err != nil {
		return fmt.Errorf("create volume: %w", err)
	}
	return nil
}

// Update modifies volume metadata.
func (r *VolumeRepository) Update(ctx context.Context, volume *models.Volume) error {
	volume.UpdatedAt = time.Now().UTC()
	const query = `UPDATE volumes SET volume_number = :volume_number, year = :year, title = :title, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, volume); err != nil {
		return fmt.Errorf("update volume: %w", err)
	}
	return nil
}

// Delete removes a volume record.
func (r *VolumeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM volumes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete volume: %w", err)
	}
	return nil
}

// CountArticles returns the number of articles placed in the volume.
func (r *VolumeRepository) CountArticles(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE volume_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count volume articles: %w", err)
	}
	return count, nil
}
