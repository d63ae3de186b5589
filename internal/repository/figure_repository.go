package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aethra-press/publishing-api/internal/models"
)

// FigureRepository handles persistence for article figures.
type FigureRepository struct {
	db *sqlx.DB
}

// NewFigureRepository creates a new repository instance.
func NewFigureRepository(db *sqlx.DB) *FigureRepository {
	return &FigureRepository{db: db}
}

const figureColumns = "id, article_id, label, caption, locator, storage_path, original_filename, display_order, created_at, updated_at"

// ListByArticle returns an article's figures in display order.
func (r *FigureRepository) ListByArticle(ctx context.Context, articleID string) ([]models.Figure, error) {
	query := fmt.Sprintf("SELECT %s FROM figures WHERE article_id = $1 ORDER BY display_order ASC, created_at ASC", figureColumns)
	var figures []models.Figure
	if err := r.db.SelectContext(ctx, &figures, query, articleID); err != nil {
		return nil, fmt.Errorf("list figures: %w", err)
	}
	return figures, nil
}

// FindByID returns a figure by id.
func (r *FigureRepository) FindByID(ctx context.Context, id string) (*models.Figure, error) {
	query := fmt.Sprintf("SELECT %s FROM figures WHERE id = $1", figureColumns)
	var figure models.Figure
	if err := r.db.GetContext(ctx, &figure, query, id); err != nil {
		return nil, err
	}
	return &figure, nil
}

// FindByLocator resolves a figure through its permanent locator.
func (r *FigureRepository) FindByLocator(ctx context.Context, locator string) (*models.Figure, error) {
	query := fmt.Sprintf("SELECT %s FROM figures WHERE locator = $1", figureColumns)
	var figure models.Figure
	if err := r.db.GetContext(ctx, &figure, query, locator); err != nil {
		return nil, err
	}
	return &figure, nil
}

// Create persists a new figure with its freshly minted locator.
func (r *FigureRepository) Create(ctx context.Context, figure *models.Figure) error {
	if figure.ID == "" {
		figure.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if figure.CreatedAt.IsZero() {
		figure.CreatedAt = now
	}
	figure.UpdatedAt = now

	const query = `INSERT INTO figures (id, article_id, label, caption, locator, storage_path, original_filename, display_order, created_at, updated_at) VALUES (:id, :article_id, :label, :caption, :locator, :storage_path, :original_filename, :display_order, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, figure); err != nil {
		return fmt.Errorf("create figure: %w", err)
	}
	return nil
}

// Update modifies figure metadata; the locator never changes.
func (r *FigureRepository) Update(ctx context.Context, figure *models.Figure) error {
	figure.UpdatedAt = time.Now().UTC()
	const query = `UPDATE figures SET label = :label, caption = :caption, display_order = :display_order, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, figure); err != nil {
		return fmt.Errorf("update figure: %w", err)
	}
	return nil
}

// ReplaceImage swaps the stored image behind a figure, keeping its
// locator intact so published HTML keeps resolving.
func (r *FigureRepository) ReplaceImage(ctx context.Context, id, storagePath, originalFilename string) error {
	const query = `UPDATE figures SET storage_path = $2, original_filename = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, storagePath, originalFilename, time.Now().UTC()); err != nil {
		return fmt.Errorf("replace figure image: %w", err)
	}
	return nil
}

// Delete removes a figure record. The locator value retires with it.
func (r *FigureRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM figures WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete figure: %w", err)
	}
	return nil
}
