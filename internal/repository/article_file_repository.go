package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aethra-press/publishing-api/internal/models"
)

// ArticleFileRepository handles persistence for article artifact slots.
type ArticleFileRepository struct {
	db *sqlx.DB
}

// NewArticleFileRepository creates a new repository instance.
func NewArticleFileRepository(db *sqlx.DB) *ArticleFileRepository {
	return &ArticleFileRepository{db: db}
}

const articleFileColumns = "id, article_id, kind, storage_path, original_filename, mime_type, size_bytes, created_at, updated_at"

// ListByArticle returns every stored artifact for an article.
func (r *ArticleFileRepository) ListByArticle(ctx context.Context, articleID string) ([]models.ArticleFile, error) {
	query := fmt.Sprintf("SELECT %s FROM article_files WHERE article_id = $1 ORDER BY kind ASC", articleFileColumns)
	var files []models.ArticleFile
	if err := r.db.SelectContext(ctx, &files, query, articleID); err != nil {
		return nil, fmt.Errorf("list article files: %w", err)
	}
	return files, nil
}

// FindByKind returns the artifact of a given kind for an article.
func (r *ArticleFileRepository) FindByKind(ctx context.Context, articleID string, kind models.FileKind) (*models.ArticleFile, error) {
	query := fmt.Sprintf("SELECT %s FROM article_files WHERE article_id = $1 AND kind = $2", articleFileColumns)
	var file models.ArticleFile
	if err := r.db.GetContext(ctx, &file, query, articleID, kind); err != nil {
		return nil, err
	}
	return &file, nil
}

// Upsert stores or replaces the artifact slot for (article, kind). The
// unique constraint on the pair makes a concurrent double-upload collapse
// into a replace.
func (r *ArticleFileRepository) Upsert(ctx context.Context, file *models.ArticleFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now

	const query = `INSERT INTO article_files (id, article_id, kind, storage_path, original_filename, mime_type, size_bytes, created_at, updated_at)
		VALUES (:id, :article_id, :kind, :storage_path, :original_filename, :mime_type, :size_bytes, :created_at, :updated_at)
		ON CONFLICT (article_id, kind) DO UPDATE SET
			storage_path = EXCLUDED.storage_path,
			original_filename = EXCLUDED.original_filename,
			mime_type = EXCLUDED.mime_type,
			size_bytes = EXCLUDED.size_bytes,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, file); err != nil {
		return fmt.Errorf("upsert article file: %w", err)
	}
	return nil
}

// Delete removes the artifact slot of a given kind.
func (r *ArticleFileRepository) Delete(ctx context.Context, articleID string, kind models.FileKind) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM article_files WHERE article_id = $1 AND kind = $2`, articleID, kind); err != nil {
		return fmt.Errorf("delete article file: %w", err)
	}
	return nil
}
