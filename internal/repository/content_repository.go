package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aethra-press/publishing-api/internal/models"
)

// ContentRepository handles the per-article parsing record and parsed
// HTML sections. The source_version column carries the optimistic
// concurrency scheme: every commit is conditional on the version the
// parse began with.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository creates a new repository instance.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

const contentColumns = "article_id, source_version, status, error_message, parsed_at, abstract_html, body_html, references_html, created_at, updated_at"

// FindByArticleID returns the parsing record for an article.
func (r *ContentRepository) FindByArticleID(ctx context.Context, articleID string) (*models.ArticleContent, error) {
	query := fmt.Sprintf("SELECT %s FROM article_content WHERE article_id = $1", contentColumns)
	var content models.ArticleContent
	if err := r.db.GetContext(ctx, &content, query, articleID); err != nil {
		return nil, err
	}
	return &content, nil
}

// BumpVersion registers a new manuscript upload: it creates the parsing
// record on first upload, increments source_version otherwise, and moves
// the status to pending. Returns the version the upcoming parse must
// commit against.
func (r *ContentRepository) BumpVersion(ctx context.Context, articleID string) (int64, error) {
	const query = `INSERT INTO article_content (article_id, source_version, status, created_at, updated_at)
		VALUES ($1, 1, $2, $3, $3)
		ON CONFLICT (article_id) DO UPDATE SET
			source_version = article_content.source_version + 1,
			status = $2,
			error_message = NULL,
			updated_at = $3
		RETURNING source_version`
	var version int64
	if err := r.db.GetContext(ctx, &version, query, articleID, models.ParsingStatusPending, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("bump source version: %w", err)
	}
	return version, nil
}

// MarkPending resets an existing record to pending without changing the
// source version, used for manual reparses of the current source.
func (r *ContentRepository) MarkPending(ctx context.Context, articleID string) (int64, error) {
	const query = `UPDATE article_content SET status = $2, error_message = NULL, updated_at = $3 WHERE article_id = $1 RETURNING source_version`
	var version int64
	if err := r.db.GetContext(ctx, &version, query, articleID, models.ParsingStatusPending, time.Now().UTC()); err != nil {
		return 0, err
	}
	return version, nil
}

// CommitSuccess stores the parsed sections if the record still carries
// the version the parse began with. All three sections are written in
// one statement, so readers see either the old rendition or the new one.
// Returns false when a newer upload superseded the parse.
func (r *ContentRepository) CommitSuccess(ctx context.Context, articleID string, version int64, content models.StructuredContent) (bool, error) {
	now := time.Now().UTC()
	const query = `UPDATE article_content SET
			status = $3,
			error_message = NULL,
			parsed_at = $4,
			abstract_html = $5,
			body_html = $6,
			references_html = $7,
			updated_at = $4
		WHERE article_id = $1 AND source_version = $2`
	res, err := r.db.ExecContext(ctx, query, articleID, version, models.ParsingStatusSuccess, now,
		content.AbstractHTML, content.BodyHTML, content.ReferencesHTML)
	if err != nil {
		return false, fmt.Errorf("commit parsed content: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("commit parsed content: %w", err)
	}
	return rows == 1, nil
}

// CommitFailure records a failed parse under the same version condition.
// The previously parsed sections are kept so the reading surface can
// keep serving the last good rendition.
func (r *ContentRepository) CommitFailure(ctx context.Context, articleID string, version int64, message string) (bool, error) {
	const query = `UPDATE article_content SET status = $3, error_message = $4, updated_at = $5 WHERE article_id = $1 AND source_version = $2`
	res, err := r.db.ExecContext(ctx, query, articleID, version, models.ParsingStatusFailed, message, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("commit parse failure: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("commit parse failure: %w", err)
	}
	return rows == 1, nil
}

// Delete removes the parsing record, used when the article is deleted.
func (r *ContentRepository) Delete(ctx context.Context, articleID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM article_content WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("delete article content: %w", err)
	}
	return nil
}
