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

// IssueRepository handles persistence for volume issues.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new repository instance.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = "id, volume_id, issue_number, title, published_on, created_at, updated_at"

// ListByVolume returns a volume's issues in reading order.
func (r *IssueRepository) ListByVolume(ctx context.Context, volumeID string) ([]models.Issue, error) {
	query := fmt.Sprintf("SELECT %s FROM issues WHERE volume_id = $1 ORDER BY issue_number ASC", issueColumns)
	var issues []models.Issue
	if err := r.db.SelectContext(ctx, &issues, query, volumeID); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// FindByID returns an issue by id.
func (r *IssueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	query := fmt.Sprintf("SELECT %s FROM issues WHERE id = $1", issueColumns)
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id); err != nil {
		return nil, err
	}
	return &issue, nil
}

// ExistsByNumber checks uniqueness of an issue number within a volume.
func (r *IssueRepository) ExistsByNumber(ctx context.Context, volumeID string, number int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM issues WHERE volume_id = $1 AND issue_number = $2"
	args := []interface{}{volumeID, number}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check issue number: %w", err)
	}
	return true, nil
}

// Create persists a new issue.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now

	const query = `INSERT INTO issues (id, volume_id, issue_number, title, published_on, created_at, updated_at) VALUES (:id, :volume_id, :issue_number, :title, :published_on, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

// Update modifies issue metadata.
func (r *IssueRepository) Update(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now().UTC()
	const query = `UPDATE issues SET issue_number = :issue_number, title = :title, published_on = :published_on, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	return nil
}

// Delete removes an issue record.
func (r *IssueRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	return nil
}

// CountArticles returns the number of articles placed in the issue.
func (r *IssueRepository) CountArticles(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE issue_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count issue articles: %w", err)
	}
	return count, nil
}
