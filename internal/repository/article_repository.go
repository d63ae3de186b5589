package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aethra-press/publishing-api/internal/models"
)

// ArticleRepository handles persistence for articles.
type ArticleRepository struct {
	db *sqlx.DB
}

// NewArticleRepository creates a new repository instance.
func NewArticleRepository(db *sqlx.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

const articleColumns = "id, journal_id, volume_id, issue_id, is_special_issue, status, article_type, title, slug, doi, abstract, keywords, authors, page_start, page_end, received_on, accepted_on, published_on, created_at, updated_at"

// List returns articles matching filters with pagination metadata.
func (r *ArticleRepository) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, int, error) {
	base := "FROM articles WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.JournalID != "" {
		conditions = append(conditions, fmt.Sprintf("journal_id = $%d", len(args)+1))
		args = append(args, filter.JournalID)
	}
	if filter.VolumeID != "" {
		conditions = append(conditions, fmt.Sprintf("volume_id = $%d", len(args)+1))
		args = append(args, filter.VolumeID)
	}
	if filter.IssueID != "" {
		conditions = append(conditions, fmt.Sprintf("issue_id = $%d", len(args)+1))
		args = append(args, filter.IssueID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(slug) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":        true,
		"slug":         true,
		"published_on": true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", articleColumns, base, sortBy, order, size, offset)
	var articles []models.Article
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list articles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count articles: %w", err)
	}

	return articles, total, nil
}

// FindByID returns an article by id.
func (r *ArticleRepository) FindByID(ctx context.Context, id string) (*models.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE id = $1", articleColumns)
	var article models.Article
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		return nil, err
	}
	return &article, nil
}

// FindBySlug returns an article by journal and slug.
func (r *ArticleRepository) FindBySlug(ctx context.Context, journalID, slug string) (*models.Article, error) {
	query := fmt.Sprintf("SELECT %s FROM articles WHERE journal_id = $1 AND slug = $2", articleColumns)
	var article models.Article
	if err := r.db.GetContext(ctx, &article, query, journalID, slug); err != nil {
		return nil, err
	}
	return &article, nil
}

// ExistsBySlug checks slug uniqueness within a journal.
func (r *ArticleRepository) ExistsBySlug(ctx context.Context, journalID, slug string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM articles WHERE journal_id = $1 AND LOWER(slug) = LOWER($2)"
	args := []interface{}{journalID, slug}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check article slug: %w", err)
	}
	return true, nil
}

// Create persists a new article.
func (r *ArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}
	if article.Type == "" {
		article.Type = models.ArticleTypeResearch
	}

	const query = `INSERT INTO articles (id, journal_id, volume_id, issue_id, is_special_issue, status, article_type, title, slug, doi, abstract, keywords, authors, page_start, page_end, received_on, accepted_on, published_on, created_at, updated_at) VALUES (:id, :journal_id, :volume_id, :issue_id, :is_special_issue, :status, :article_type, :title, :slug, :doi, :abstract, :keywords, :authors, :page_start, :page_end, :received_on, :accepted_on, :published_on, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, article); err != nil {
		return fmt.Errorf("create article: %w", err)
	}
	return nil
}

// Update modifies article metadata. Placement columns are untouched;
// UpdatePlacement owns those.
func (r *ArticleRepository) Update(ctx context.Context, article *models.Article) error {
	article.UpdatedAt = time.Now().UTC()
	const query = `UPDATE articles SET status = :status, article_type = :article_type, title = :title, slug = :slug, doi = :doi, abstract = :abstract, keywords = :keywords, authors = :authors, page_start = :page_start, page_end = :page_end, received_on = :received_on, accepted_on = :accepted_on, published_on = :published_on, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, article); err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

// UpdatePlacement rewrites the hierarchy columns in one statement so a
// move is atomic: readers never observe an article with a half-applied
// placement.
func (r *ArticleRepository) UpdatePlacement(ctx context.Context, articleID string, placement models.Placement) error {
	const query = `UPDATE articles SET journal_id = $1, volume_id = $2, issue_id = $3, is_special_issue = $4, updated_at = $5 WHERE id = $6`
	res, err := r.db.ExecContext(ctx, query,
		placement.JournalID, placement.VolumeID, placement.IssueID, placement.IsSpecialIssue,
		time.Now().UTC(), articleID)
	if err != nil {
		return fmt.Errorf("update article placement: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an article record.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}
