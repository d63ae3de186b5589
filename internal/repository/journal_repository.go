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

// JournalRepository handles persistence for journals.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository creates a new repository instance.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

const journalColumns = "id, slug, title, short_title, issn, description, created_at, updated_at"

// List returns journals matching filters with pagination metadata.
func (r *JournalRepository) List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int, error) {
	base := "FROM journals WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(slug) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY title ASC LIMIT %d OFFSET %d", journalColumns, base, size, offset)
	var journals []models.Journal
	if err := r.db.SelectContext(ctx, &journals, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list journals: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count journals: %w", err)
	}

	return journals, total, nil
}

// FindByID returns a journal by id.
func (r *JournalRepository) FindByID(ctx context.Context, id string) (*models.Journal, error) {
	query := fmt.Sprintf("SELECT %s FROM journals WHERE id = $1", journalColumns)
	var journal models.Journal
	if err := r.db.GetContext(ctx, &journal, query, id); err != nil {
		return nil, err
	}
	return &journal, nil
}

// FindBySlug returns a journal by its public slug.
func (r *JournalRepository) FindBySlug(ctx context.Context, slug string) (*models.Journal, error) {
	query := fmt.Sprintf("SELECT %s FROM journals WHERE slug = $1", journalColumns)
	var journal models.Journal
	if err := r.db.GetContext(ctx, &journal, query, slug); err != nil {
		return nil, err
	}
	return &journal, nil
}

// ExistsBySlug checks uniqueness of a journal slug.
func (r *JournalRepository) ExistsBySlug(ctx context.Context, slug string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM journals WHERE LOWER(slug) = LOWER($1)"
	args := []interface{}{slug}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check journal slug: %w", err)
	}
	return true, nil
}

// Create persists a new journal.
func (r *JournalRepository) Create(ctx context.Context, journal *models.Journal) error {
	if journal.ID == "" {
		journal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if journal.CreatedAt.IsZero() {
		journal.CreatedAt = now
	}
	journal.UpdatedAt = now

	const query = `INSERT INTO journals (id, slug, title, short_title, issn, description, created_at, updated_at) VALUES (:id, :slug, :title, :short_title, :issn, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, journal); err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	return nil
}

// Update modifies journal metadata.
func (r *JournalRepository) Update(ctx context.Context, journal *models.Journal) error {
	journal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE journals SET title = :title, short_title = :short_title, issn = :issn, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, journal); err != nil {
		return fmt.Errorf("update journal: %w", err)
	}
	return nil
}

// Delete removes a journal record.
func (r *JournalRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM journals WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete journal: %w", err)
	}
	return nil
}

// CountArticles returns the number of articles placed in the journal.
func (r *JournalRepository) CountArticles(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE journal_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count journal articles: %w", err)
	}
	return count, nil
}
