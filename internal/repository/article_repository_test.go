package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethra-press/publishing-api/internal/models"
)

func newArticleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func articleRows(t *testing.T) *sqlmock.Rows {
	t.Helper()
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "journal_id", "volume_id", "issue_id", "is_special_issue", "status", "article_type", "title", "slug", "doi", "abstract", "keywords", "authors", "page_start", "page_end", "received_on", "accepted_on", "published_on", "created_at", "updated_at"}).
		AddRow("article-1", "journal-1", "volume-1", nil, false, "published", "research",
			"Thermal Adaptation", "thermal-adaptation", "10.5555/x", "abs", pq.StringArray{"moss"}, pq.StringArray{"Adaeze Okafor"}, "12", "29", nil, nil, now, now, now)
}

func TestArticleRepositoryListByVolume(t *testing.T) {
	db, mock, cleanup := newArticleRepoMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM articles WHERE 1=1 AND journal_id = $1 AND volume_id = $2")).
		WithArgs("journal-1", "volume-1").
		WillReturnRows(articleRows(t))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM articles")).
		WithArgs("journal-1", "volume-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	articles, total, err := repo.List(context.Background(), models.ArticleFilter{JournalID: "journal-1", VolumeID: "volume-1"})
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "thermal-adaptation", articles[0].Slug)
	require.NotNil(t, articles[0].VolumeID)
	assert.Equal(t, "volume-1", *articles[0].VolumeID)
	assert.Nil(t, articles[0].IssueID)
}

func TestArticleRepositoryExistsBySlug(t *testing.T) {
	db, mock, cleanup := newArticleRepoMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM articles WHERE journal_id = $1 AND LOWER(slug) = LOWER($2)")).
		WithArgs("journal-1", "thermal-adaptation").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsBySlug(context.Background(), "journal-1", "thermal-adaptation", "")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestArticleRepositoryExistsBySlugNoMatch(t *testing.T) {
	db, mock, cleanup := newArticleRepoMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM articles")).
		WithArgs("journal-1", "fresh-slug", "article-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsBySlug(context.Background(), "journal-1", "fresh-slug", "article-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestArticleRepositoryUpdatePlacement(t *testing.T) {
	db, mock, cleanup := newArticleRepoMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	volumeID := "volume-2"
	issueID := "issue-7"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET journal_id = $1, volume_id = $2, issue_id = $3, is_special_issue = $4")).
		WithArgs("journal-1", volumeID, issueID, false, sqlmock.AnyArg(), "article-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdatePlacement(context.Background(), "article-1", models.Placement{
		JournalID: "journal-1",
		VolumeID:  &volumeID,
		IssueID:   &issueID,
	})
	require.NoError(t, err)
}

func TestArticleRepositoryUpdatePlacementMissingArticle(t *testing.T) {
	db, mock, cleanup := newArticleRepoMock(t)
	defer cleanup()
	repo := NewArticleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE articles SET journal_id")).
		WithArgs("journal-1", nil, nil, true, sqlmock.AnyArg(), "article-99").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePlacement(context.Background(), "article-99", models.Placement{
		JournalID:      "journal-1",
		IsSpecialIssue: true,
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
