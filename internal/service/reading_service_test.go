package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type cacheStub struct {
	entries map[string][]byte
	hits    int
	sets    int
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	s.hits++
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = map[string][]byte{}
	}
	s.entries[key] = raw
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range s.entries {
		if len(pattern) > 0 && pattern[len(pattern)-1] == '*' {
			prefix := pattern[:len(pattern)-1]
			if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
				delete(s.entries, key)
			}
		} else if key == pattern {
			delete(s.entries, key)
		}
	}
	return nil
}

func newReadingFixture() (*ReadingService, *articleRepoStub, *contentRepoStub, *figureRepoStub, *cacheStub) {
	volumeID := "volume-1"
	issueID := "issue-1"

	journals := &journalRepoStub{
		journals: map[string]models.Journal{
			"journal-1": {ID: "journal-1", Slug: "montane-ecology", Title: "Journal of Montane Ecology"},
		},
		bySlug: map[string]string{"montane-ecology": "journal-1"},
	}
	volumes := &volumeRepoStub{volumes: map[string]models.Volume{
		"volume-1": {ID: "volume-1", JournalID: "journal-1", VolumeNumber: 14, Year: 2026},
	}}
	issues := &issueRepoStub{issues: map[string]models.Issue{
		"issue-1": {ID: "issue-1", VolumeID: "volume-1", IssueNumber: 2},
	}}
	articles := &articleRepoStub{articles: map[string]models.Article{
		"article-1": {
			ID:        "article-1",
			JournalID: "journal-1",
			VolumeID:  &volumeID,
			IssueID:   &issueID,
			Status:    models.ArticleStatusPublished,
			Title:     "Thermal Adaptation",
			Slug:      "thermal-adaptation",
		},
		"article-2": {
			ID:             "article-2",
			JournalID:      "journal-1",
			IsSpecialIssue: true,
			Status:         models.ArticleStatusDraft,
			Title:          "Draft Piece",
			Slug:           "draft-piece",
		},
	}}
	contents := &contentRepoStub{records: map[string]*models.ArticleContent{
		"article-1": {
			ArticleID:     "article-1",
			SourceVersion: 1,
			Status:        models.ParsingStatusSuccess,
			BodyHTML:      `<div class="article-body"><img src="{{FIGURE:fig1.png}}"></div>`,
		},
	}}
	figures := &figureRepoStub{figures: map[string]models.Figure{
		"figure-1": {
			ID:               "figure-1",
			ArticleID:        "article-1",
			Locator:          "loc-abc",
			OriginalFilename: "fig1.png",
			Label:            "Figure 1",
		},
	}}
	files := &artifactRepoStub{files: map[string]models.ArticleFile{
		artifactKey("article-1", models.FileKindPDF): {
			ID: "file-1", ArticleID: "article-1", Kind: models.FileKindPDF,
			OriginalFilename: "render.pdf", MimeType: "application/pdf",
		},
		artifactKey("article-1", models.FileKindManuscriptSource): {
			ID: "file-2", ArticleID: "article-1", Kind: models.FileKindManuscriptSource,
			OriginalFilename: "paper.xml", MimeType: "application/xml",
		},
	}}
	cache := &cacheStub{}

	svc := NewReadingService(articles, journals, volumes, issues, contents, figures, files, cache, nil,
		ReadingConfig{BaseURL: "https://read.example.org", CacheTTL: time.Minute}, nil)
	return svc, articles, contents, figures, cache
}

func TestReadingComposesPublishedArticle(t *testing.T) {
	svc, _, _, _, _ := newReadingFixture()

	view, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)

	assert.Equal(t, "Thermal Adaptation", view.Title)
	assert.Equal(t, "montane-ecology", view.Journal.Slug)
	require.NotNil(t, view.Volume)
	assert.Equal(t, 14, view.Volume.VolumeNumber)
	require.NotNil(t, view.Issue)
	assert.Equal(t, 2, view.Issue.IssueNumber)
}

func TestReadingResolvesFigurePlaceholders(t *testing.T) {
	svc, _, _, _, _ := newReadingFixture()

	view, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)

	assert.Contains(t, view.BodyHTML, "/api/v1/figures/loc-abc/image")
	assert.NotContains(t, view.BodyHTML, "{{FIGURE:")
	require.Len(t, view.Figures, 1)
	assert.Equal(t, "loc-abc", view.Figures[0].Locator)
}

func TestReadingHidesManuscriptSourceFromDownloads(t *testing.T) {
	svc, _, _, _, _ := newReadingFixture()

	view, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)

	require.Len(t, view.Downloads, 1)
	assert.Equal(t, models.FileKindPDF, view.Downloads[0].Kind)
}

func TestReadingDraftHiddenFromPublicSlug(t *testing.T) {
	svc, _, _, _, _ := newReadingFixture()

	_, err := svc.GetBySlug(context.Background(), "montane-ecology", "draft-piece")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))

	// editorial preview still sees it
	view, err := svc.GetByID(context.Background(), "article-2")
	require.NoError(t, err)
	assert.Equal(t, "Draft Piece", view.Title)
	assert.Nil(t, view.Volume)
	assert.Nil(t, view.Issue)
}

func TestReadingCachesComposedView(t *testing.T) {
	svc, _, _, _, cache := newReadingFixture()

	_, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)
}

func TestReadingInvalidationDropsCache(t *testing.T) {
	svc, _, contents, _, cache := newReadingFixture()

	_, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	svc.InvalidateArticle(context.Background(), "article-1")
	assert.Empty(t, cache.entries)

	contents.records["article-1"].BodyHTML = `<div class="article-body"><p>updated</p></div>`
	view, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)
	assert.Contains(t, view.BodyHTML, "updated")
}

func TestReadingUnresolvedFigureFallsBack(t *testing.T) {
	svc, _, contents, figures, _ := newReadingFixture()
	figures.figures = map[string]models.Figure{}
	contents.records["article-1"].BodyHTML = `<img src="{{FIGURE:ghost.png}}">`

	view, err := svc.GetBySlug(context.Background(), "montane-ecology", "thermal-adaptation")
	require.NoError(t, err)
	assert.NotContains(t, view.BodyHTML, "{{FIGURE:")
	assert.Contains(t, view.BodyHTML, "/api/v1/figures/missing/image")
}
