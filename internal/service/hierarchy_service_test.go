package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type journalRepoStub struct {
	journals map[string]models.Journal
	bySlug   map[string]string
}

func (s *journalRepoStub) List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, int, error) {
	var out []models.Journal
	for _, j := range s.journals {
		out = append(out, j)
	}
	return out, len(out), nil
}

func (s *journalRepoStub) FindByID(ctx context.Context, id string) (*models.Journal, error) {
	if j, ok := s.journals[id]; ok {
		return &j, nil
	}
	return nil, sql.ErrNoRows
}

func (s *journalRepoStub) FindBySlug(ctx context.Context, slug string) (*models.Journal, error) {
	if id, ok := s.bySlug[slug]; ok {
		return s.FindByID(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (s *journalRepoStub) ExistsBySlug(ctx context.Context, slug string, excludeID string) (bool, error) {
	id, ok := s.bySlug[slug]
	return ok && id != excludeID, nil
}

func (s *journalRepoStub) Create(ctx context.Context, journal *models.Journal) error {
	if s.journals == nil {
		s.journals = map[string]models.Journal{}
		s.bySlug = map[string]string{}
	}
	if journal.ID == "" {
		journal.ID = "journal-" + journal.Slug
	}
	s.journals[journal.ID] = *journal
	s.bySlug[journal.Slug] = journal.ID
	return nil
}

func (s *journalRepoStub) Update(ctx context.Context, journal *models.Journal) error {
	s.journals[journal.ID] = *journal
	return nil
}

func (s *journalRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.journals, id)
	return nil
}

func (s *journalRepoStub) CountArticles(ctx context.Context, id string) (int, error) {
	return 0, nil
}

type volumeRepoStub struct {
	volumes map[string]models.Volume
}

func (s *volumeRepoStub) ListByJournal(ctx context.Context, journalID string) ([]models.Volume, error) {
	var out []models.Volume
	for _, v := range s.volumes {
		if v.JournalID == journalID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *volumeRepoStub) FindByID(ctx context.Context, id string) (*models.Volume, error) {
	if v, ok := s.volumes[id]; ok {
		return &v, nil
	}
	return nil, sql.ErrNoRows
}

func (s *volumeRepoStub) ExistsByNumber(ctx context.Context, journalID string, number int, excludeID string) (bool, error) {
	for id, v := range s.volumes {
		if v.JournalID == journalID && v.VolumeNumber == number && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *volumeRepoStub) Create(ctx context.Context, volume *models.Volume) error {
	if s.volumes == nil {
		s.volumes = map[string]models.Volume{}
	}
	s.volumes[volume.ID] = *volume
	return nil
}

func (s *volumeRepoStub) Update(ctx context.Context, volume *models.Volume) error {
	s.volumes[volume.ID] = *volume
	return nil
}

func (s *volumeRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.volumes, id)
	return nil
}

func (s *volumeRepoStub) CountArticles(ctx context.Context, id string) (int, error) {
	return 0, nil
}

type issueRepoStub struct {
	issues map[string]models.Issue
}

func (s *issueRepoStub) ListByVolume(ctx context.Context, volumeID string) ([]models.Issue, error) {
	var out []models.Issue
	for _, i := range s.issues {
		if i.VolumeID == volumeID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *issueRepoStub) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	if i, ok := s.issues[id]; ok {
		return &i, nil
	}
	return nil, sql.ErrNoRows
}

func (s *issueRepoStub) ExistsByNumber(ctx context.Context, volumeID string, number int, excludeID string) (bool, error) {
	for id, i := range s.issues {
		if i.VolumeID == volumeID && i.IssueNumber == number && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *issueRepoStub) Create(ctx context.Context, issue *models.Issue) error {
	if s.issues == nil {
		s.issues = map[string]models.Issue{}
	}
	s.issues[issue.ID] = *issue
	return nil
}

func (s *issueRepoStub) Update(ctx context.Context, issue *models.Issue) error {
	s.issues[issue.ID] = *issue
	return nil
}

func (s *issueRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.issues, id)
	return nil
}

func (s *issueRepoStub) CountArticles(ctx context.Context, id string) (int, error) {
	return 0, nil
}

type articleRepoStub struct {
	articles       map[string]models.Article
	placementCalls int
}

func (s *articleRepoStub) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, int, error) {
	var out []models.Article
	for _, a := range s.articles {
		if filter.JournalID != "" && a.JournalID != filter.JournalID {
			continue
		}
		if filter.IssueID != "" && (a.IssueID == nil || *a.IssueID != filter.IssueID) {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func (s *articleRepoStub) FindByID(ctx context.Context, id string) (*models.Article, error) {
	if a, ok := s.articles[id]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

func (s *articleRepoStub) FindBySlug(ctx context.Context, journalID, slug string) (*models.Article, error) {
	for _, a := range s.articles {
		if a.JournalID == journalID && a.Slug == slug {
			return &a, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *articleRepoStub) ExistsBySlug(ctx context.Context, journalID, slug string, excludeID string) (bool, error) {
	for id, a := range s.articles {
		if a.JournalID == journalID && a.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *articleRepoStub) Create(ctx context.Context, article *models.Article) error {
	if s.articles == nil {
		s.articles = map[string]models.Article{}
	}
	if article.ID == "" {
		// slugs are only unique per journal, so scope the generated ID too
		article.ID = "article-" + article.JournalID + "-" + article.Slug
	}
	if article.Status == "" {
		article.Status = models.ArticleStatusDraft
	}
	s.articles[article.ID] = *article
	return nil
}

func (s *articleRepoStub) Update(ctx context.Context, article *models.Article) error {
	s.articles[article.ID] = *article
	return nil
}

func (s *articleRepoStub) UpdatePlacement(ctx context.Context, articleID string, placement models.Placement) error {
	a, ok := s.articles[articleID]
	if !ok {
		return sql.ErrNoRows
	}
	s.placementCalls++
	a.JournalID = placement.JournalID
	a.VolumeID = placement.VolumeID
	a.IssueID = placement.IssueID
	a.IsSpecialIssue = placement.IsSpecialIssue
	s.articles[articleID] = a
	return nil
}

func (s *articleRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.articles, id)
	return nil
}

func newHierarchyFixture() (*HierarchyService, *articleRepoStub) {
	journals := &journalRepoStub{
		journals: map[string]models.Journal{
			"journal-1": {ID: "journal-1", Slug: "montane-ecology", Title: "Journal of Montane Ecology"},
			"journal-2": {ID: "journal-2", Slug: "polar-botany", Title: "Polar Botany"},
		},
		bySlug: map[string]string{"montane-ecology": "journal-1", "polar-botany": "journal-2"},
	}
	volumes := &volumeRepoStub{
		volumes: map[string]models.Volume{
			"volume-1": {ID: "volume-1", JournalID: "journal-1", VolumeNumber: 14, Year: 2026},
			"volume-2": {ID: "volume-2", JournalID: "journal-2", VolumeNumber: 3, Year: 2026},
		},
	}
	issues := &issueRepoStub{
		issues: map[string]models.Issue{
			"issue-1": {ID: "issue-1", VolumeID: "volume-1", IssueNumber: 2},
			"issue-2": {ID: "issue-2", VolumeID: "volume-2", IssueNumber: 1},
		},
	}
	articles := &articleRepoStub{}
	svc := NewHierarchyService(articles, journals, volumes, issues, nil, nil)
	return svc, articles
}

func strPtr(v string) *string { return &v }

func TestHierarchyCreateVolumePlacement(t *testing.T) {
	svc, _ := newHierarchyFixture()

	article, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Thermal Adaptation",
		Slug:  "thermal-adaptation",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			VolumeID:  strPtr("volume-1"),
			IssueID:   strPtr("issue-1"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "journal-1", article.JournalID)
	require.NotNil(t, article.VolumeID)
	assert.Equal(t, "volume-1", *article.VolumeID)
	assert.False(t, article.IsSpecialIssue)
}

func TestHierarchyCreateSpecialIssue(t *testing.T) {
	svc, _ := newHierarchyFixture()

	article, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Editorial",
		Slug:  "editorial-2026",
		Placement: dto.PlacementRequest{
			JournalID:      "journal-1",
			IsSpecialIssue: true,
		},
	})
	require.NoError(t, err)
	assert.True(t, article.IsSpecialIssue)
	assert.Nil(t, article.VolumeID)
	assert.Nil(t, article.IssueID)
}

func TestHierarchyCreateRejectsSpecialIssueWithVolume(t *testing.T) {
	svc, _ := newHierarchyFixture()

	_, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Bad Placement",
		Slug:  "bad-placement",
		Placement: dto.PlacementRequest{
			JournalID:      "journal-1",
			VolumeID:       strPtr("volume-1"),
			IsSpecialIssue: true,
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestHierarchyCreateRejectsFloatingArticle(t *testing.T) {
	svc, _ := newHierarchyFixture()

	_, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title:     "Floating",
		Slug:      "floating",
		Placement: dto.PlacementRequest{JournalID: "journal-1"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestHierarchyCreateRejectsIssueWithoutVolume(t *testing.T) {
	svc, _ := newHierarchyFixture()

	_, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Orphan Issue",
		Slug:  "orphan-issue",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			IssueID:   strPtr("issue-1"),
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestHierarchyCreateRejectsCrossVolumeIssue(t *testing.T) {
	svc, _ := newHierarchyFixture()

	// issue-2 hangs off volume-2, not volume-1
	_, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Wrong Issue",
		Slug:  "wrong-issue",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			VolumeID:  strPtr("volume-1"),
			IssueID:   strPtr("issue-2"),
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestHierarchyCreateRejectsCrossJournalVolume(t *testing.T) {
	svc, _ := newHierarchyFixture()

	_, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Wrong Volume",
		Slug:  "wrong-volume",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			VolumeID:  strPtr("volume-2"),
		},
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestHierarchyCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newHierarchyFixture()

	req := dto.CreateArticleRequest{
		Title: "Thermal Adaptation",
		Slug:  "thermal-adaptation",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			VolumeID:  strPtr("volume-1"),
		},
	}
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	req.Title = "Another Paper"
	_, err = svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict.Code))
}

func TestHierarchyMoveToSpecialIssue(t *testing.T) {
	svc, repo := newHierarchyFixture()

	article, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Thermal Adaptation",
		Slug:  "thermal-adaptation",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			VolumeID:  strPtr("volume-1"),
			IssueID:   strPtr("issue-1"),
		},
	})
	require.NoError(t, err)

	moved, err := svc.Move(context.Background(), article.ID, dto.PlacementRequest{
		JournalID:      "journal-1",
		IsSpecialIssue: true,
	})
	require.NoError(t, err)
	assert.True(t, moved.IsSpecialIssue)
	assert.Nil(t, moved.VolumeID)
	assert.Nil(t, moved.IssueID)
	assert.Equal(t, 1, repo.placementCalls)
}

func TestHierarchyMoveInvalidTargetLeavesPlacement(t *testing.T) {
	svc, repo := newHierarchyFixture()

	article, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title: "Thermal Adaptation",
		Slug:  "thermal-adaptation",
		Placement: dto.PlacementRequest{
			JournalID: "journal-1",
			VolumeID:  strPtr("volume-1"),
		},
	})
	require.NoError(t, err)

	_, err = svc.Move(context.Background(), article.ID, dto.PlacementRequest{
		JournalID: "journal-1",
		VolumeID:  strPtr("volume-2"), // belongs to journal-2
	})
	require.Error(t, err)
	assert.Equal(t, 0, repo.placementCalls)

	current, err := svc.Get(context.Background(), article.ID)
	require.NoError(t, err)
	require.NotNil(t, current.VolumeID)
	assert.Equal(t, "volume-1", *current.VolumeID)
}

func TestHierarchyMoveCrossJournalSlugConflict(t *testing.T) {
	svc, _ := newHierarchyFixture()

	// same slug exists in both journals
	_, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title:     "In Target",
		Slug:      "shared-slug",
		Placement: dto.PlacementRequest{JournalID: "journal-2", VolumeID: strPtr("volume-2")},
	})
	require.NoError(t, err)

	article, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title:     "To Move",
		Slug:      "shared-slug",
		Placement: dto.PlacementRequest{JournalID: "journal-1", VolumeID: strPtr("volume-1")},
	})
	require.NoError(t, err)

	_, err = svc.Move(context.Background(), article.ID, dto.PlacementRequest{
		JournalID: "journal-2",
		VolumeID:  strPtr("volume-2"),
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict.Code))
}

func TestHierarchyUpdateStatus(t *testing.T) {
	svc, _ := newHierarchyFixture()

	article, err := svc.Create(context.Background(), dto.CreateArticleRequest{
		Title:     "Thermal Adaptation",
		Slug:      "thermal-adaptation",
		Placement: dto.PlacementRequest{JournalID: "journal-1", VolumeID: strPtr("volume-1")},
	})
	require.NoError(t, err)

	published := models.ArticleStatusPublished
	updated, err := svc.Update(context.Background(), article.ID, dto.UpdateArticleRequest{Status: &published})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleStatusPublished, updated.Status)

	bad := models.ArticleStatus("retracted")
	_, err = svc.Update(context.Background(), article.ID, dto.UpdateArticleRequest{Status: &bad})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestHierarchyContentsGroupsPublishedArticles(t *testing.T) {
	svc, articles := newHierarchyFixture()
	published := models.ArticleStatusPublished
	issueID := "issue-1"
	volumeID := "volume-1"
	articles.articles = map[string]models.Article{
		"article-1": {ID: "article-1", JournalID: "journal-1", VolumeID: &volumeID, IssueID: &issueID,
			Slug: "alpine-beetles", Title: "Alpine Beetles", Status: published},
		"article-2": {ID: "article-2", JournalID: "journal-1", VolumeID: &volumeID,
			Slug: "glacier-moss", Title: "Glacier Moss", Status: published},
		"article-3": {ID: "article-3", JournalID: "journal-1", IsSpecialIssue: true,
			Slug: "anniversary-essay", Title: "Anniversary Essay", Status: published},
		"article-4": {ID: "article-4", JournalID: "journal-1", VolumeID: &volumeID,
			Slug: "draft-note", Title: "Draft Note", Status: models.ArticleStatusDraft},
		"article-5": {ID: "article-5", JournalID: "journal-2", IsSpecialIssue: true,
			Slug: "other-journal", Title: "Other Journal", Status: published},
	}

	contents, err := svc.Contents(context.Background(), "journal-1")
	require.NoError(t, err)
	assert.Equal(t, "montane-ecology", contents.Slug)

	require.Len(t, contents.Volumes, 1)
	volume := contents.Volumes[0]
	assert.Equal(t, "Vol. 14 (2026)", volume.Label)
	require.Len(t, volume.Issues, 1)
	assert.Equal(t, "No. 2", volume.Issues[0].Label)
	require.Len(t, volume.Issues[0].Articles, 1)
	assert.Equal(t, "alpine-beetles", volume.Issues[0].Articles[0].Slug)
	require.Len(t, volume.Unassigned, 1)
	assert.Equal(t, "glacier-moss", volume.Unassigned[0].Slug)

	require.Len(t, contents.SpecialIssue, 1)
	assert.Equal(t, "anniversary-essay", contents.SpecialIssue[0].Slug)
}

func TestHierarchyContentsUnknownJournal(t *testing.T) {
	svc, _ := newHierarchyFixture()
	_, err := svc.Contents(context.Background(), "journal-9")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}
