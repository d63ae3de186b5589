package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/storage"
)

type artifactRepoStub struct {
	files map[string]models.ArticleFile
}

func artifactKey(articleID string, kind models.FileKind) string {
	return articleID + "/" + string(kind)
}

func (s *artifactRepoStub) ListByArticle(ctx context.Context, articleID string) ([]models.ArticleFile, error) {
	var out []models.ArticleFile
	for _, f := range s.files {
		if f.ArticleID == articleID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *artifactRepoStub) FindByKind(ctx context.Context, articleID string, kind models.FileKind) (*models.ArticleFile, error) {
	if f, ok := s.files[artifactKey(articleID, kind)]; ok {
		return &f, nil
	}
	return nil, sql.ErrNoRows
}

func (s *artifactRepoStub) Upsert(ctx context.Context, file *models.ArticleFile) error {
	if s.files == nil {
		s.files = map[string]models.ArticleFile{}
	}
	s.files[artifactKey(file.ArticleID, file.Kind)] = *file
	return nil
}

func (s *artifactRepoStub) Delete(ctx context.Context, articleID string, kind models.FileKind) error {
	delete(s.files, artifactKey(articleID, kind))
	return nil
}

type blobStoreStub struct {
	saved    map[string][]byte
	deleted  []string
	failures int // number of Save calls to fail before succeeding
	saves    int
}

func (s *blobStoreStub) Save(filename string, data []byte) (string, error) {
	s.saves++
	if s.failures > 0 {
		s.failures--
		return "", errors.New("disk unavailable")
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[filename] = data
	return filename, nil
}

func (s *blobStoreStub) Open(filename string) (*os.File, error) {
	if _, ok := s.saved[filename]; !ok {
		return nil, errors.New("blob missing")
	}
	return nil, nil
}

func (s *blobStoreStub) Delete(filename string) error {
	s.deleted = append(s.deleted, filename)
	delete(s.saved, filename)
	return nil
}

type ingestionNotifierStub struct {
	uploads []string
}

func (s *ingestionNotifierStub) OnSourceUploaded(ctx context.Context, articleID string) (int64, error) {
	s.uploads = append(s.uploads, articleID)
	return int64(len(s.uploads)), nil
}

func newArtifactFixture() (*ArtifactService, *artifactRepoStub, *blobStoreStub, *ingestionNotifierStub) {
	files := &artifactRepoStub{files: map[string]models.ArticleFile{}}
	blobs := &blobStoreStub{}
	ingestion := &ingestionNotifierStub{}
	articles := &articleRepoStub{articles: map[string]models.Article{
		"article-1": {ID: "article-1", JournalID: "journal-1", Slug: "thermal-adaptation"},
	}}
	svc := NewArtifactService(files, articles, blobs, ingestion, nil, 1<<20, nil)
	return svc, files, blobs, ingestion
}

func TestArtifactUploadStoresAndNotifies(t *testing.T) {
	svc, files, blobs, ingestion := newArtifactFixture()

	file, err := svc.Upload(context.Background(), "article-1", models.FileKindManuscriptSource,
		"paper.xml", "application/xml", strings.NewReader("<article/>"))
	require.NoError(t, err)
	assert.Equal(t, models.FileKindManuscriptSource, file.Kind)
	assert.Equal(t, "paper.xml", file.OriginalFilename)
	assert.Equal(t, int64(10), file.SizeBytes)

	stored := files.files[artifactKey("article-1", models.FileKindManuscriptSource)]
	assert.Equal(t, file.StoragePath, stored.StoragePath)
	assert.Contains(t, blobs.saved, file.StoragePath)
	assert.Equal(t, []string{"article-1"}, ingestion.uploads)
}

func TestArtifactUploadNonSourceSkipsIngestion(t *testing.T) {
	svc, _, _, ingestion := newArtifactFixture()

	_, err := svc.Upload(context.Background(), "article-1", models.FileKindPDF,
		"render.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	assert.Empty(t, ingestion.uploads)
}

func TestArtifactUploadReplacesInPlace(t *testing.T) {
	svc, files, blobs, _ := newArtifactFixture()

	first, err := svc.Upload(context.Background(), "article-1", models.FileKindPDF,
		"v1.pdf", "application/pdf", strings.NewReader("version one"))
	require.NoError(t, err)

	second, err := svc.Upload(context.Background(), "article-1", models.FileKindPDF,
		"v2.pdf", "application/pdf", strings.NewReader("version two"))
	require.NoError(t, err)

	listed, err := svc.List(context.Background(), "article-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "v2.pdf", listed[0].OriginalFilename)

	// the superseded blob is unlinked once the pointer moved
	assert.Contains(t, blobs.deleted, first.StoragePath)
	assert.Contains(t, blobs.saved, second.StoragePath)
	assert.Len(t, files.files, 1)
}

func TestArtifactUploadRejectsUnknownKind(t *testing.T) {
	svc, _, _, _ := newArtifactFixture()

	_, err := svc.Upload(context.Background(), "article-1", models.FileKind("tarball"),
		"x.tar", "application/x-tar", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation.Code))
}

func TestArtifactUploadUnknownArticle(t *testing.T) {
	svc, _, _, _ := newArtifactFixture()

	_, err := svc.Upload(context.Background(), "article-404", models.FileKindPDF,
		"x.pdf", "application/pdf", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}

func TestArtifactUploadRetriesTransientStorageFailure(t *testing.T) {
	svc, _, blobs, _ := newArtifactFixture()
	blobs.failures = 1

	_, err := svc.Upload(context.Background(), "article-1", models.FileKindPDF,
		"x.pdf", "application/pdf", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, 2, blobs.saves)
}

func TestArtifactUploadStorageErrorAfterRetry(t *testing.T) {
	svc, files, blobs, _ := newArtifactFixture()
	blobs.failures = 2

	_, err := svc.Upload(context.Background(), "article-1", models.FileKindPDF,
		"x.pdf", "application/pdf", strings.NewReader("data"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorage.Code))
	assert.Empty(t, files.files)
}

func TestArtifactDeleteRemovesSlotAndBlob(t *testing.T) {
	svc, files, blobs, _ := newArtifactFixture()

	file, err := svc.Upload(context.Background(), "article-1", models.FileKindEPub,
		"book.epub", "application/epub+zip", strings.NewReader("zip"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "article-1", models.FileKindEPub))
	assert.Empty(t, files.files)
	assert.Contains(t, blobs.deleted, file.StoragePath)

	err = svc.Delete(context.Background(), "article-1", models.FileKindEPub)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}

func TestArtifactShareLinkRoundTrip(t *testing.T) {
	svc, _, _, _ := newArtifactFixture()
	svc.AttachSigner(storage.NewSignedURLSigner("test-secret", time.Hour), "https://press.example.org/")

	_, err := svc.Upload(context.Background(), "article-1", models.FileKindManuscriptSource,
		"paper.xml", "application/xml", strings.NewReader("<article/>"))
	require.NoError(t, err)

	link, err := svc.ShareLink(context.Background(), "article-1", models.FileKindManuscriptSource)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "https://press.example.org/api/v1/files/shared/"))
	assert.True(t, link.ExpiresAt.After(time.Now()))

	token := strings.TrimPrefix(link.URL, "https://press.example.org/api/v1/files/shared/")
	record, _, err := svc.OpenShared(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.FileKindManuscriptSource, record.Kind)
}

func TestArtifactShareLinkRejectsTamperedToken(t *testing.T) {
	svc, _, _, _ := newArtifactFixture()
	svc.AttachSigner(storage.NewSignedURLSigner("test-secret", time.Hour), "https://press.example.org")

	_, _, err := svc.OpenShared(context.Background(), "article-1.99999.cGF0aA.deadbeef")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden.Code))
}

func TestArtifactShareLinkRequiresExistingSlot(t *testing.T) {
	svc, _, _, _ := newArtifactFixture()
	svc.AttachSigner(storage.NewSignedURLSigner("test-secret", time.Hour), "https://press.example.org")

	_, err := svc.ShareLink(context.Background(), "article-1", models.FileKindPDF)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}
