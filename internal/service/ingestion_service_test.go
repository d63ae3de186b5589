package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/jobs"
)

type contentRepoStub struct {
	records map[string]*models.ArticleContent
}

func (s *contentRepoStub) FindByArticleID(ctx context.Context, articleID string) (*models.ArticleContent, error) {
	if record, ok := s.records[articleID]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *contentRepoStub) BumpVersion(ctx context.Context, articleID string) (int64, error) {
	if s.records == nil {
		s.records = map[string]*models.ArticleContent{}
	}
	record, ok := s.records[articleID]
	if !ok {
		record = &models.ArticleContent{ArticleID: articleID}
		s.records[articleID] = record
	}
	record.SourceVersion++
	record.Status = models.ParsingStatusPending
	record.ErrorMessage = nil
	return record.SourceVersion, nil
}

func (s *contentRepoStub) MarkPending(ctx context.Context, articleID string) (int64, error) {
	record, ok := s.records[articleID]
	if !ok {
		return 0, sql.ErrNoRows
	}
	record.Status = models.ParsingStatusPending
	record.ErrorMessage = nil
	return record.SourceVersion, nil
}

func (s *contentRepoStub) CommitSuccess(ctx context.Context, articleID string, version int64, content models.StructuredContent) (bool, error) {
	record, ok := s.records[articleID]
	if !ok || record.SourceVersion != version {
		return false, nil
	}
	now := time.Now().UTC()
	record.Status = models.ParsingStatusSuccess
	record.ErrorMessage = nil
	record.ParsedAt = &now
	record.AbstractHTML = content.AbstractHTML
	record.BodyHTML = content.BodyHTML
	record.ReferencesHTML = content.ReferencesHTML
	return true, nil
}

func (s *contentRepoStub) CommitFailure(ctx context.Context, articleID string, version int64, message string) (bool, error) {
	record, ok := s.records[articleID]
	if !ok || record.SourceVersion != version {
		return false, nil
	}
	record.Status = models.ParsingStatusFailed
	record.ErrorMessage = &message
	return true, nil
}

type fileRepoStub struct {
	files map[string]models.ArticleFile // keyed articleID + "/" + kind
}

func (s *fileRepoStub) FindByKind(ctx context.Context, articleID string, kind models.FileKind) (*models.ArticleFile, error) {
	if f, ok := s.files[articleID+"/"+string(kind)]; ok {
		return &f, nil
	}
	return nil, sql.ErrNoRows
}

type blobReaderStub struct {
	blobs map[string][]byte
	err   error
}

func (s *blobReaderStub) Read(path string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if data, ok := s.blobs[path]; ok {
		return data, nil
	}
	return nil, sql.ErrNoRows
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (s *queueStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

const validManuscript = `<article><front><article-meta><title-group><article-title>T</article-title></title-group></article-meta></front><body><sec id="s1"><title>Intro</title><p>Text.</p></sec></body></article>`

func newIngestionFixture() (*IngestionService, *contentRepoStub, *fileRepoStub, *blobReaderStub, *articleRepoStub, *queueStub) {
	contents := &contentRepoStub{records: map[string]*models.ArticleContent{}}
	files := &fileRepoStub{files: map[string]models.ArticleFile{}}
	blobs := &blobReaderStub{blobs: map[string][]byte{}}
	articles := &articleRepoStub{articles: map[string]models.Article{
		"article-1": {ID: "article-1", JournalID: "journal-1", Slug: "thermal-adaptation", Title: "Thermal Adaptation"},
	}}
	queue := &queueStub{}

	svc := NewIngestionService(contents, files, articles, blobs, nil, nil, IngestionConfig{ParseTimeout: time.Second}, nil)
	svc.AttachQueue(queue)
	return svc, contents, files, blobs, articles, queue
}

func stageManuscript(files *fileRepoStub, blobs *blobReaderStub, articleID string, source string) {
	path := "articles/" + articleID + "/manuscript_source/source.xml"
	files.files[articleID+"/"+string(models.FileKindManuscriptSource)] = models.ArticleFile{
		ArticleID:   articleID,
		Kind:        models.FileKindManuscriptSource,
		StoragePath: path,
	}
	blobs.blobs[path] = []byte(source)
}

func TestIngestionOnSourceUploadedQueuesParse(t *testing.T) {
	svc, contents, _, _, _, queue := newIngestionFixture()

	version, err := svc.OnSourceUploaded(context.Background(), "article-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
	assert.Equal(t, models.ParsingStatusPending, contents.records["article-1"].Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, jobTypeParseManuscript, queue.enqueued[0].Type)
	assert.Equal(t, "article-1", queue.enqueued[0].Payload)
}

func TestIngestionRepeatUploadsAdvanceVersion(t *testing.T) {
	svc, contents, _, _, _, _ := newIngestionFixture()

	_, err := svc.OnSourceUploaded(context.Background(), "article-1")
	require.NoError(t, err)
	version, err := svc.OnSourceUploaded(context.Background(), "article-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Equal(t, int64(2), contents.records["article-1"].SourceVersion)
}

func TestIngestionParseSuccess(t *testing.T) {
	svc, contents, files, blobs, articles, _ := newIngestionFixture()
	stageManuscript(files, blobs, "article-1", validManuscript)
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)

	err = svc.Parse(context.Background(), "article-1")
	require.NoError(t, err)

	record := contents.records["article-1"]
	assert.Equal(t, models.ParsingStatusSuccess, record.Status)
	assert.Nil(t, record.ErrorMessage)
	assert.NotNil(t, record.ParsedAt)
	assert.Contains(t, record.BodyHTML, "article-body")
	// parse must not change the source version
	assert.Equal(t, int64(1), record.SourceVersion)
	_ = articles
}

func TestIngestionParseFailureRecordsError(t *testing.T) {
	svc, contents, files, blobs, _, _ := newIngestionFixture()
	stageManuscript(files, blobs, "article-1", `<article><front/></article>`)
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)

	err = svc.Parse(context.Background(), "article-1")
	require.NoError(t, err)

	record := contents.records["article-1"]
	assert.Equal(t, models.ParsingStatusFailed, record.Status)
	require.NotNil(t, record.ErrorMessage)
	assert.Contains(t, *record.ErrorMessage, "missing body")
}

func TestIngestionParseFailureKeepsLastGoodContent(t *testing.T) {
	svc, contents, files, blobs, _, _ := newIngestionFixture()
	stageManuscript(files, blobs, "article-1", validManuscript)
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)
	require.NoError(t, svc.Parse(context.Background(), "article-1"))

	before := *contents.records["article-1"]
	require.NotEmpty(t, before.BodyHTML)

	// a broken replacement upload fails to parse
	stageManuscript(files, blobs, "article-1", `<article><front/></article>`)
	_, err = contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)
	require.NoError(t, svc.Parse(context.Background(), "article-1"))

	record := contents.records["article-1"]
	assert.Equal(t, models.ParsingStatusFailed, record.Status)
	assert.Equal(t, before.AbstractHTML, record.AbstractHTML)
	assert.Equal(t, before.BodyHTML, record.BodyHTML)
	assert.Equal(t, before.ReferencesHTML, record.ReferencesHTML)
}

func TestIngestionStaleParseIsAbsorbed(t *testing.T) {
	svc, contents, files, blobs, _, _ := newIngestionFixture()
	stageManuscript(files, blobs, "article-1", validManuscript)
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)

	// a newer upload lands between the version read and the commit
	record := contents.records["article-1"]
	original := svc.contents
	svc.contents = &racingContentRepo{inner: contents, record: record}

	err = svc.Parse(context.Background(), "article-1")
	require.NoError(t, err)
	svc.contents = original

	// the stale result must not have overwritten the pending state of
	// the newer version
	assert.Equal(t, int64(2), record.SourceVersion)
	assert.Equal(t, models.ParsingStatusPending, record.Status)
}

// racingContentRepo simulates a concurrent upload by bumping the version
// after the parse has read it.
type racingContentRepo struct {
	inner  *contentRepoStub
	record *models.ArticleContent
	read   bool
}

func (r *racingContentRepo) FindByArticleID(ctx context.Context, articleID string) (*models.ArticleContent, error) {
	result, err := r.inner.FindByArticleID(ctx, articleID)
	if err == nil && !r.read {
		r.read = true
		r.record.SourceVersion++
		r.record.Status = models.ParsingStatusPending
	}
	return result, err
}

func (r *racingContentRepo) BumpVersion(ctx context.Context, articleID string) (int64, error) {
	return r.inner.BumpVersion(ctx, articleID)
}

func (r *racingContentRepo) MarkPending(ctx context.Context, articleID string) (int64, error) {
	return r.inner.MarkPending(ctx, articleID)
}

func (r *racingContentRepo) CommitSuccess(ctx context.Context, articleID string, version int64, content models.StructuredContent) (bool, error) {
	return r.inner.CommitSuccess(ctx, articleID, version, content)
}

func (r *racingContentRepo) CommitFailure(ctx context.Context, articleID string, version int64, message string) (bool, error) {
	return r.inner.CommitFailure(ctx, articleID, version, message)
}

func TestIngestionReparseRequiresSource(t *testing.T) {
	svc, _, _, _, _, _ := newIngestionFixture()

	_, err := svc.Reparse(context.Background(), "article-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}

func TestIngestionParseRequiresSource(t *testing.T) {
	svc, contents, files, _, _, _ := newIngestionFixture()
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)
	// the manuscript slot was deleted after the upload registered
	delete(files.files, "article-1/"+string(models.FileKindManuscriptSource))

	err = svc.Parse(context.Background(), "article-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}

func TestIngestionReparseKeepsVersion(t *testing.T) {
	svc, contents, files, blobs, _, queue := newIngestionFixture()
	stageManuscript(files, blobs, "article-1", validManuscript)
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)
	require.NoError(t, svc.Parse(context.Background(), "article-1"))

	resp, err := svc.Reparse(context.Background(), "article-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.SourceVersion)
	assert.True(t, resp.Queued)
	assert.Equal(t, models.ParsingStatusPending, contents.records["article-1"].Status)
	assert.NotEmpty(t, queue.enqueued)
}

func TestIngestionStatusNoneBeforeUpload(t *testing.T) {
	svc, _, _, _, _, _ := newIngestionFixture()

	status, err := svc.Status(context.Background(), "article-1")
	require.NoError(t, err)
	assert.Equal(t, models.ParsingStatusNone, status.Status)
	assert.Equal(t, int64(0), status.SourceVersion)
}

func TestIngestionStatusUnknownArticle(t *testing.T) {
	svc, _, _, _, _, _ := newIngestionFixture()

	_, err := svc.Status(context.Background(), "article-404")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound.Code))
}

func TestIngestionMetadataBackfill(t *testing.T) {
	svc, contents, files, blobs, articles, _ := newIngestionFixture()
	source := `<article xmlns:xlink="http://www.w3.org/1999/xlink">
<front><article-meta>
<article-id pub-id-type="doi">10.5555/backfill</article-id>
<title-group><article-title>T</article-title></title-group>
<contrib-group><contrib contrib-type="author"><name><surname>Okafor</surname><given-names>Adaeze</given-names></name></contrib></contrib-group>
<abstract><p>Filled from source.</p></abstract>
<kwd-group><kwd>moss</kwd></kwd-group>
</article-meta></front>
<body><sec id="s1"><title>Intro</title><p>Text.</p></sec></body></article>`
	stageManuscript(files, blobs, "article-1", source)
	_, err := contents.BumpVersion(context.Background(), "article-1")
	require.NoError(t, err)

	require.NoError(t, svc.Parse(context.Background(), "article-1"))

	article := articles.articles["article-1"]
	assert.Equal(t, "10.5555/backfill", article.DOI)
	assert.Equal(t, "Filled from source.", article.Abstract)
	assert.Equal(t, []string{"moss"}, []string(article.Keywords))
	assert.Equal(t, []string{"Adaeze Okafor"}, []string(article.Authors))
}
