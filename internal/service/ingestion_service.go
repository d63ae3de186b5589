package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/jats"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
	"github.com/aethra-press/publishing-api/pkg/jobs"
)

const jobTypeParseManuscript = "parse_manuscript"

type contentRepository interface {
	FindByArticleID(ctx context.Context, articleID string) (*models.ArticleContent, error)
	BumpVersion(ctx context.Context, articleID string) (int64, error)
	MarkPending(ctx context.Context, articleID string) (int64, error)
	CommitSuccess(ctx context.Context, articleID string, version int64, content models.StructuredContent) (bool, error)
	CommitFailure(ctx context.Context, articleID string, version int64, message string) (bool, error)
}

type sourceFileRepository interface {
	FindByKind(ctx context.Context, articleID string, kind models.FileKind) (*models.ArticleFile, error)
}

type blobReader interface {
	Read(path string) ([]byte, error)
}

type parseQueue interface {
	Enqueue(job jobs.Job) error
}

type parseMetricsRecorder interface {
	RecordParseOutcome(outcome string, duration time.Duration)
}

// IngestionService converts uploaded manuscripts into stored HTML
// sections.
//
// Every manuscript upload bumps the content record's source version and
// queues a parse. A parse only commits its result, success or failure,
// while the record still carries the version the parse started from;
// when a newer upload wins the race the stale result is dropped quietly
// and the newer upload's own parse settles the record.
type IngestionService struct {
	contents contentRepository
	files    sourceFileRepository
	articles articleRepository
	blobs    blobReader
	queue    parseQueue
	cache    readingCacheInvalidator
	metrics  parseMetricsRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// IngestionConfig carries tunables for the ingestion pipeline.
type IngestionConfig struct {
	ParseTimeout time.Duration
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(contents contentRepository, files sourceFileRepository, articles articleRepository, blobs blobReader, cache readingCacheInvalidator, metrics parseMetricsRecorder, cfg IngestionConfig, logger *zap.Logger) *IngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.ParseTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &IngestionService{
		contents: contents,
		files:    files,
		articles: articles,
		blobs:    blobs,
		cache:    cache,
		metrics:  metrics,
		timeout:  timeout,
		logger:   logger,
	}
}

// AttachQueue binds the background queue; the queue's handler must be
// HandleJob. Kept separate from the constructor because the queue needs
// the handler first.
func (s *IngestionService) AttachQueue(queue parseQueue) {
	s.queue = queue
}

// OnSourceUploaded registers a new manuscript source for the article:
// the source version advances, the status moves to pending and a parse
// is queued. Called by the artifact layer after the storage pointer swap
// committed.
func (s *IngestionService) OnSourceUploaded(ctx context.Context, articleID string) (int64, error) {
	version, err := s.contents.BumpVersion(ctx, articleID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register manuscript upload")
	}
	s.schedule(articleID)
	return version, nil
}

// Reparse re-runs conversion of the current manuscript source without
// changing the source version.
func (s *IngestionService) Reparse(ctx context.Context, articleID string) (*dto.ReparseResponse, error) {
	if _, err := s.files.FindByKind(ctx, articleID, models.FileKindManuscriptSource); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article has no manuscript source to parse")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manuscript source")
	}

	version, err := s.contents.MarkPending(ctx, articleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article has no parsing record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark parsing pending")
	}

	s.schedule(articleID)
	return &dto.ReparseResponse{ArticleID: articleID, SourceVersion: version, Queued: true}, nil
}

// Status reports the parsing state of an article. Articles that never
// had a manuscript uploaded report status none.
func (s *IngestionService) Status(ctx context.Context, articleID string) (*dto.ParsingStatusResponse, error) {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}

	content, err := s.contents.FindByArticleID(ctx, articleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return &dto.ParsingStatusResponse{ArticleID: articleID, Status: models.ParsingStatusNone}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parsing record")
	}

	return &dto.ParsingStatusResponse{
		ArticleID:     articleID,
		Status:        content.Status,
		SourceVersion: content.SourceVersion,
		ErrorMessage:  content.ErrorMessage,
		ParsedAt:      content.ParsedAt,
	}, nil
}

// HandleJob is the queue handler for parse jobs.
func (s *IngestionService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != jobTypeParseManuscript {
		return nil
	}
	return s.Parse(ctx, job.Payload)
}

// schedule queues a parse; when the queue is saturated or absent, the
// parse runs on its own goroutine so an upload never waits on a worker.
func (s *IngestionService) schedule(articleID string) {
	if s.queue != nil {
		err := s.queue.Enqueue(jobs.Job{
			ID:      uuid.NewString(),
			Type:    jobTypeParseManuscript,
			Payload: articleID,
		})
		if err == nil {
			return
		}
		s.logger.Warn("parse queue unavailable, parsing out of band", zap.String("articleId", articleID), zap.Error(err))
	}
	go func() {
		if err := s.Parse(context.Background(), articleID); err != nil {
			s.logger.Error("out-of-band parse failed", zap.String("articleId", articleID), zap.Error(err))
		}
	}()
}

// Parse converts the article's current manuscript source and commits
// the outcome against the source version the parse started from.
func (s *IngestionService) Parse(ctx context.Context, articleID string) error {
	started := time.Now()

	record, err := s.contents.FindByArticleID(ctx, articleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "article has no parsing record")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parsing record")
	}
	version := record.SourceVersion

	file, err := s.files.FindByKind(ctx, articleID, models.FileKindManuscriptSource)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "article has no manuscript source to parse")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load manuscript source")
	}

	raw, err := s.blobs.Read(file.StoragePath)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read manuscript source")
	}

	doc, parseErr := s.parseWithTimeout(ctx, raw)
	if parseErr != nil {
		s.record("failed", started)
		committed, err := s.contents.CommitFailure(ctx, articleID, version, parseErr.Error())
		if err != nil {
			return err
		}
		if !committed {
			s.logConflict(articleID, version)
		}
		s.logger.Warn("manuscript parse failed",
			zap.String("articleId", articleID),
			zap.Int64("sourceVersion", version),
			zap.Error(parseErr))
		return nil
	}

	committed, err := s.contents.CommitSuccess(ctx, articleID, version, models.StructuredContent{
		AbstractHTML:   doc.AbstractHTML,
		BodyHTML:       doc.BodyHTML,
		ReferencesHTML: doc.ReferencesHTML,
	})
	if err != nil {
		s.record("error", started)
		return err
	}
	if !committed {
		s.record("superseded", started)
		s.logConflict(articleID, version)
		return nil
	}

	s.record("success", started)
	s.backfillMetadata(ctx, articleID, doc)
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, articleID)
	}
	s.logger.Info("manuscript parsed",
		zap.String("articleId", articleID),
		zap.Int64("sourceVersion", version),
		zap.Duration("took", time.Since(started)))
	return nil
}

func (s *IngestionService) parseWithTimeout(ctx context.Context, raw []byte) (*jats.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		doc *jats.Document
		err error
	}
	done := make(chan result, 1)
	go func() {
		doc, err := jats.Parse(raw)
		done <- result{doc: doc, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &jats.ParseError{Reason: "parse timed out", Err: ctx.Err()}
	case res := <-done:
		return res.doc, res.err
	}
}

// backfillMetadata fills article fields the editors left empty from the
// parsed front matter. Existing values are never overwritten.
func (s *IngestionService) backfillMetadata(ctx context.Context, articleID string, doc *jats.Document) {
	article, err := s.articles.FindByID(ctx, articleID)
	if err != nil {
		s.logger.Warn("metadata backfill skipped", zap.String("articleId", articleID), zap.Error(err))
		return
	}

	changed := false
	if article.Abstract == "" && doc.Abstract != "" {
		article.Abstract = doc.Abstract
		changed = true
	}
	if article.DOI == "" && doc.DOI != "" {
		article.DOI = doc.DOI
		changed = true
	}
	if len(article.Keywords) == 0 && len(doc.Keywords) > 0 {
		article.Keywords = doc.Keywords
		changed = true
	}
	if len(article.Authors) == 0 && len(doc.Authors) > 0 {
		names := make([]string, 0, len(doc.Authors))
		for _, author := range doc.Authors {
			name := strings.TrimSpace(author.FirstName + " " + author.LastName)
			if name != "" {
				names = append(names, name)
			}
		}
		article.Authors = names
		changed = true
	}
	if !changed {
		return
	}
	if err := s.articles.Update(ctx, article); err != nil {
		s.logger.Warn("metadata backfill failed", zap.String("articleId", articleID), zap.Error(err))
	}
}

// logConflict notes a version race without surfacing it: the losing
// parse result is intentionally discarded.
func (s *IngestionService) logConflict(articleID string, version int64) {
	s.logger.Info("parse result superseded by newer upload",
		zap.String("articleId", articleID),
		zap.Int64("sourceVersion", version))
}

func (s *IngestionService) record(outcome string, started time.Time) {
	if s.metrics != nil {
		s.metrics.RecordParseOutcome(outcome, time.Since(started))
	}
}
