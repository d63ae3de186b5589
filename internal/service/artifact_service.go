package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aethra-press/publishing-api/internal/dto"
	"github.com/aethra-press/publishing-api/internal/models"
	appErrors "github.com/aethra-press/publishing-api/pkg/errors"
)

type artifactRepository interface {
	ListByArticle(ctx context.Context, articleID string) ([]models.ArticleFile, error)
	FindByKind(ctx context.Context, articleID string, kind models.FileKind) (*models.ArticleFile, error)
	Upsert(ctx context.Context, file *models.ArticleFile) error
	Delete(ctx context.Context, articleID string, kind models.FileKind) error
}

type blobStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type ingestionNotifier interface {
	OnSourceUploaded(ctx context.Context, articleID string) (int64, error)
}

type linkSigner interface {
	Generate(resourceID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (resourceID, relPath string, expiresAt time.Time, err error)
}

// ArtifactService stores and serves the file slots attached to an
// article. Each (article, kind) pair holds at most one blob; uploading
// the same kind again replaces it.
//
// Uploads write the new blob first and swap the database pointer after;
// the previous blob is only unlinked once the pointer no longer
// references it, so a crash mid-upload leaves the old file intact.
type ArtifactService struct {
	files         artifactRepository
	articles      articleRepository
	blobs         blobStore
	ingestion     ingestionNotifier
	cache         readingCacheInvalidator
	signer        linkSigner
	baseURL       string
	maxUploadSize int64
	logger        *zap.Logger
}

// NewArtifactService creates a new artifact service.
func NewArtifactService(files artifactRepository, articles articleRepository, blobs blobStore, ingestion ingestionNotifier, cache readingCacheInvalidator, maxUploadSize int64, logger *zap.Logger) *ArtifactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = 64 << 20
	}
	return &ArtifactService{
		files:         files,
		articles:      articles,
		blobs:         blobs,
		ingestion:     ingestion,
		cache:         cache,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// AttachSigner enables time-limited share links for file slots. baseURL
// is the public origin the links are rooted at.
func (s *ArtifactService) AttachSigner(signer linkSigner, baseURL string) {
	s.signer = signer
	s.baseURL = strings.TrimRight(baseURL, "/")
}

// ShareLink mints a signed, expiring download link for the (article,
// kind) slot. Links survive a later re-upload of the slot because they
// reference the slot, not the blob.
func (s *ArtifactService) ShareLink(ctx context.Context, articleID string, kind models.FileKind) (*dto.ShareLinkResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "share links are not configured")
	}
	if !models.ValidFileKind(kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown file kind %q", kind))
	}
	if _, err := s.files.FindByKind(ctx, articleID, kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "article has no file of this kind")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file record")
	}
	token, expiresAt, err := s.signer.Generate(articleID, string(kind))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &dto.ShareLinkResponse{
		URL:       fmt.Sprintf("%s/api/v1/files/shared/%s", s.baseURL, token),
		ExpiresAt: expiresAt,
	}, nil
}

// OpenShared validates a share token and opens the slot it references.
func (s *ArtifactService) OpenShared(ctx context.Context, token string) (*models.ArticleFile, *os.File, error) {
	if s.signer == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrInternal, "share links are not configured")
	}
	articleID, kindStr, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	return s.Download(ctx, articleID, models.FileKind(kindStr))
}

// List returns every artifact slot stored for an article.
func (s *ArtifactService) List(ctx context.Context, articleID string) ([]models.ArticleFile, error) {
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}
	files, err := s.files.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list article files")
	}
	return files, nil
}

// Upload stores a blob into the (article, kind) slot, replacing any
// previous one. A manuscript source upload additionally queues a parse,
// but only after the new pointer is durable.
func (s *ArtifactService) Upload(ctx context.Context, articleID string, kind models.FileKind, originalFilename, mimeType string, r io.Reader) (*models.ArticleFile, error) {
	if !models.ValidFileKind(kind) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown file kind %q", kind))
	}
	if err := s.requireArticle(ctx, articleID); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxUploadSize+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to read upload")
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "upload exceeds the maximum file size")
	}
	if len(data) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "upload is empty")
	}

	previous, err := s.files.FindByKind(ctx, articleID, kind)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load existing file")
	}

	storagePath := fmt.Sprintf("articles/%s/%s/%s%s", articleID, kind, uuid.NewString(), safeExt(originalFilename))
	if err := s.saveWithRetry(storagePath, data); err != nil {
		return nil, err
	}

	file := &models.ArticleFile{
		ArticleID:        articleID,
		Kind:             kind,
		StoragePath:      storagePath,
		OriginalFilename: filepath.Base(originalFilename),
		MimeType:         mimeType,
		SizeBytes:        int64(len(data)),
	}
	if err := s.files.Upsert(ctx, file); err != nil {
		// the orphaned blob is unreferenced, remove it
		if cleanupErr := s.blobs.Delete(storagePath); cleanupErr != nil {
			s.logger.Warn("orphaned blob cleanup failed", zap.String("path", storagePath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file record")
	}

	if previous != nil && previous.StoragePath != storagePath {
		if err := s.blobs.Delete(previous.StoragePath); err != nil {
			s.logger.Warn("previous blob cleanup failed", zap.String("path", previous.StoragePath), zap.Error(err))
		}
	}

	if kind == models.FileKindManuscriptSource && s.ingestion != nil {
		if _, err := s.ingestion.OnSourceUploaded(ctx, articleID); err != nil {
			// the file is stored; surfacing the queue problem would make
			// the upload look failed when it is not
			s.logger.Error("failed to queue manuscript parse", zap.String("articleId", articleID), zap.Error(err))
		}
	}
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, articleID)
	}

	s.logger.Info("artifact stored",
		zap.String("articleId", articleID),
		zap.String("kind", string(kind)),
		zap.Int("sizeBytes", len(data)))
	return file, nil
}

// Download returns the stored file record and an open handle on its
// blob. The caller owns closing the handle.
func (s *ArtifactService) Download(ctx context.Context, articleID string, kind models.FileKind) (*models.ArticleFile, *os.File, error) {
	if !models.ValidFileKind(kind) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown file kind %q", kind))
	}
	file, err := s.files.FindByKind(ctx, articleID, kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "article has no file of this kind")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file record")
	}

	handle, err := s.blobs.Open(file.StoragePath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open stored file")
	}
	return file, handle, nil
}

// Delete removes the (article, kind) slot and its blob.
func (s *ArtifactService) Delete(ctx context.Context, articleID string, kind models.FileKind) error {
	if !models.ValidFileKind(kind) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown file kind %q", kind))
	}
	file, err := s.files.FindByKind(ctx, articleID, kind)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "article has no file of this kind")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file record")
	}

	if err := s.files.Delete(ctx, articleID, kind); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file record")
	}
	if err := s.blobs.Delete(file.StoragePath); err != nil {
		s.logger.Warn("blob cleanup failed", zap.String("path", file.StoragePath), zap.Error(err))
	}
	if s.cache != nil {
		s.cache.InvalidateArticle(ctx, articleID)
	}
	return nil
}

// saveWithRetry writes the blob, retrying once on a transient storage
// failure before reporting a storage error.
func (s *ArtifactService) saveWithRetry(path string, data []byte) error {
	if _, err := s.blobs.Save(path, data); err != nil {
		s.logger.Warn("blob write failed, retrying once", zap.String("path", path), zap.Error(err))
		time.Sleep(100 * time.Millisecond)
		if _, err := s.blobs.Save(path, data); err != nil {
			return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store uploaded file")
		}
	}
	return nil
}

func (s *ArtifactService) requireArticle(ctx context.Context, articleID string) error {
	if _, err := s.articles.FindByID(ctx, articleID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "article not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load article")
	}
	return nil
}

// safeExt keeps only a plain file extension so storage paths stay flat.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
