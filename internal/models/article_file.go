package models

import "time"

// FileKind enumerates the artifact slots an article can carry.
// The values are part of the client contract and must stay stable.
type FileKind string

const (
	FileKindManuscriptSource FileKind = "manuscript_source"
	FileKindPDF              FileKind = "pdf"
	FileKindEPub             FileKind = "epub"
	FileKindMobi             FileKind = "mobi"
	FileKindPRC              FileKind = "prc"
	FileKindRIS              FileKind = "ris"
	FileKindBib              FileKind = "bib"
	FileKindEndNote          FileKind = "endnote"
	FileKindBrandingLogo     FileKind = "branding_logo"
)

// ValidFileKind reports whether the given kind is recognised.
func ValidFileKind(kind FileKind) bool {
	switch kind {
	case FileKindManuscriptSource, FileKindPDF, FileKindEPub, FileKindMobi,
		FileKindPRC, FileKindRIS, FileKindBib, FileKindEndNote, FileKindBrandingLogo:
		return true
	default:
		return false
	}
}

// ArticleFile binds at most one stored blob of each kind to an article.
// The (article_id, kind) pair is the record identity; uploads of the same
// kind replace the storage pointer in place.
type ArticleFile struct {
	ID               string    `db:"id" json:"id"`
	ArticleID        string    `db:"article_id" json:"article_id"`
	Kind             FileKind  `db:"kind" json:"kind"`
	StoragePath      string    `db:"storage_path" json:"-"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	MimeType         string    `db:"mime_type" json:"mime_type"`
	SizeBytes        int64     `db:"size_bytes" json:"size_bytes"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
