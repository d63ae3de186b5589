package models

import "time"

// ParsingStatus tracks the manuscript parse state machine.
// Transitions: none → pending → {success, failed}; a reparse moves
// success/failed back to pending. The values are part of the client
// contract and must stay stable.
type ParsingStatus string

const (
	ParsingStatusNone    ParsingStatus = "none"
	ParsingStatusPending ParsingStatus = "pending"
	ParsingStatusSuccess ParsingStatus = "success"
	ParsingStatusFailed  ParsingStatus = "failed"
)

// ArticleContent is the per-article parsing record plus the structured
// content produced by the ingestion pipeline. One row per article,
// created implicitly on the first manuscript upload.
//
// SourceVersion increases by one every time the manuscript_source pointer
// changes; a parse result is only committed while its version still
// matches (optimistic concurrency, last upload wins).
type ArticleContent struct {
	ArticleID     string        `db:"article_id" json:"article_id"`
	SourceVersion int64         `db:"source_version" json:"source_version"`
	Status        ParsingStatus `db:"status" json:"status"`
	ErrorMessage  *string       `db:"error_message" json:"error_message,omitempty"`
	ParsedAt      *time.Time    `db:"parsed_at" json:"parsed_at,omitempty"`

	AbstractHTML   string `db:"abstract_html" json:"abstract_html"`
	BodyHTML       string `db:"body_html" json:"body_html"`
	ReferencesHTML string `db:"references_html" json:"references_html"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StructuredContent bundles the three HTML sections that are always
// replaced together, never partially.
type StructuredContent struct {
	AbstractHTML   string `json:"abstract_html"`
	BodyHTML       string `json:"body_html"`
	ReferencesHTML string `json:"references_html"`
}
