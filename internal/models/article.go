package models

import (
	"time"

	"github.com/lib/pq"
)

// ArticleStatus is the publication status of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// ArticleType classifies the kind of contribution.
type ArticleType string

const (
	ArticleTypeResearch   ArticleType = "research"
	ArticleTypeReview     ArticleType = "review"
	ArticleTypeCaseReport ArticleType = "case_report"
	ArticleTypeEditorial  ArticleType = "editorial"
	ArticleTypeLetter     ArticleType = "letter"
	ArticleTypeOther      ArticleType = "other"
)

// Article is the primary content entity.
//
// Placement invariants, enforced on every commit:
//   - exactly one of IsSpecialIssue or VolumeID-set holds;
//   - IssueID set implies VolumeID set and the issue belongs to that volume;
//   - Slug is unique within the owning journal.
type Article struct {
	ID             string        `db:"id" json:"id"`
	JournalID      string        `db:"journal_id" json:"journal_id"`
	VolumeID       *string       `db:"volume_id" json:"volume_id,omitempty"`
	IssueID        *string       `db:"issue_id" json:"issue_id,omitempty"`
	IsSpecialIssue bool          `db:"is_special_issue" json:"is_special_issue"`
	Status         ArticleStatus `db:"status" json:"status"`
	Type           ArticleType   `db:"article_type" json:"article_type"`

	Title    string         `db:"title" json:"title"`
	Slug     string         `db:"slug" json:"slug"`
	DOI      string         `db:"doi" json:"doi"`
	Abstract string         `db:"abstract" json:"abstract"`
	Keywords pq.StringArray `db:"keywords" json:"keywords"`
	Authors  pq.StringArray `db:"authors" json:"authors"`

	PageStart string `db:"page_start" json:"page_start"`
	PageEnd   string `db:"page_end" json:"page_end"`

	ReceivedOn  *time.Time `db:"received_on" json:"received_on,omitempty"`
	AcceptedOn  *time.Time `db:"accepted_on" json:"accepted_on,omitempty"`
	PublishedOn *time.Time `db:"published_on" json:"published_on,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Placement is the hierarchy assignment requested for an article.
type Placement struct {
	JournalID      string
	VolumeID       *string
	IssueID        *string
	IsSpecialIssue bool
}

// ArticleFilter narrows article listing queries.
type ArticleFilter struct {
	JournalID string
	VolumeID  string
	IssueID   string
	Status    ArticleStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pages renders the page range for citations.
func (a *Article) Pages() string {
	switch {
	case a.PageStart != "" && a.PageEnd != "":
		return a.PageStart + "-" + a.PageEnd
	case a.PageStart != "":
		return a.PageStart
	default:
		return ""
	}
}
