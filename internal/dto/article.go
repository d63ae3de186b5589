package dto

import "github.com/aethra-press/publishing-api/internal/models"

// CreateArticleRequest payload for registering a new article together
// with its placement in the publication hierarchy.
type CreateArticleRequest struct {
	Title     string             `json:"title" binding:"required" validate:"required"`
	Slug      string             `json:"slug" binding:"required" validate:"required"`
	Type      models.ArticleType `json:"type"`
	DOI       string             `json:"doi"`
	Abstract  string             `json:"abstract"`
	Keywords  []string           `json:"keywords"`
	Placement PlacementRequest   `json:"placement" binding:"required"`
}

// UpdateArticleRequest payload for editing article metadata. Placement
// changes go through the dedicated move endpoint.
type UpdateArticleRequest struct {
	Title      *string               `json:"title"`
	Slug       *string               `json:"slug"`
	Type       *models.ArticleType   `json:"type"`
	Status     *models.ArticleStatus `json:"status"`
	DOI        *string               `json:"doi"`
	Abstract   *string               `json:"abstract"`
	Keywords   []string              `json:"keywords"`
	PageStart  *string               `json:"pageStart"`
	PageEnd    *string               `json:"pageEnd"`
	ReceivedOn *string               `json:"receivedOn"`
	AcceptedOn *string               `json:"acceptedOn"`
	PublishedOn *string              `json:"publishedOn"`
}

// PlacementRequest describes where in the hierarchy an article lives.
// Exactly one of volumeId or isSpecialIssue must be set; issueId
// additionally requires volumeId.
type PlacementRequest struct {
	JournalID      string  `json:"journalId" binding:"required" validate:"required"`
	VolumeID       *string `json:"volumeId"`
	IssueID        *string `json:"issueId"`
	IsSpecialIssue bool    `json:"isSpecialIssue"`
}

// Placement converts the request into the model form used by services.
func (p PlacementRequest) Placement() models.Placement {
	return models.Placement{
		JournalID:      p.JournalID,
		VolumeID:       p.VolumeID,
		IssueID:        p.IssueID,
		IsSpecialIssue: p.IsSpecialIssue,
	}
}
