package dto

import (
	"time"

	"github.com/aethra-press/publishing-api/internal/models"
)

// RenderableArticle is the composed reading view of a published
// article: metadata, parsed HTML sections and resolved figure URLs.
type RenderableArticle struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Slug        string             `json:"slug"`
	Type        models.ArticleType `json:"type"`
	DOI         string             `json:"doi,omitempty"`
	Keywords    []string           `json:"keywords,omitempty"`
	PublishedOn *time.Time         `json:"publishedOn,omitempty"`

	Journal JournalCrumb `json:"journal"`
	Volume  *VolumeCrumb `json:"volume,omitempty"`
	Issue   *IssueCrumb  `json:"issue,omitempty"`

	AbstractHTML   string `json:"abstractHtml"`
	BodyHTML       string `json:"bodyHtml"`
	ReferencesHTML string `json:"referencesHtml"`

	Figures   []FigureResponse   `json:"figures"`
	Downloads []ArtifactResponse `json:"downloads"`
}

// JournalCrumb is the journal portion of a reading breadcrumb.
type JournalCrumb struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// VolumeCrumb is the volume portion of a reading breadcrumb.
type VolumeCrumb struct {
	ID           string `json:"id"`
	VolumeNumber int    `json:"volumeNumber"`
	Year         int    `json:"year"`
}

// IssueCrumb is the issue portion of a reading breadcrumb.
type IssueCrumb struct {
	ID          string `json:"id"`
	IssueNumber int    `json:"issueNumber"`
	Title       string `json:"title,omitempty"`
}
