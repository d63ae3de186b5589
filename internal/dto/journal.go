package dto

// CreateJournalRequest payload for registering a new journal.
type CreateJournalRequest struct {
	Slug        string `json:"slug" binding:"required" validate:"required"`
	Title       string `json:"title" binding:"required" validate:"required"`
	ShortTitle  string `json:"shortTitle"`
	ISSN        string `json:"issn"`
	Description string `json:"description"`
}

// UpdateJournalRequest payload for editing journal metadata.
type UpdateJournalRequest struct {
	Title       *string `json:"title"`
	ShortTitle  *string `json:"shortTitle"`
	ISSN        *string `json:"issn"`
	Description *string `json:"description"`
}

// ContentsArticle is the article summary shown in grouped listings.
type ContentsArticle struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	DOI         string   `json:"doi,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Pages       string   `json:"pages,omitempty"`
	PublishedOn string   `json:"publishedOn,omitempty"`
}

// ContentsIssue groups the published articles of one issue.
type ContentsIssue struct {
	ID          string            `json:"id"`
	IssueNumber int               `json:"issueNumber"`
	Title       string            `json:"title,omitempty"`
	Label       string            `json:"label"`
	Articles    []ContentsArticle `json:"articles"`
}

// ContentsVolume groups one volume's issues plus articles placed
// directly under the volume.
type ContentsVolume struct {
	ID           string            `json:"id"`
	VolumeNumber int               `json:"volumeNumber"`
	Year         int               `json:"year"`
	Title        string            `json:"title,omitempty"`
	Label        string            `json:"label"`
	Issues       []ContentsIssue   `json:"issues"`
	Unassigned   []ContentsArticle `json:"unassigned,omitempty"`
}

// JournalContents is the read-time grouping of a journal's published
// articles by volume, issue and special-issue bucket.
type JournalContents struct {
	JournalID    string            `json:"journalId"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Volumes      []ContentsVolume  `json:"volumes"`
	SpecialIssue []ContentsArticle `json:"specialIssue,omitempty"`
}

// CreateVolumeRequest payload for adding a volume to a journal.
type CreateVolumeRequest struct {
	VolumeNumber int    `json:"volumeNumber" binding:"required" validate:"required,min=1"`
	Year         int    `json:"year" binding:"required" validate:"required,min=1000"`
	Title        string `json:"title"`
}

// CreateIssueRequest payload for adding an issue to a volume.
type CreateIssueRequest struct {
	IssueNumber int    `json:"issueNumber" binding:"required" validate:"required,min=1"`
	Title       string `json:"title"`
	PublishedOn string `json:"publishedOn"`
}
