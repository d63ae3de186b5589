package models

import "time"

// Issue is a single publication within a volume.
// Unique per (volume_id, issue_number).
type Issue struct {
	ID          string     `db:"id" json:"id"`
	VolumeID    string     `db:"volume_id" json:"volume_id"`
	IssueNumber int        `db:"issue_number" json:"issue_number"`
	Title       string     `db:"title" json:"title"`
	PublishedOn *time.Time `db:"published_on" json:"published_on,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
