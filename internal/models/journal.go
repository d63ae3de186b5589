package models

import "time"

// Journal is the root of the publishing hierarchy.
// Descriptive fields may change after creation; the slug identifies the
// journal in public URLs and stays stable once referenced by children.
type Journal struct {
	ID          string    `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	ShortTitle  string    `db:"short_title" json:"short_title"`
	ISSN        string    `db:"issn" json:"issn"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// JournalFilter captures supported filters for listing journals.
type JournalFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
