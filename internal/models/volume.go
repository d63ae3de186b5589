package models

import "time"

// Volume is a periodic collection of issues within a journal.
// Unique per (journal_id, volume_number).
type Volume struct {
	ID           string    `db:"id" json:"id"`
	JournalID    string    `db:"journal_id" json:"journal_id"`
	VolumeNumber int       `db:"volume_number" json:"volume_number"`
	Year         int       `db:"year" json:"year"`
	Title        string    `db:"title" json:"title"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
