package models

import "time"

// Figure is an image bound to an article.
//
// Locator is assigned once at creation and is permanent: replacing the
// underlying image swaps only StoragePath, and a deleted figure's locator
// is never reassigned to another figure.
type Figure struct {
	ID               string    `db:"id" json:"id"`
	ArticleID        string    `db:"article_id" json:"article_id"`
	Label            string    `db:"label" json:"label"`
	Caption          string    `db:"caption" json:"caption"`
	Locator          string    `db:"locator" json:"locator"`
	StoragePath      string    `db:"storage_path" json:"-"`
	OriginalFilename string    `db:"original_filename" json:"original_filename"`
	DisplayOrder     int       `db:"display_order" json:"display_order"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
