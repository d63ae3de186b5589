package dto

import (
	"time"

	"github.com/aethra-press/publishing-api/internal/models"
)

// ArtifactResponse describes one stored file slot on an article.
type ArtifactResponse struct {
	ID               string          `json:"id"`
	Kind             models.FileKind `json:"kind"`
	OriginalFilename string          `json:"originalFilename"`
	MimeType         string          `json:"mimeType"`
	SizeBytes        int64           `json:"sizeBytes"`
	DownloadURL      string          `json:"downloadUrl,omitempty"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ShareLinkResponse carries a signed, expiring download link.
type ShareLinkResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// FigureResponse describes a registered figure and its stable locator.
type FigureResponse struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	Caption          string    `json:"caption"`
	Locator          string    `json:"locator"`
	OriginalFilename string    `json:"originalFilename"`
	DisplayOrder     int       `json:"displayOrder"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// UpdateFigureRequest payload for editing figure metadata.
type UpdateFigureRequest struct {
	Label        *string `json:"label"`
	Caption      *string `json:"caption"`
	DisplayOrder *int    `json:"displayOrder"`
}
