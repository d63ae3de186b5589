package dto

import (
	"time"

	"github.com/aethra-press/publishing-api/internal/models"
)

// ParsingStatusResponse reports the conversion state of a manuscript.
type ParsingStatusResponse struct {
	ArticleID     string               `json:"articleId"`
	Status        models.ParsingStatus `json:"status"`
	SourceVersion int64                `json:"sourceVersion"`
	ErrorMessage  *string              `json:"errorMessage,omitempty"`
	ParsedAt      *time.Time           `json:"parsedAt,omitempty"`
}

// ReparseResponse acknowledges a manual reparse request.
type ReparseResponse struct {
	ArticleID     string `json:"articleId"`
	SourceVersion int64  `json:"sourceVersion"`
	Queued        bool   `json:"queued"`
}
