package models

import (
	"time"

	"github.com/google/uuid"
)

// News is an admin-authored announcement. Deleting a news item also
// removes its images from the upload service.
type News struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Text      string     `json:"text"`
	ImageURLs []string   `json:"imageUrls"`
	AuthorID  uuid.UUID  `json:"authorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
