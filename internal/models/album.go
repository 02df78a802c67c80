package models

import "time"

// Album is immutable reference data describing a release. It is created
// lazily the first time a review references it and reused afterwards.
// The ID is either the external metadata-service id or a generated one,
// so it stays a string rather than a UUID.
type Album struct {
	ID        string      `json:"albumId"`
	Artist    string      `json:"artist"`
	Title     string      `json:"title"`
	Type      ReleaseType `json:"type"`
	CoverURL  string      `json:"coverUrl,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
