package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID                uuid.UUID    `json:"id"`
	AlbumID           string       `json:"albumId"`
	UserID            uuid.UUID    `json:"userId"`
	Rating            Rating       `json:"rating"`
	ReviewText        string       `json:"reviewText"`
	Status            ReviewStatus `json:"status"`
	RejectReason      string       `json:"rejectReason,omitempty"`
	ModerationComment string       `json:"moderationComment,omitempty"`
	CustomCoverURL    string       `json:"customCoverUrl,omitempty"`
	UniqueViews       int          `json:"uniqueViews"`
	Reactions
	CreatedAt time.Time `json:"createdAt"`

	// Hydrated fields, populated by the feed layer. Nil when the
	// referenced document is missing; callers render placeholders.
	Album  *Album         `json:"album,omitempty"`
	Author *AuthorSummary `json:"author,omitempty"`
}

// VisibleTo reports whether the review may be shown to the given caller.
// Approved reviews are public; pending and rejected ones are visible only
// to their author and to admins.
func (rv *Review) VisibleTo(callerID uuid.UUID, callerRole Role) bool {
	if rv.Status == StatusApproved {
		return true
	}
	return callerRole == RoleAdmin || callerID == rv.UserID
}
