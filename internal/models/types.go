package models

// Role identifies a user's privilege level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ReviewStatus tracks the moderation state of a review.
// PENDING is the initial state for user submissions; APPROVED and
// REJECTED are terminal and can only be set by an admin.
type ReviewStatus string

const (
	StatusPending  ReviewStatus = "PENDING"
	StatusApproved ReviewStatus = "APPROVED"
	StatusRejected ReviewStatus = "REJECTED"
)

// Rating is the coarse verdict a review attaches to a release.
type Rating string

const (
	RatingRecommend    Rating = "RECOMMEND"
	RatingNeutral      Rating = "NEUTRAL"
	RatingNotRecommend Rating = "NOT_RECOMMEND"
)

// ReleaseType categorizes the release a review is about.
type ReleaseType string

const (
	ReleaseAlbum  ReleaseType = "album"
	ReleaseSingle ReleaseType = "single"
	ReleaseEP     ReleaseType = "ep"
)

// ValidRating reports whether s is one of the known rating values.
func ValidRating(s string) bool {
	switch Rating(s) {
	case RatingRecommend, RatingNeutral, RatingNotRecommend:
		return true
	}
	return false
}

// ValidReleaseType reports whether s is one of the known release types.
func ValidReleaseType(s string) bool {
	switch ReleaseType(s) {
	case ReleaseAlbum, ReleaseSingle, ReleaseEP:
		return true
	}
	return false
}

// StatusResponse is a generic success/failure payload returned by
// mutations that have no richer result.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
