package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	HashedPassword     string    `json:"-"`
	Role               Role      `json:"role"`
	IsBanned           bool      `json:"isBanned"`
	EmailVerified      bool      `json:"emailVerified"`
	AvatarURL          string    `json:"avatarUrl,omitempty"`
	SubscribersCount   int       `json:"subscribersCount"`
	SubscriptionsCount int       `json:"subscriptionsCount"`
	ReadReviews        int       `json:"readReviews"`
	CreatedAt          time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthorSummary is the slice of user data attached to hydrated reviews
// and comments. Ban state rides along so feeds can exclude banned authors
// without another point-read.
type AuthorSummary struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	IsBanned  bool      `json:"isBanned"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
}

// Summary extracts the author view of a user.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		IsBanned:  u.IsBanned,
		AvatarURL: u.AvatarURL,
	}
}
