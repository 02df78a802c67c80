package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestToggleLikeRoundTrip(t *testing.T) {
	userID := uuid.New()
	r := &Reactions{}

	r.Toggle(userID, true)
	assert.Equal(t, 1, r.Likes)
	assert.True(t, r.HasLiked(userID))

	// Liking again removes the like.
	r.Toggle(userID, true)
	assert.Equal(t, 0, r.Likes)
	assert.False(t, r.HasLiked(userID))
	assert.Empty(t, r.LikedBy)
}

func TestToggleSwitchesSides(t *testing.T) {
	userID := uuid.New()
	r := &Reactions{}

	r.Toggle(userID, false)
	assert.Equal(t, 1, r.Dislikes)
	assert.True(t, r.HasDisliked(userID))

	r.Toggle(userID, true)
	assert.Equal(t, 1, r.Likes)
	assert.Equal(t, 0, r.Dislikes)
	assert.True(t, r.HasLiked(userID))
	assert.False(t, r.HasDisliked(userID))
}

func TestToggleAtMostOneSet(t *testing.T) {
	r := &Reactions{}
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	r.Toggle(users[0], true)
	r.Toggle(users[1], false)
	r.Toggle(users[2], true)
	r.Toggle(users[2], false)
	r.Toggle(users[0], false)
	r.Toggle(users[0], true)

	for _, u := range users {
		inBoth := r.HasLiked(u) && r.HasDisliked(u)
		assert.False(t, inBoth, "user %s appears in both sets", u)
	}
	assert.Equal(t, len(r.LikedBy), r.Likes)
	assert.Equal(t, len(r.DislikedBy), r.Dislikes)
}

func TestReviewVisibility(t *testing.T) {
	author := uuid.New()
	stranger := uuid.New()

	pending := &Review{UserID: author, Status: StatusPending}
	assert.True(t, pending.VisibleTo(author, RoleUser))
	assert.True(t, pending.VisibleTo(stranger, RoleAdmin))
	assert.False(t, pending.VisibleTo(stranger, RoleUser))

	rejected := &Review{UserID: author, Status: StatusRejected, RejectReason: "plagiarism"}
	assert.True(t, rejected.VisibleTo(author, RoleUser))
	assert.False(t, rejected.VisibleTo(stranger, RoleUser))

	approved := &Review{UserID: author, Status: StatusApproved}
	assert.True(t, approved.VisibleTo(stranger, RoleUser))
}
