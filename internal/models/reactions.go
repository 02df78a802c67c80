package models

import "github.com/google/uuid"

// Reactions holds the like/dislike state shared by reviews, comments and
// replies. Invariant: a user id appears in at most one of LikedBy and
// DislikedBy, and the counters always equal the set sizes.
type Reactions struct {
	Likes      int         `json:"likes"`
	Dislikes   int         `json:"dislikes"`
	LikedBy    []uuid.UUID `json:"likedBy"`
	DislikedBy []uuid.UUID `json:"dislikedBy"`
}

// NewReactions returns an empty reaction state with allocated sets so
// JSON output renders [] rather than null.
func NewReactions() Reactions {
	return Reactions{
		LikedBy:    make([]uuid.UUID, 0),
		DislikedBy: make([]uuid.UUID, 0),
	}
}

// HasLiked reports whether userID currently likes the entity.
func (r *Reactions) HasLiked(userID uuid.UUID) bool {
	return containsID(r.LikedBy, userID)
}

// HasDisliked reports whether userID currently dislikes the entity.
func (r *Reactions) HasDisliked(userID uuid.UUID) bool {
	return containsID(r.DislikedBy, userID)
}

// Toggle applies a like (like=true) or dislike (like=false) from userID.
// Repeating the same reaction removes it; reacting the opposite way moves
// the user from one set to the other. Counters are kept in sync with the
// sets in the same call so a single document write carries both.
func (r *Reactions) Toggle(userID uuid.UUID, like bool) {
	if like {
		if containsID(r.LikedBy, userID) {
			r.LikedBy = removeID(r.LikedBy, userID)
			r.Likes--
			return
		}
		if containsID(r.DislikedBy, userID) {
			r.DislikedBy = removeID(r.DislikedBy, userID)
			r.Dislikes--
		}
		r.LikedBy = append(r.LikedBy, userID)
		r.Likes++
		return
	}

	if containsID(r.DislikedBy, userID) {
		r.DislikedBy = removeID(r.DislikedBy, userID)
		r.Dislikes--
		return
	}
	if containsID(r.LikedBy, userID) {
		r.LikedBy = removeID(r.LikedBy, userID)
		r.Likes--
	}
	r.DislikedBy = append(r.DislikedBy, userID)
	r.Dislikes++
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
