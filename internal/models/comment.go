package models

import (
	"time"

	"github.com/google/uuid"
)

// Reply is a sub-document embedded in its parent comment. Replies have no
// collection of their own: every reply mutation rewrites the parent
// comment's replies array, so reply handling is serialized through the
// comment actor to avoid lost updates within the process.
type Reply struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	Content        string    `json:"content"`
	Reactions
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type Comment struct {
	ID             uuid.UUID `json:"id"`
	ReviewID       uuid.UUID `json:"reviewId"`
	UserID         uuid.UUID `json:"userId"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	Content        string    `json:"content"`
	Reactions
	Replies   []Reply    `json:"replies"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// FindReply returns a pointer into the embedded replies array, or nil.
func (c *Comment) FindReply(replyID uuid.UUID) *Reply {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			return &c.Replies[i]
		}
	}
	return nil
}

// RemoveReply deletes the reply from the embedded array. It reports
// whether the reply was present.
func (c *Comment) RemoveReply(replyID uuid.UUID) bool {
	for i := range c.Replies {
		if c.Replies[i].ID == replyID {
			c.Replies = append(c.Replies[:i], c.Replies[i+1:]...)
			return true
		}
	}
	return false
}
