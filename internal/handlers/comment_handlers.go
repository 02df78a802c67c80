package handlers

import (
	"encoding/json"
	"net/http"

	"groove-press/internal/engine/actors"
	"groove-press/internal/middleware"

	"github.com/google/uuid"
)

// CreateCommentRequest adds a comment to a review.
type CreateCommentRequest struct {
	ReviewID string `json:"reviewId"`
	Content  string `json:"content"`
}

// EditCommentRequest updates a comment's content.
type EditCommentRequest struct {
	CommentID string `json:"commentId"`
	Content   string `json:"content"`
}

// ReplyRequest creates or edits a reply under a comment.
type ReplyRequest struct {
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId,omitempty"`
	Content   string `json:"content"`
}

// CommentReactionRequest toggles a reaction on a comment or, when
// ReplyID is set, on one of its replies.
type CommentReactionRequest struct {
	CommentID string `json:"commentId"`
	ReplyID   string `json:"replyId,omitempty"`
	Like      bool   `json:"like"`
}

// HandleReviewComments lists the comments of a review.
func (s *Server) HandleReviewComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		reviewID, err := uuid.Parse(r.URL.Query().Get("reviewId"))
		if err != nil {
			http.Error(w, "Invalid review ID format", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.GetReviewCommentsMsg{ReviewID: reviewID})
	}
}

// HandleComment covers comment create (POST), edit (PUT) and delete
// (DELETE).
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		callerRole := middleware.GetRoleFromContext(r.Context())

		switch r.Method {
		case http.MethodPost:
			var req CreateCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			reviewID, err := uuid.Parse(req.ReviewID)
			if err != nil {
				http.Error(w, "Invalid review ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.CreateCommentMsg{
				ReviewID: reviewID,
				UserID:   callerID,
				Content:  req.Content,
			})

		case http.MethodPut:
			var req EditCommentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			commentID, err := uuid.Parse(req.CommentID)
			if err != nil {
				http.Error(w, "Invalid comment ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.EditCommentMsg{
				CommentID:  commentID,
				CallerID:   callerID,
				CallerRole: callerRole,
				Content:    req.Content,
			})

		case http.MethodDelete:
			commentID, err := uuid.Parse(r.URL.Query().Get("id"))
			if err != nil {
				http.Error(w, "Invalid comment ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.DeleteCommentMsg{
				CommentID:  commentID,
				CallerID:   callerID,
				CallerRole: callerRole,
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleReply covers reply create (POST), edit (PUT) and delete (DELETE)
// on the embedded replies array.
func (s *Server) HandleReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		callerRole := middleware.GetRoleFromContext(r.Context())

		switch r.Method {
		case http.MethodPost:
			var req ReplyRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			commentID, err := uuid.Parse(req.CommentID)
			if err != nil {
				http.Error(w, "Invalid comment ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.CreateReplyMsg{
				CommentID: commentID,
				UserID:    callerID,
				Content:   req.Content,
			})

		case http.MethodPut:
			var req ReplyRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			commentID, err := uuid.Parse(req.CommentID)
			if err != nil {
				http.Error(w, "Invalid comment ID format", http.StatusBadRequest)
				return
			}
			replyID, err := uuid.Parse(req.ReplyID)
			if err != nil {
				http.Error(w, "Invalid reply ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.EditReplyMsg{
				CommentID:  commentID,
				ReplyID:    replyID,
				CallerID:   callerID,
				CallerRole: callerRole,
				Content:    req.Content,
			})

		case http.MethodDelete:
			commentID, err := uuid.Parse(r.URL.Query().Get("commentId"))
			if err != nil {
				http.Error(w, "Invalid comment ID format", http.StatusBadRequest)
				return
			}
			replyID, err := uuid.Parse(r.URL.Query().Get("replyId"))
			if err != nil {
				http.Error(w, "Invalid reply ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.DeleteReplyMsg{
				CommentID:  commentID,
				ReplyID:    replyID,
				CallerID:   callerID,
				CallerRole: callerRole,
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleCommentReaction toggles a like/dislike on a comment or reply.
func (s *Server) HandleCommentReaction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		var req CommentReactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		commentID, err := uuid.Parse(req.CommentID)
		if err != nil {
			http.Error(w, "Invalid comment ID format", http.StatusBadRequest)
			return
		}

		if req.ReplyID != "" {
			replyID, err := uuid.Parse(req.ReplyID)
			if err != nil {
				http.Error(w, "Invalid reply ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.ToggleReplyReactionMsg{
				CommentID: commentID,
				ReplyID:   replyID,
				UserID:    callerID,
				Like:      req.Like,
			})
			return
		}

		s.askAndRespond(w, s.Engine.GetCommentActor(), &actors.ToggleCommentReactionMsg{
			CommentID: commentID,
			UserID:    callerID,
			Like:      req.Like,
		})
	}
}
