package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"groove-press/internal/engine/actors"
	"groove-press/internal/middleware"
	"groove-press/internal/models"
	"groove-press/internal/websocket"

	"github.com/google/uuid"
)

// CreateReviewRequest represents a review submission.
type CreateReviewRequest struct {
	AlbumID        string `json:"albumId,omitempty"`
	Artist         string `json:"artist"`
	Title          string `json:"title"`
	ReleaseType    string `json:"releaseType"`
	CoverURL       string `json:"coverUrl,omitempty"`
	Rating         string `json:"rating"`
	ReviewText     string `json:"reviewText"`
	CustomCoverURL string `json:"customCoverUrl,omitempty"`
}

// ModerateReviewRequest is the admin approve/reject payload.
type ModerateReviewRequest struct {
	ReviewID          string `json:"reviewId"`
	Approve           bool   `json:"approve"`
	RejectReason      string `json:"rejectReason,omitempty"`
	ModerationComment string `json:"moderationComment,omitempty"`
}

// ReviewReactionRequest toggles a like or dislike on a review.
type ReviewReactionRequest struct {
	ReviewID string `json:"reviewId"`
	Like     bool   `json:"like"`
}

// HandleReviews serves the paginated feed (GET) and review submission
// (POST).
func (s *Server) HandleReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.ListReviewsMsg{
				Options:    parseFeedOptions(r),
				CallerRole: middleware.GetRoleFromContext(r.Context()),
			})

		case http.MethodPost:
			callerID, ok := middleware.GetUserIDFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			var req CreateReviewRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.CreateReviewMsg{
				UserID:         callerID,
				AlbumID:        req.AlbumID,
				Artist:         req.Artist,
				Title:          req.Title,
				ReleaseType:    req.ReleaseType,
				CoverURL:       req.CoverURL,
				Rating:         req.Rating,
				ReviewText:     req.ReviewText,
				CustomCoverURL: req.CustomCoverURL,
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleReviewByID serves a single review (GET) and deletion (DELETE),
// selected by the id query parameter.
func (s *Server) HandleReviewByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid review ID format", http.StatusBadRequest)
			return
		}

		callerID, _ := middleware.GetUserIDFromContext(r.Context())
		callerRole := middleware.GetRoleFromContext(r.Context())

		switch r.Method {
		case http.MethodGet:
			s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.GetReviewMsg{
				ReviewID:   reviewID,
				CallerID:   callerID,
				CallerRole: callerRole,
			})

		case http.MethodDelete:
			if callerID == uuid.Nil {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.DeleteReviewMsg{
				ReviewID:   reviewID,
				CallerID:   callerID,
				CallerRole: callerRole,
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleUserReviews lists one author's reviews.
func (s *Server) HandleUserReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		authorID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		callerID, _ := middleware.GetUserIDFromContext(r.Context())
		s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.GetUserReviewsMsg{
			AuthorID:   authorID,
			CallerID:   callerID,
			CallerRole: middleware.GetRoleFromContext(r.Context()),
		})
	}
}

// HandleModerateReview applies the admin approve/reject transition and
// notifies the author over the websocket hub.
func (s *Server) HandleModerateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		adminID, ok := s.requireAdmin(w, r)
		if !ok {
			return
		}

		var req ModerateReviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		reviewID, err := uuid.Parse(req.ReviewID)
		if err != nil {
			http.Error(w, "Invalid review ID format", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetReviewActor(), &actors.ModerateReviewMsg{
			ReviewID:          reviewID,
			AdminID:           adminID,
			Approve:           req.Approve,
			RejectReason:      req.RejectReason,
			ModerationComment: req.ModerationComment,
		})
		if err != nil {
			http.Error(w, "Request timed out", http.StatusInternalServerError)
			return
		}

		if review, ok := result.(*models.Review); ok && s.Hub != nil {
			s.Hub.Notify(review.UserID, websocket.EventReviewModerated, map[string]interface{}{
				"reviewId": review.ID,
				"status":   review.Status,
				"reason":   review.RejectReason,
			})
			if review.Status == models.StatusApproved {
				go s.notifySubscribersOfReview(review)
			}
		}
		s.respond(w, result)
	}
}

// notifySubscribersOfReview fans an approval out to the author's
// subscribers. Best effort; a failed lookup just skips the push.
func (s *Server) notifySubscribersOfReview(review *models.Review) {
	result, err := s.ask(s.Engine.GetSubscriptionActor(), &actors.GetSubscribersMsg{
		TargetID: review.UserID,
	})
	if err != nil {
		log.Printf("Failed to load subscribers of %s for review notification: %v", review.UserID, err)
		return
	}

	subs, ok := result.([]*models.Subscription)
	if !ok {
		return
	}
	for _, sub := range subs {
		s.Hub.Notify(sub.SubscriberID, websocket.EventNewReview, map[string]interface{}{
			"reviewId": review.ID,
			"authorId": review.UserID,
		})
	}
}

// HandleReviewReaction toggles the caller's like or dislike.
func (s *Server) HandleReviewReaction() http.HandlerFunc {
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

		var req ReviewReactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		reviewID, err := uuid.Parse(req.ReviewID)
		if err != nil {
			http.Error(w, "Invalid review ID format", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.ToggleReviewReactionMsg{
			ReviewID: reviewID,
			UserID:   callerID,
			Like:     req.Like,
		})
	}
}

// HandleMarkReviewRead records a unique view.
func (s *Server) HandleMarkReviewRead() http.HandlerFunc {
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

		reviewID, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid review ID format", http.StatusBadRequest)
			return
		}

		s.askAndRespond(w, s.Engine.GetReviewActor(), &actors.MarkReviewReadMsg{
			ReviewID:   reviewID,
			UserID:     callerID,
			CallerRole: middleware.GetRoleFromContext(r.Context()),
		})
	}
}
