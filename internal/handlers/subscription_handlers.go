package handlers

import (
	"encoding/json"
	"net/http"

	"groove-press/internal/engine/actors"
	"groove-press/internal/middleware"
	"groove-press/internal/models"
	"groove-press/internal/websocket"

	"github.com/google/uuid"
)

// SubscribeRequest targets the user to follow or unfollow.
type SubscribeRequest struct {
	UserID string `json:"userId"`
}

// HandleSubscriptions covers the caller's follow list (GET), subscribe
// (POST) and unsubscribe (DELETE).
func (s *Server) HandleSubscriptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		switch r.Method {
		case http.MethodGet:
			s.askAndRespond(w, s.Engine.GetSubscriptionActor(), &actors.GetSubscriptionsMsg{
				SubscriberID: callerID,
			})

		case http.MethodPost:
			var req SubscribeRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			targetID, err := uuid.Parse(req.UserID)
			if err != nil {
				http.Error(w, "Invalid user ID format", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetSubscriptionActor(), &actors.SubscribeMsg{
				SubscriberID: callerID,
				TargetID:     targetID,
			})
			if err != nil {
				http.Error(w, "Request timed out", http.StatusInternalServerError)
				return
			}

			if sub, ok := result.(*models.Subscription); ok && s.Hub != nil {
				s.Hub.Notify(sub.TargetUserID, websocket.EventNewSubscriber, map[string]interface{}{
					"subscriberId": sub.SubscriberID,
				})
			}
			s.respond(w, result)

		case http.MethodDelete:
			targetID, err := uuid.Parse(r.URL.Query().Get("userId"))
			if err != nil {
				http.Error(w, "Invalid user ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetSubscriptionActor(), &actors.UnsubscribeMsg{
				SubscriberID: callerID,
				TargetID:     targetID,
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleSubscribers lists the followers of a user.
func (s *Server) HandleSubscribers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		targetID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}
		s.askAndRespond(w, s.Engine.GetSubscriptionActor(), &actors.GetSubscribersMsg{TargetID: targetID})
	}
}

// HandleSubscriptionStatus reports whether the caller follows a user.
func (s *Server) HandleSubscriptionStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		targetID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		result, err := s.ask(s.Engine.GetSubscriptionActor(), &actors.IsSubscribedMsg{
			SubscriberID: callerID,
			TargetID:     targetID,
		})
		if err != nil {
			http.Error(w, "Request timed out", http.StatusInternalServerError)
			return
		}
		if subscribed, ok := result.(bool); ok {
			writeJSON(w, http.StatusOK, map[string]bool{"subscribed": subscribed})
			return
		}
		s.respond(w, result)
	}
}

// HandleSubscriptionFeed serves approved reviews from followed authors.
func (s *Server) HandleSubscriptionFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		callerID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		s.askAndRespond(w, s.Engine.GetSubscriptionActor(), &actors.SubscriptionFeedMsg{
			SubscriberID: callerID,
			Options:      parseFeedOptions(r),
		})
	}
}

// HandleRecomputeCounters repairs one user's denormalized counters from
// the join collection. Admin only.
func (s *Server) HandleRecomputeCounters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if _, ok := s.requireAdmin(w, r); !ok {
			return
		}

		userID, err := uuid.Parse(r.URL.Query().Get("userId"))
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}
		s.askAndRespond(w, s.Engine.GetSubscriptionActor(), &actors.RecomputeCountersMsg{UserID: userID})
	}
}
