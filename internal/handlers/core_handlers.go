package handlers

import (
	"net/http"
	"time"

	"groove-press/internal/engine/actors"
)

// HandleHealth reports liveness plus entity counts from the actors.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		counts := map[string]interface{}{
			"status":      "healthy",
			"server_time": time.Now(),
		}

		probes := []struct {
			key string
			ask func() (interface{}, error)
		}{
			{"user_count", func() (interface{}, error) { return s.ask(s.Engine.GetUserActor(), &actors.GetCountsMsg{}) }},
			{"review_count", func() (interface{}, error) { return s.ask(s.Engine.GetReviewActor(), &actors.GetCountsMsg{}) }},
			{"comment_count", func() (interface{}, error) { return s.ask(s.Engine.GetCommentActor(), &actors.GetCountsMsg{}) }},
		}
		for _, probe := range probes {
			result, err := probe.ask()
			if err != nil {
				http.Error(w, "Failed to collect counts", http.StatusInternalServerError)
				return
			}
			if count, ok := result.(int); ok {
				counts[probe.key] = count
			}
		}

		writeJSON(w, http.StatusOK, counts)
	}
}

// HandleSimpleHealth is a liveness probe that skips the actor round
// trips.
func (s *Server) HandleSimpleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// HandleMetrics serves the collector snapshot.
func (s *Server) HandleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, s.Metrics.Snapshot())
	}
}
