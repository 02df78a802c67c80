package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"groove-press/internal/engine/actors"
	"groove-press/internal/models"
	"groove-press/internal/websocket"

	"github.com/google/uuid"
)

// NewsRequest carries a news create or update payload.
type NewsRequest struct {
	NewsID    string   `json:"newsId,omitempty"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	ImageURLs []string `json:"imageUrls"`
}

// HandleNews serves the news list (GET, public) and create (POST),
// update (PUT) and delete (DELETE) for admins.
func (s *Server) HandleNews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			limit, _ := strconv.Atoi(q.Get("limit"))
			offset, _ := strconv.Atoi(q.Get("offset"))
			s.askAndRespond(w, s.Engine.GetNewsActor(), &actors.ListNewsMsg{
				Limit:  limit,
				Offset: offset,
			})

		case http.MethodPost:
			adminID, ok := s.requireAdmin(w, r)
			if !ok {
				return
			}

			var req NewsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			result, err := s.ask(s.Engine.GetNewsActor(), &actors.CreateNewsMsg{
				AuthorID:  adminID,
				Title:     req.Title,
				Text:      req.Text,
				ImageURLs: req.ImageURLs,
			})
			if err != nil {
				http.Error(w, "Request timed out", http.StatusInternalServerError)
				return
			}

			if news, ok := result.(*models.News); ok && s.Hub != nil {
				s.Hub.Announce(websocket.EventNewsPublished, map[string]interface{}{
					"newsId": news.ID,
					"title":  news.Title,
				})
			}
			s.respond(w, result)

		case http.MethodPut:
			adminID, ok := s.requireAdmin(w, r)
			if !ok {
				return
			}

			var req NewsRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}
			newsID, err := uuid.Parse(req.NewsID)
			if err != nil {
				http.Error(w, "Invalid news ID format", http.StatusBadRequest)
				return
			}

			s.askAndRespond(w, s.Engine.GetNewsActor(), &actors.UpdateNewsMsg{
				NewsID:    newsID,
				AuthorID:  adminID,
				Title:     req.Title,
				Text:      req.Text,
				ImageURLs: req.ImageURLs,
			})

		case http.MethodDelete:
			adminID, ok := s.requireAdmin(w, r)
			if !ok {
				return
			}

			newsID, err := uuid.Parse(r.URL.Query().Get("id"))
			if err != nil {
				http.Error(w, "Invalid news ID format", http.StatusBadRequest)
				return
			}
			s.askAndRespond(w, s.Engine.GetNewsActor(), &actors.DeleteNewsMsg{
				NewsID:   newsID,
				CallerID: adminID,
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleNewsByID serves one news item.
func (s *Server) HandleNewsByID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		newsID, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "Invalid news ID format", http.StatusBadRequest)
			return
		}
		s.askAndRespond(w, s.Engine.GetNewsActor(), &actors.GetNewsMsg{NewsID: newsID})
	}
}
