package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"groove-press/internal/engine"
	"groove-press/internal/feed"
	"groove-press/internal/models"
	"groove-press/internal/utils"
	"groove-press/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System         *actor.ActorSystem
	Context        *actor.RootContext
	Engine         *engine.Engine
	Metrics        *utils.MetricsCollector
	Hub            *websocket.Hub
	RequestTimeout time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	context *actor.RootContext,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	hub *websocket.Hub,
) *Server {
	return &Server{
		System:         system,
		Context:        context,
		Engine:         eng,
		Metrics:        metrics,
		Hub:            hub,
		RequestTimeout: 5 * time.Second, // Default timeout for actor requests
	}
}

// ask sends a message to an actor and waits for the reply.
func (s *Server) ask(pid *actor.PID, msg interface{}) (interface{}, error) {
	future := s.Context.RequestFuture(pid, msg, s.RequestTimeout)
	return future.Result()
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respond translates an actor reply to an HTTP response. AppError replies
// map to their HTTP status; any other error reply is a store or actor
// failure that must not be serialized as a 200; everything else is
// encoded as JSON.
func (s *Server) respond(w http.ResponseWriter, result interface{}) {
	if appErr, ok := result.(*utils.AppError); ok {
		s.Metrics.IncrementErrors()
		http.Error(w, appErr.Error(), utils.AppErrorToHTTPStatus(appErr.Code))
		return
	}
	if err, ok := result.(error); ok {
		s.Metrics.IncrementErrors()
		log.Printf("Unexpected error reply from actor: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// askAndRespond is the common request path: forward to the actor, relay
// the reply.
func (s *Server) askAndRespond(w http.ResponseWriter, pid *actor.PID, msg interface{}) {
	result, err := s.ask(pid, msg)
	if err != nil {
		s.Metrics.IncrementErrors()
		http.Error(w, "Request timed out", http.StatusInternalServerError)
		return
	}
	s.respond(w, result)
}

// parseFeedOptions extracts the shared list-query parameters.
func parseFeedOptions(r *http.Request) feed.Options {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	if pageSize <= 0 {
		pageSize = 10
	}

	sort := q.Get("sort")
	if sort == "" {
		sort = feed.SortNewest
	}

	return feed.Options{
		Status:      models.ReviewStatus(q.Get("status")),
		Page:        page,
		PageSize:    pageSize,
		Search:      q.Get("search"),
		ReleaseType: q.Get("type"),
		Rating:      q.Get("rating"),
		Sort:        sort,
		StaffOnly:   q.Get("audience") == "staff",
	}
}
