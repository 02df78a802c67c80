package main

import (
	stdctx "context"
	"fmt"
	"log"
	"net/http"

	"groove-press/internal/config"
	"groove-press/internal/database"
	"groove-press/internal/engine"
	"groove-press/internal/handlers"
	"groove-press/internal/middleware"
	"groove-press/internal/uploader"
	"groove-press/internal/utils"
	"groove-press/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.InitJWT(cfg.Auth.JWTSecret)

	db, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := db.Close(stdctx.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	metrics := utils.NewMetricsCollector()
	images := uploader.NewClient(cfg.UploaderURL)

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, db, images, metrics)

	hub := websocket.NewHub()
	go hub.Run()

	server := handlers.NewServer(system, system.Root, eng, metrics, hub)

	routes := map[string]http.HandlerFunc{
		"/health":        server.HandleHealth(),
		"/health/simple": server.HandleSimpleHealth(),
		"/metrics":       server.HandleMetrics(),

		"/user/register":     server.HandleUserRegistration(),
		"/user/login":        server.HandleUserLogin(),
		"/user/profile":      server.HandleUserProfile(),
		"/user/verify-email": server.HandleVerifyEmail(),
		"/user/ban":          server.HandleBanUser(),
		"/user/role":         server.HandleSetRole(),

		"/reviews":          server.HandleReviews(),
		"/reviews/get":      server.HandleReviewByID(),
		"/reviews/user":     server.HandleUserReviews(),
		"/reviews/moderate": server.HandleModerateReview(),
		"/reviews/reaction": server.HandleReviewReaction(),
		"/reviews/read":     server.HandleMarkReviewRead(),

		"/comments":         server.HandleReviewComments(),
		"/comment":          server.HandleComment(),
		"/comment/reply":    server.HandleReply(),
		"/comment/reaction": server.HandleCommentReaction(),

		"/subscriptions":             server.HandleSubscriptions(),
		"/subscriptions/subscribers": server.HandleSubscribers(),
		"/subscriptions/status":      server.HandleSubscriptionStatus(),
		"/subscriptions/feed":        server.HandleSubscriptionFeed(),
		"/subscriptions/recount":     server.HandleRecomputeCounters(),

		"/news":     server.HandleNews(),
		"/news/get": server.HandleNewsByID(),

		"/ws": server.HandleWebSocket(),
	}

	mux := http.NewServeMux()
	for path, handler := range routes {
		if path == "/ws" {
			// The websocket handler authenticates via query token.
			mux.HandleFunc(path, handler)
			continue
		}
		mux.HandleFunc(path, middleware.ApplyJWTMiddleware(handler, path))
	}

	cors := middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))
	counted := countRequests(metrics, cors(mux))

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Starting server on %s", serverAddr)
	if err := http.ListenAndServe(serverAddr, counted); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func countRequests(metrics *utils.MetricsCollector, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.IncrementRequests()
		next.ServeHTTP(w, r)
	})
}
