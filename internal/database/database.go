// internal/database/database.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"groove-press/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store defines the persistence interface consumed by the engine actors.
// MongoDB is the only production implementation; tests use an in-memory
// fake.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// User methods
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
	SetUserBan(ctx context.Context, id uuid.UUID, banned bool) error
	SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error
	SetSubscriptionCounters(ctx context.Context, id uuid.UUID, subscribers, subscriptions int) error
	IncrementSubscribers(ctx context.Context, id uuid.UUID, delta int) error
	IncrementSubscriptions(ctx context.Context, id uuid.UUID, delta int) error
	IncrementReadCount(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context) (int, error)

	// Album methods
	GetAlbum(ctx context.Context, id string) (*models.Album, error)
	GetAlbumsByIDs(ctx context.Context, ids []string) (map[string]*models.Album, error)
	SaveAlbum(ctx context.Context, album *models.Album) error

	// Review methods
	SaveReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	GetReviewsByStatus(ctx context.Context, status models.ReviewStatus) ([]*models.Review, error)
	GetReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Review, error)
	GetApprovedReviewsByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]*models.Review, error)
	UpdateReviewStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, rejectReason, moderationComment string) error
	UpdateReviewReactions(ctx context.Context, id uuid.UUID, reactions models.Reactions) error
	IncrementReviewViews(ctx context.Context, id uuid.UUID) error
	CountReviews(ctx context.Context) (int, error)

	// Read markers (per-user dedup for unique view counting)
	HasReadReview(ctx context.Context, userID, reviewID uuid.UUID) (bool, error)
	MarkReviewRead(ctx context.Context, userID, reviewID uuid.UUID) error

	// Comment methods
	SaveComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	GetReviewComments(ctx context.Context, reviewID uuid.UUID) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) error
	CountComments(ctx context.Context) (int, error)

	// News methods
	SaveNews(ctx context.Context, news *models.News) error
	GetNews(ctx context.Context, id uuid.UUID) (*models.News, error)
	ListNews(ctx context.Context, limit, offset int) ([]*models.News, int, error)
	DeleteNews(ctx context.Context, id uuid.UUID) error

	// Subscription methods
	SaveSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, subscriberID, targetID uuid.UUID) (*models.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriberID, targetID uuid.UUID) error
	GetSubscriptionsBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]*models.Subscription, error)
	GetSubscribersOfUser(ctx context.Context, targetID uuid.UUID) ([]*models.Subscription, error)
	CountSubscriptions(ctx context.Context, subscriberID uuid.UUID) (int, error)
	CountSubscribers(ctx context.Context, targetID uuid.UUID) (int, error)
}

// MongoDB wraps the client and the collections used by the application.
type MongoDB struct {
	Client      *mongo.Client
	Users       *mongo.Collection
	Albums      *mongo.Collection
	Reviews     *mongo.Collection
	Comments    *mongo.Collection
	News        *mongo.Collection
	Subscribers *mongo.Collection
	ReadMarks   *mongo.Collection
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB!")

	db := client.Database(dbName)
	return &MongoDB{
		Client:      client,
		Users:       db.Collection("users"),
		Albums:      db.Collection("albums"),
		Reviews:     db.Collection("reviews"),
		Comments:    db.Collection("comments"),
		News:        db.Collection("news"),
		Subscribers: db.Collection("subscribers"),
		ReadMarks:   db.Collection("read_reviews"),
	}, nil
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
