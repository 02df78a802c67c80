// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user profile. It
// mirrors the auth-provider state (role, ban flag, verification) plus the
// denormalized subscription counters.
type UserDocument struct {
	ID                 string    `bson:"_id"`
	Username           string    `bson:"username"`
	Email              string    `bson:"email"`
	HashedPassword     string    `bson:"hashedPassword"`
	Role               string    `bson:"role"`
	IsBanned           bool      `bson:"isBanned"`
	EmailVerified      bool      `bson:"emailVerified"`
	AvatarURL          string    `bson:"avatarUrl,omitempty"`
	SubscribersCount   int       `bson:"subscribersCount"`
	SubscriptionsCount int       `bson:"subscriptionsCount"`
	ReadReviews        int       `bson:"readReviews"`
	CreatedAt          time.Time `bson:"createdAt"`
}

func userToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:                 user.ID.String(),
		Username:           user.Username,
		Email:              user.Email,
		HashedPassword:     user.HashedPassword,
		Role:               string(user.Role),
		IsBanned:           user.IsBanned,
		EmailVerified:      user.EmailVerified,
		AvatarURL:          user.AvatarURL,
		SubscribersCount:   user.SubscribersCount,
		SubscriptionsCount: user.SubscriptionsCount,
		ReadReviews:        user.ReadReviews,
		CreatedAt:          user.CreatedAt,
	}
}

func userDocumentToModel(doc *UserDocument) (*models.User, error) {
	userID, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}

	return &models.User{
		ID:                 userID,
		Username:           doc.Username,
		Email:              doc.Email,
		HashedPassword:     doc.HashedPassword,
		Role:               models.Role(doc.Role),
		IsBanned:           doc.IsBanned,
		EmailVerified:      doc.EmailVerified,
		AvatarURL:          doc.AvatarURL,
		SubscribersCount:   doc.SubscribersCount,
		SubscriptionsCount: doc.SubscriptionsCount,
		ReadReviews:        doc.ReadReviews,
		CreatedAt:          doc.CreatedAt,
	}, nil
}

// SaveUser creates or updates a user in MongoDB
func (m *MongoDB) SaveUser(ctx context.Context, user *models.User) error {
	doc := userToDocument(user)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Users.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetUser retrieves a user by ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// GetUserByEmail retrieves a user by email address
func (m *MongoDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// GetUserByUsername retrieves a user by exact (case-sensitive) username
func (m *MongoDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", err)
	}
	if err != nil {
		return nil, err
	}

	return userDocumentToModel(&doc)
}

// GetUsersByIDs performs a single batched point-read for the given ids,
// deduplicated by the caller. Missing users are simply absent from the
// result map; feeds render placeholders for them.
func (m *MongoDB) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	result := make(map[uuid.UUID]*models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": idStrings}})
	if err != nil {
		return nil, fmt.Errorf("failed to batch-read users: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		user, err := userDocumentToModel(&doc)
		if err != nil {
			continue
		}
		result[user.ID] = user
	}

	return result, cursor.Err()
}

// DeleteUser removes the user document. Owned reviews and comments are
// intentionally left in place; feeds degrade them to placeholder authors.
func (m *MongoDB) DeleteUser(ctx context.Context, id uuid.UUID) error {
	result, err := m.Users.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewUserNotFoundError(id.String())
	}
	return nil
}

// SetUserBan flips the moderation ban flag
func (m *MongoDB) SetUserBan(ctx context.Context, id uuid.UUID, banned bool) error {
	return m.setUserField(ctx, id, bson.M{"isBanned": banned})
}

// SetUserRole changes the user's role
func (m *MongoDB) SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	return m.setUserField(ctx, id, bson.M{"role": string(role)})
}

// SetSubscriptionCounters overwrites both denormalized counters, used by
// the recompute-from-source-of-truth repair.
func (m *MongoDB) SetSubscriptionCounters(ctx context.Context, id uuid.UUID, subscribers, subscriptions int) error {
	return m.setUserField(ctx, id, bson.M{
		"subscribersCount":   subscribers,
		"subscriptionsCount": subscriptions,
	})
}

func (m *MongoDB) setUserField(ctx context.Context, id uuid.UUID, fields bson.M) error {
	result, err := m.Users.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(id.String())
	}
	return nil
}

// IncrementSubscribers atomically adjusts subscribersCount
func (m *MongoDB) IncrementSubscribers(ctx context.Context, id uuid.UUID, delta int) error {
	return m.incrementUserField(ctx, id, "subscribersCount", delta)
}

// IncrementSubscriptions atomically adjusts subscriptionsCount
func (m *MongoDB) IncrementSubscriptions(ctx context.Context, id uuid.UUID, delta int) error {
	return m.incrementUserField(ctx, id, "subscriptionsCount", delta)
}

// IncrementReadCount bumps the user's read-review counter by one
func (m *MongoDB) IncrementReadCount(ctx context.Context, id uuid.UUID) error {
	return m.incrementUserField(ctx, id, "readReviews", 1)
}

func (m *MongoDB) incrementUserField(ctx context.Context, id uuid.UUID, field string, delta int) error {
	result, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{field: delta}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(id.String())
	}
	return nil
}

// CountUsers returns the total number of user documents
func (m *MongoDB) CountUsers(ctx context.Context) (int, error) {
	count, err := m.Users.CountDocuments(ctx, bson.M{})
	return int(count), err
}
