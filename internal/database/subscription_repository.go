// internal/database/subscription_repository.go
package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionDocument is one directed follow edge in the subscribers
// collection, the source of truth for both denormalized user counters.
type SubscriptionDocument struct {
	ID           string    `bson:"_id"`
	SubscriberID string    `bson:"subscriberId"`
	TargetUserID string    `bson:"targetUserId"`
	SubscribedAt time.Time `bson:"subscribedAt"`
}

func subscriptionDocumentToModel(doc *SubscriptionDocument) (*models.Subscription, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscription ID: %v", err)
	}
	subscriberID, err := uuid.Parse(doc.SubscriberID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscriber ID: %v", err)
	}
	targetID, err := uuid.Parse(doc.TargetUserID)
	if err != nil {
		return nil, fmt.Errorf("invalid target user ID: %v", err)
	}

	return &models.Subscription{
		ID:           id,
		SubscriberID: subscriberID,
		TargetUserID: targetID,
		SubscribedAt: doc.SubscribedAt,
	}, nil
}

// SaveSubscription inserts a follow edge
func (m *MongoDB) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	doc := SubscriptionDocument{
		ID:           sub.ID.String(),
		SubscriberID: sub.SubscriberID.String(),
		TargetUserID: sub.TargetUserID.String(),
		SubscribedAt: sub.SubscribedAt,
	}

	_, err := m.Subscribers.InsertOne(ctx, doc)
	return err
}

// GetSubscription looks up the edge (subscriber -> target), if any
func (m *MongoDB) GetSubscription(ctx context.Context, subscriberID, targetID uuid.UUID) (*models.Subscription, error) {
	var doc SubscriptionDocument

	err := m.Subscribers.FindOne(ctx, bson.M{
		"subscriberId": subscriberID.String(),
		"targetUserId": targetID.String(),
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNotSubscribed, "No subscription found", err)
	}
	if err != nil {
		return nil, err
	}

	return subscriptionDocumentToModel(&doc)
}

// DeleteSubscription removes the edge (subscriber -> target)
func (m *MongoDB) DeleteSubscription(ctx context.Context, subscriberID, targetID uuid.UUID) error {
	result, err := m.Subscribers.DeleteOne(ctx, bson.M{
		"subscriberId": subscriberID.String(),
		"targetUserId": targetID.String(),
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNotSubscribed, "No subscription found", nil)
	}
	return nil
}

// GetSubscriptionsBySubscriber returns every edge originating at the user
func (m *MongoDB) GetSubscriptionsBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]*models.Subscription, error) {
	return m.querySubscriptions(ctx, bson.M{"subscriberId": subscriberID.String()})
}

// GetSubscribersOfUser returns every edge pointing at the user
func (m *MongoDB) GetSubscribersOfUser(ctx context.Context, targetID uuid.UUID) ([]*models.Subscription, error) {
	return m.querySubscriptions(ctx, bson.M{"targetUserId": targetID.String()})
}

func (m *MongoDB) querySubscriptions(ctx context.Context, filter bson.M) ([]*models.Subscription, error) {
	cursor, err := m.Subscribers.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("subscription query failed: %v", err)
	}
	defer cursor.Close(ctx)

	var subs []*models.Subscription
	for cursor.Next(ctx) {
		var doc SubscriptionDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding subscription document: %v", err)
			continue
		}

		sub, err := subscriptionDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting subscription document to model: %v", err)
			continue
		}
		subs = append(subs, sub)
	}

	return subs, cursor.Err()
}

// CountSubscriptions counts outgoing edges, for the counter repair
func (m *MongoDB) CountSubscriptions(ctx context.Context, subscriberID uuid.UUID) (int, error) {
	count, err := m.Subscribers.CountDocuments(ctx, bson.M{"subscriberId": subscriberID.String()})
	return int(count), err
}

// CountSubscribers counts incoming edges, for the counter repair
func (m *MongoDB) CountSubscribers(ctx context.Context, targetID uuid.UUID) (int, error) {
	count, err := m.Subscribers.CountDocuments(ctx, bson.M{"targetUserId": targetID.String()})
	return int(count), err
}
