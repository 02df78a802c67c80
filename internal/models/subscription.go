package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is a directed follow edge in the subscribers collection.
// SubscribersCount/SubscriptionsCount on User are denormalized from these
// records and repaired by recomputing from this source of truth.
type Subscription struct {
	ID           uuid.UUID `json:"id"`
	SubscriberID uuid.UUID `json:"subscriberId"`
	TargetUserID uuid.UUID `json:"targetUserId"`
	SubscribedAt time.Time `json:"subscribedAt"`
}
