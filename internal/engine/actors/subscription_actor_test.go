package actors

import (
	"context"
	"testing"

	"groove-press/internal/feed"
	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnSubscriptionActor(t *testing.T, db *memStore) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSubscriptionActor(db, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func subscribe(t *testing.T, system *actor.ActorSystem, pid *actor.PID, subscriberID, targetID uuid.UUID) *models.Subscription {
	t.Helper()
	result := askActor(t, system, pid, &SubscribeMsg{
		SubscriberID: subscriberID,
		TargetID:     targetID,
	})
	sub, ok := result.(*models.Subscription)
	require.True(t, ok, "expected *models.Subscription, got %T", result)
	return sub
}

func TestSubscribeUpdatesCounters(t *testing.T) {
	db := newMemStore()
	follower := seedUser(t, db, "follower", models.RoleUser, false)
	target := seedUser(t, db, "critic", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	sub := subscribe(t, system, pid, follower.ID, target.ID)
	assert.Equal(t, follower.ID, sub.SubscriberID)
	assert.Equal(t, target.ID, sub.TargetUserID)

	updatedTarget, err := db.GetUser(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedTarget.SubscribersCount)

	updatedFollower, err := db.GetUser(context.Background(), follower.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedFollower.SubscriptionsCount)
}

func TestSubscribeRejectsSelfAndDuplicates(t *testing.T) {
	db := newMemStore()
	follower := seedUser(t, db, "follower", models.RoleUser, false)
	target := seedUser(t, db, "critic", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	result := askActor(t, system, pid, &SubscribeMsg{
		SubscriberID: follower.ID,
		TargetID:     follower.ID,
	})
	requireAppError(t, result, utils.ErrSelfSubscribe)

	subscribe(t, system, pid, follower.ID, target.ID)
	result = askActor(t, system, pid, &SubscribeMsg{
		SubscriberID: follower.ID,
		TargetID:     target.ID,
	})
	requireAppError(t, result, utils.ErrAlreadySubscribed)

	// The failed duplicate must not bump the counters.
	updatedTarget, err := db.GetUser(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updatedTarget.SubscribersCount)
}

func TestUnsubscribeRestoresCounters(t *testing.T) {
	db := newMemStore()
	follower := seedUser(t, db, "follower", models.RoleUser, false)
	target := seedUser(t, db, "critic", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	subscribe(t, system, pid, follower.ID, target.ID)

	result := askActor(t, system, pid, &UnsubscribeMsg{
		SubscriberID: follower.ID,
		TargetID:     target.ID,
	})
	status, ok := result.(*models.StatusResponse)
	require.True(t, ok, "expected *models.StatusResponse, got %T", result)
	assert.True(t, status.Success)

	updatedTarget, err := db.GetUser(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updatedTarget.SubscribersCount)

	updatedFollower, err := db.GetUser(context.Background(), follower.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updatedFollower.SubscriptionsCount)

	// Unsubscribing again fails cleanly.
	result = askActor(t, system, pid, &UnsubscribeMsg{
		SubscriberID: follower.ID,
		TargetID:     target.ID,
	})
	requireAppError(t, result, utils.ErrNotSubscribed)
}

func TestIsSubscribed(t *testing.T) {
	db := newMemStore()
	follower := seedUser(t, db, "follower", models.RoleUser, false)
	target := seedUser(t, db, "critic", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	result := askActor(t, system, pid, &IsSubscribedMsg{
		SubscriberID: follower.ID,
		TargetID:     target.ID,
	})
	assert.Equal(t, false, result)

	subscribe(t, system, pid, follower.ID, target.ID)

	result = askActor(t, system, pid, &IsSubscribedMsg{
		SubscriberID: follower.ID,
		TargetID:     target.ID,
	})
	assert.Equal(t, true, result)
}

func TestRecomputeCountersRepairsDrift(t *testing.T) {
	db := newMemStore()
	follower := seedUser(t, db, "follower", models.RoleUser, false)
	other := seedUser(t, db, "other", models.RoleUser, false)
	target := seedUser(t, db, "critic", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	subscribe(t, system, pid, follower.ID, target.ID)
	subscribe(t, system, pid, other.ID, target.ID)

	// Simulate counter drift from a crash between the join insert and
	// the increments.
	require.NoError(t, db.SetSubscriptionCounters(context.Background(), target.ID, 99, 42))

	result := askActor(t, system, pid, &RecomputeCountersMsg{UserID: target.ID})
	repaired, ok := result.(*models.User)
	require.True(t, ok, "expected *models.User, got %T", result)
	assert.Equal(t, 2, repaired.SubscribersCount)
	assert.Equal(t, 0, repaired.SubscriptionsCount)
}

func TestSubscriptionFeed(t *testing.T) {
	db := newMemStore()
	follower := seedUser(t, db, "follower", models.RoleUser, false)
	followed := seedUser(t, db, "followed", models.RoleUser, false)
	bannedAuthor := seedUser(t, db, "banned", models.RoleUser, true)
	unrelated := seedUser(t, db, "unrelated", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	subscribe(t, system, pid, follower.ID, followed.ID)
	subscribe(t, system, pid, follower.ID, bannedAuthor.ID)

	// Approved review by a followed author: included.
	included := seedApprovedReview(t, db, followed.ID)
	// Pending review by a followed author: excluded.
	pending := seedApprovedReview(t, db, followed.ID)
	require.NoError(t, db.UpdateReviewStatus(context.Background(), pending.ID, models.StatusPending, "", ""))
	// Approved review by a banned followed author: excluded.
	seedApprovedReview(t, db, bannedAuthor.ID)
	// Approved review by someone not followed: excluded.
	seedApprovedReview(t, db, unrelated.ID)

	result := askActor(t, system, pid, &SubscriptionFeedMsg{
		SubscriberID: follower.ID,
		Options:      feed.Options{Page: 1, PageSize: 10},
	})
	page, ok := result.(*feed.Page)
	require.True(t, ok, "expected *feed.Page, got %T", result)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, included.ID, page.Reviews[0].ID)
	assert.Equal(t, 1, page.Total)
}

func TestSubscriptionFeedEmptyWithoutSubscriptions(t *testing.T) {
	db := newMemStore()
	loner := seedUser(t, db, "loner", models.RoleUser, false)
	system, pid := spawnSubscriptionActor(t, db)

	result := askActor(t, system, pid, &SubscriptionFeedMsg{
		SubscriberID: loner.ID,
		Options:      feed.Options{Page: 1, PageSize: 10},
	})
	page, ok := result.(*feed.Page)
	require.True(t, ok, "expected *feed.Page, got %T", result)
	assert.Empty(t, page.Reviews)
	assert.Equal(t, 0, page.Total)
}
