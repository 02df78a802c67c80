package actors

import (
	stdctx "context"
	"log"
	"time"

	"groove-press/internal/database"
	"groove-press/internal/feed"
	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for SubscriptionActor
type (
	SubscribeMsg struct {
		SubscriberID uuid.UUID `json:"subscriberId"`
		TargetID     uuid.UUID `json:"targetId"`
	}

	UnsubscribeMsg struct {
		SubscriberID uuid.UUID `json:"subscriberId"`
		TargetID     uuid.UUID `json:"targetId"`
	}

	GetSubscriptionsMsg struct {
		SubscriberID uuid.UUID `json:"subscriberId"`
	}

	GetSubscribersMsg struct {
		TargetID uuid.UUID `json:"targetId"`
	}

	IsSubscribedMsg struct {
		SubscriberID uuid.UUID `json:"subscriberId"`
		TargetID     uuid.UUID `json:"targetId"`
	}

	RecomputeCountersMsg struct {
		UserID uuid.UUID `json:"userId"`
	}

	SubscriptionFeedMsg struct {
		SubscriberID uuid.UUID    `json:"subscriberId"`
		Options      feed.Options `json:"options"`
	}
)

// SubscriptionActor maintains the follow graph and the denormalized
// counters on user documents. The join record insert and the two counter
// increments are sequential writes with no transaction; a crash between
// them desynchronizes the counters until RecomputeCountersMsg repairs
// them from the join collection.
type SubscriptionActor struct {
	db       database.Store
	hydrator *feed.Hydrator
	metrics  *utils.MetricsCollector
}

func NewSubscriptionActor(db database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &SubscriptionActor{
		db:       db,
		hydrator: feed.NewHydrator(db, db),
		metrics:  metrics,
	}
}

func (a *SubscriptionActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("SubscriptionActor started with PID: %v", context.Self())

	case *SubscribeMsg:
		a.handleSubscribe(context, msg)

	case *UnsubscribeMsg:
		a.handleUnsubscribe(context, msg)

	case *GetSubscriptionsMsg:
		a.handleGetSubscriptions(context, msg)

	case *GetSubscribersMsg:
		a.handleGetSubscribers(context, msg)

	case *IsSubscribedMsg:
		a.handleIsSubscribed(context, msg)

	case *RecomputeCountersMsg:
		a.handleRecomputeCounters(context, msg)

	case *SubscriptionFeedMsg:
		a.handleSubscriptionFeed(context, msg)

	default:
		log.Printf("SubscriptionActor: Unknown message type %T", msg)
	}
}

func (a *SubscriptionActor) handleSubscribe(context actor.Context, msg *SubscribeMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if msg.SubscriberID == msg.TargetID {
		context.Respond(utils.NewAppError(utils.ErrSelfSubscribe, "Cannot subscribe to yourself", nil))
		return
	}

	if _, err := a.db.GetUser(ctx, msg.TargetID); err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.TargetID.String()))
		return
	}

	if existing, _ := a.db.GetSubscription(ctx, msg.SubscriberID, msg.TargetID); existing != nil {
		context.Respond(utils.NewAppError(utils.ErrAlreadySubscribed, "Already subscribed", nil))
		return
	}

	sub := &models.Subscription{
		ID:           uuid.New(),
		SubscriberID: msg.SubscriberID,
		TargetUserID: msg.TargetID,
		SubscribedAt: time.Now(),
	}

	if err := a.db.SaveSubscription(ctx, sub); err != nil {
		log.Printf("Failed to save subscription: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to subscribe", err))
		return
	}

	// Counter updates follow the join insert without a transaction.
	if err := a.db.IncrementSubscribers(ctx, msg.TargetID, 1); err != nil {
		log.Printf("Warning: subscriber counter increment failed for %s: %v", msg.TargetID, err)
	}
	if err := a.db.IncrementSubscriptions(ctx, msg.SubscriberID, 1); err != nil {
		log.Printf("Warning: subscription counter increment failed for %s: %v", msg.SubscriberID, err)
	}

	a.metrics.AddOperationLatency("subscribe", time.Since(startTime))
	log.Printf("User %s subscribed to %s", msg.SubscriberID, msg.TargetID)
	context.Respond(sub)
}

func (a *SubscriptionActor) handleUnsubscribe(context actor.Context, msg *UnsubscribeMsg) {
	ctx := stdctx.Background()

	if _, err := a.db.GetSubscription(ctx, msg.SubscriberID, msg.TargetID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrNotSubscribed, "Not subscribed", nil))
		return
	}

	if err := a.db.DeleteSubscription(ctx, msg.SubscriberID, msg.TargetID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to unsubscribe", err))
		return
	}

	if err := a.db.IncrementSubscribers(ctx, msg.TargetID, -1); err != nil {
		log.Printf("Warning: subscriber counter decrement failed for %s: %v", msg.TargetID, err)
	}
	if err := a.db.IncrementSubscriptions(ctx, msg.SubscriberID, -1); err != nil {
		log.Printf("Warning: subscription counter decrement failed for %s: %v", msg.SubscriberID, err)
	}

	log.Printf("User %s unsubscribed from %s", msg.SubscriberID, msg.TargetID)
	context.Respond(&models.StatusResponse{Success: true, Message: "Unsubscribed"})
}

func (a *SubscriptionActor) handleGetSubscriptions(context actor.Context, msg *GetSubscriptionsMsg) {
	ctx := stdctx.Background()

	subs, err := a.db.GetSubscriptionsBySubscriber(ctx, msg.SubscriberID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load subscriptions", err))
		return
	}
	context.Respond(subs)
}

func (a *SubscriptionActor) handleGetSubscribers(context actor.Context, msg *GetSubscribersMsg) {
	ctx := stdctx.Background()

	subs, err := a.db.GetSubscribersOfUser(ctx, msg.TargetID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load subscribers", err))
		return
	}
	context.Respond(subs)
}

func (a *SubscriptionActor) handleIsSubscribed(context actor.Context, msg *IsSubscribedMsg) {
	ctx := stdctx.Background()

	_, err := a.db.GetSubscription(ctx, msg.SubscriberID, msg.TargetID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotSubscribed) {
			context.Respond(false)
			return
		}
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check subscription", err))
		return
	}
	context.Respond(true)
}

// handleRecomputeCounters repairs the denormalized counters on one user
// document by recounting the join collection, the source of truth.
func (a *SubscriptionActor) handleRecomputeCounters(context actor.Context, msg *RecomputeCountersMsg) {
	ctx := stdctx.Background()

	if _, err := a.db.GetUser(ctx, msg.UserID); err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}

	subscribers, err := a.db.CountSubscribers(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count subscribers", err))
		return
	}
	subscriptions, err := a.db.CountSubscriptions(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count subscriptions", err))
		return
	}

	if err := a.db.SetSubscriptionCounters(ctx, msg.UserID, subscribers, subscriptions); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to write counters", err))
		return
	}

	log.Printf("Recomputed counters for user %s: subscribers=%d subscriptions=%d",
		msg.UserID, subscribers, subscriptions)

	user, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to reload user", err))
		return
	}
	context.Respond(user)
}

// handleSubscriptionFeed serves approved reviews authored by the users
// the caller follows. Unlike the general feed it drops reviews whose
// author is banned or unresolvable instead of rendering placeholders.
func (a *SubscriptionActor) handleSubscriptionFeed(context actor.Context, msg *SubscriptionFeedMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	subs, err := a.db.GetSubscriptionsBySubscriber(ctx, msg.SubscriberID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load subscriptions", err))
		return
	}
	if len(subs) == 0 {
		context.Respond(&feed.Page{Reviews: []*models.Review{}, Total: 0})
		return
	}

	targetIDs := make([]uuid.UUID, 0, len(subs))
	for _, sub := range subs {
		targetIDs = append(targetIDs, sub.TargetUserID)
	}

	reviews, err := a.db.GetApprovedReviewsByAuthors(ctx, targetIDs)
	if err != nil {
		log.Printf("Failed to query subscription feed for %s: %v", msg.SubscriberID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load reviews", err))
		return
	}

	if err := a.hydrator.Hydrate(ctx, reviews); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load reviews", err))
		return
	}

	reviews = feed.ExcludeUnresolvedAuthors(reviews)

	opts := msg.Options
	opts.Status = models.StatusApproved
	opts.AnyAudience = true
	page := feed.Build(reviews, opts)

	a.metrics.AddOperationLatency("subscription_feed", time.Since(startTime))
	context.Respond(&page)
}
