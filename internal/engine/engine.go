package engine

import (
	"groove-press/internal/database"
	"groove-press/internal/engine/actors"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
)

// Engine spawns one actor per domain and hands out their PIDs. Routing
// every mutation through a single mailbox per domain serializes writes to
// the same document within the process.
type Engine struct {
	userActor         *actor.PID
	reviewActor       *actor.PID
	commentActor      *actor.PID
	subscriptionActor *actor.PID
	newsActor         *actor.PID
}

func NewEngine(system *actor.ActorSystem, db database.Store, images actors.ImageRemover, metrics *utils.MetricsCollector) *Engine {
	context := system.Root

	userProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewUserActor(db, images, metrics)
	})
	userPID := context.Spawn(userProps)

	reviewProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewReviewActor(db, metrics)
	})
	reviewPID := context.Spawn(reviewProps)

	commentProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewCommentActor(db, metrics)
	})
	commentPID := context.Spawn(commentProps)

	subscriptionProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewSubscriptionActor(db, metrics)
	})
	subscriptionPID := context.Spawn(subscriptionProps)

	newsProps := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewNewsActor(db, images)
	})
	newsPID := context.Spawn(newsProps)

	return &Engine{
		userActor:         userPID,
		reviewActor:       reviewPID,
		commentActor:      commentPID,
		subscriptionActor: subscriptionPID,
		newsActor:         newsPID,
	}
}

// GetUserActor returns the PID of the user actor
func (e *Engine) GetUserActor() *actor.PID {
	return e.userActor
}

// GetReviewActor returns the PID of the review actor
func (e *Engine) GetReviewActor() *actor.PID {
	return e.reviewActor
}

// GetCommentActor returns the PID of the comment actor
func (e *Engine) GetCommentActor() *actor.PID {
	return e.commentActor
}

// GetSubscriptionActor returns the PID of the subscription actor
func (e *Engine) GetSubscriptionActor() *actor.PID {
	return e.subscriptionActor
}

// GetNewsActor returns the PID of the news actor
func (e *Engine) GetNewsActor() *actor.PID {
	return e.newsActor
}
