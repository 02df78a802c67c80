package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"groove-press/internal/database"
	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Message types for CommentActor
type (
	CreateCommentMsg struct {
		ReviewID uuid.UUID `json:"reviewId"`
		UserID   uuid.UUID `json:"userId"`
		Content  string    `json:"content"`
	}

	EditCommentMsg struct {
		CommentID  uuid.UUID   `json:"commentId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
		Content    string      `json:"content"`
	}

	DeleteCommentMsg struct {
		CommentID  uuid.UUID   `json:"commentId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
	}

	GetReviewCommentsMsg struct {
		ReviewID uuid.UUID `json:"reviewId"`
	}

	CreateReplyMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
		Content   string    `json:"content"`
	}

	EditReplyMsg struct {
		CommentID  uuid.UUID   `json:"commentId"`
		ReplyID    uuid.UUID   `json:"replyId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
		Content    string      `json:"content"`
	}

	DeleteReplyMsg struct {
		CommentID  uuid.UUID   `json:"commentId"`
		ReplyID    uuid.UUID   `json:"replyId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
	}

	ToggleCommentReactionMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		UserID    uuid.UUID `json:"userId"`
		Like      bool      `json:"like"`
	}

	ToggleReplyReactionMsg struct {
		CommentID uuid.UUID `json:"commentId"`
		ReplyID   uuid.UUID `json:"replyId"`
		UserID    uuid.UUID `json:"userId"`
		Like      bool      `json:"like"`
	}
)

// CommentActor manages comments and their embedded replies. Replies have
// no document of their own, so every reply mutation rewrites the parent
// comment's replies array. Routing all of those writes through this one
// mailbox keeps concurrent reply edits under the same comment from
// clobbering each other within the process.
type CommentActor struct {
	db        database.Store
	metrics   *utils.MetricsCollector
	userCache map[uuid.UUID]string // Simple cache for usernames
}

func NewCommentActor(db database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &CommentActor{
		db:        db,
		metrics:   metrics,
		userCache: make(map[uuid.UUID]string),
	}
}

func (a *CommentActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("CommentActor started with PID: %v", context.Self())

	case *CreateCommentMsg:
		a.handleCreateComment(context, msg)

	case *EditCommentMsg:
		a.handleEditComment(context, msg)

	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)

	case *GetReviewCommentsMsg:
		a.handleGetReviewComments(context, msg)

	case *CreateReplyMsg:
		a.handleCreateReply(context, msg)

	case *EditReplyMsg:
		a.handleEditReply(context, msg)

	case *DeleteReplyMsg:
		a.handleDeleteReply(context, msg)

	case *ToggleCommentReactionMsg:
		a.handleToggleCommentReaction(context, msg)

	case *ToggleReplyReactionMsg:
		a.handleToggleReplyReaction(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.db.CountComments(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count comments", err))
			return
		}
		context.Respond(count)

	default:
		log.Printf("CommentActor: Unknown message type %T", msg)
	}
}

// getUsername resolves a display name, using the cache first.
func (a *CommentActor) getUsername(ctx stdctx.Context, userID uuid.UUID) string {
	if username, ok := a.userCache[userID]; ok {
		return username
	}

	user, err := a.db.GetUser(ctx, userID)
	if err != nil {
		log.Printf("Error fetching user %s for username: %v", userID, err)
		return "Unknown author"
	}

	a.userCache[userID] = user.Username
	return user.Username
}

// populateUsernames fills in missing display names on comments and their
// replies before they go out.
func (a *CommentActor) populateUsernames(ctx stdctx.Context, comments []*models.Comment) {
	for _, comment := range comments {
		if comment.AuthorUsername == "" {
			comment.AuthorUsername = a.getUsername(ctx, comment.UserID)
		}
		for i := range comment.Replies {
			if comment.Replies[i].AuthorUsername == "" {
				comment.Replies[i].AuthorUsername = a.getUsername(ctx, comment.Replies[i].UserID)
			}
		}
	}
}

// requireActiveUser loads the caller and rejects banned accounts. Used by
// create and edit paths; deletion deliberately skips the ban check.
func (a *CommentActor) requireActiveUser(ctx stdctx.Context, userID uuid.UUID) (*models.User, *utils.AppError) {
	user, err := a.db.GetUser(ctx, userID)
	if err != nil {
		return nil, utils.NewUserNotFoundError(userID.String())
	}
	if user.IsBanned {
		return nil, utils.NewBannedError()
	}
	return user, nil
}

func (a *CommentActor) handleCreateComment(context actor.Context, msg *CreateCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Comment content is required", nil))
		return
	}

	user, appErr := a.requireActiveUser(ctx, msg.UserID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	if _, err := a.db.GetReview(ctx, msg.ReviewID); err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load review"))
		return
	}

	comment := &models.Comment{
		ID:             uuid.New(),
		ReviewID:       msg.ReviewID,
		UserID:         msg.UserID,
		AuthorUsername: user.Username,
		Content:        msg.Content,
		Reactions:      models.NewReactions(),
		Replies:        make([]models.Reply, 0),
		CreatedAt:      time.Now(),
	}

	if err := a.db.SaveComment(ctx, comment); err != nil {
		log.Printf("Error saving comment to database: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err))
		return
	}

	a.userCache[user.ID] = user.Username
	a.metrics.AddOperationLatency("create_comment", time.Since(startTime))
	log.Printf("Created comment %s on review %s", comment.ID, msg.ReviewID)
	context.Respond(comment)
}

func (a *CommentActor) handleEditComment(context actor.Context, msg *EditCommentMsg) {
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Comment content is required", nil))
		return
	}

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	if comment.UserID != msg.CallerID && msg.CallerRole != models.RoleAdmin {
		context.Respond(utils.NewForbiddenError("edit this comment"))
		return
	}

	// Banned callers may not edit, even their own comments.
	if _, appErr := a.requireActiveUser(ctx, msg.CallerID); appErr != nil {
		context.Respond(appErr)
		return
	}

	now := time.Now()
	comment.Content = msg.Content
	comment.UpdatedAt = &now

	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err))
		return
	}

	a.populateUsernames(ctx, []*models.Comment{comment})
	context.Respond(comment)
}

func (a *CommentActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	ctx := stdctx.Background()

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	if comment.UserID != msg.CallerID && msg.CallerRole != models.RoleAdmin {
		context.Respond(utils.NewForbiddenError("delete this comment"))
		return
	}

	if err := a.db.DeleteComment(ctx, msg.CommentID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to delete comment", err))
		return
	}

	log.Printf("Deleted comment %s (by %s)", msg.CommentID, msg.CallerID)
	context.Respond(&models.StatusResponse{Success: true, Message: "Comment deleted"})
}

func (a *CommentActor) handleGetReviewComments(context actor.Context, msg *GetReviewCommentsMsg) {
	ctx := stdctx.Background()

	comments, err := a.db.GetReviewComments(ctx, msg.ReviewID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load comments", err))
		return
	}

	a.populateUsernames(ctx, comments)
	context.Respond(comments)
}

func (a *CommentActor) handleCreateReply(context actor.Context, msg *CreateReplyMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Reply content is required", nil))
		return
	}

	user, appErr := a.requireActiveUser(ctx, msg.UserID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	reply := models.Reply{
		ID:             uuid.New(),
		UserID:         msg.UserID,
		AuthorUsername: user.Username,
		Content:        msg.Content,
		Reactions:      models.NewReactions(),
		CreatedAt:      time.Now(),
	}
	comment.Replies = append(comment.Replies, reply)

	if err := a.db.SaveComment(ctx, comment); err != nil {
		log.Printf("Error saving reply to comment %s: %v", msg.CommentID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save reply", err))
		return
	}

	a.populateUsernames(ctx, []*models.Comment{comment})
	a.metrics.AddOperationLatency("create_reply", time.Since(startTime))
	log.Printf("Created reply %s under comment %s", reply.ID, msg.CommentID)
	context.Respond(comment)
}

func (a *CommentActor) handleEditReply(context actor.Context, msg *EditReplyMsg) {
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.Content) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Reply content is required", nil))
		return
	}

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	reply := comment.FindReply(msg.ReplyID)
	if reply == nil {
		context.Respond(utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil))
		return
	}

	if reply.UserID != msg.CallerID && msg.CallerRole != models.RoleAdmin {
		context.Respond(utils.NewForbiddenError("edit this reply"))
		return
	}

	if _, appErr := a.requireActiveUser(ctx, msg.CallerID); appErr != nil {
		context.Respond(appErr)
		return
	}

	now := time.Now()
	reply.Content = msg.Content
	reply.UpdatedAt = &now

	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save reply", err))
		return
	}

	a.populateUsernames(ctx, []*models.Comment{comment})
	context.Respond(comment)
}

func (a *CommentActor) handleDeleteReply(context actor.Context, msg *DeleteReplyMsg) {
	ctx := stdctx.Background()

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	reply := comment.FindReply(msg.ReplyID)
	if reply == nil {
		context.Respond(utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil))
		return
	}

	if reply.UserID != msg.CallerID && msg.CallerRole != models.RoleAdmin {
		context.Respond(utils.NewForbiddenError("delete this reply"))
		return
	}

	comment.RemoveReply(msg.ReplyID)

	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save comment", err))
		return
	}

	a.populateUsernames(ctx, []*models.Comment{comment})
	log.Printf("Deleted reply %s under comment %s", msg.ReplyID, msg.CommentID)
	context.Respond(comment)
}

func (a *CommentActor) handleToggleCommentReaction(context actor.Context, msg *ToggleCommentReactionMsg) {
	ctx := stdctx.Background()

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	comment.Toggle(msg.UserID, msg.Like)

	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update reactions", err))
		return
	}

	a.populateUsernames(ctx, []*models.Comment{comment})
	context.Respond(comment)
}

func (a *CommentActor) handleToggleReplyReaction(context actor.Context, msg *ToggleReplyReactionMsg) {
	ctx := stdctx.Background()

	comment, err := a.db.GetComment(ctx, msg.CommentID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load comment"))
		return
	}

	reply := comment.FindReply(msg.ReplyID)
	if reply == nil {
		context.Respond(utils.NewAppError(utils.ErrReplyNotFound, "Reply not found", nil))
		return
	}

	reply.Toggle(msg.UserID, msg.Like)

	if err := a.db.SaveComment(ctx, comment); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update reactions", err))
		return
	}

	a.populateUsernames(ctx, []*models.Comment{comment})
	context.Respond(comment)
}
