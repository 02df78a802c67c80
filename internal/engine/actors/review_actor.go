package actors

import (
	stdctx "context"
	"log"
	"strings"
	"time"

	"groove-press/internal/database"
	"groove-press/internal/feed"
	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// GetCountsMsg asks an actor for its entity count. Every domain actor
// answers it; the health endpoint aggregates the responses.
type GetCountsMsg struct{}

// Message types for ReviewActor
type (
	CreateReviewMsg struct {
		UserID         uuid.UUID `json:"userId"`
		AlbumID        string    `json:"albumId,omitempty"`
		Artist         string    `json:"artist"`
		Title          string    `json:"title"`
		ReleaseType    string    `json:"releaseType"`
		CoverURL       string    `json:"coverUrl,omitempty"`
		Rating         string    `json:"rating"`
		ReviewText     string    `json:"reviewText"`
		CustomCoverURL string    `json:"customCoverUrl,omitempty"`
	}

	GetReviewMsg struct {
		ReviewID   uuid.UUID   `json:"reviewId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
	}

	ListReviewsMsg struct {
		Options    feed.Options `json:"options"`
		CallerRole models.Role  `json:"callerRole"`
	}

	GetUserReviewsMsg struct {
		AuthorID   uuid.UUID   `json:"authorId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
	}

	ModerateReviewMsg struct {
		ReviewID          uuid.UUID `json:"reviewId"`
		AdminID           uuid.UUID `json:"adminId"`
		Approve           bool      `json:"approve"`
		RejectReason      string    `json:"rejectReason,omitempty"`
		ModerationComment string    `json:"moderationComment,omitempty"`
	}

	DeleteReviewMsg struct {
		ReviewID   uuid.UUID   `json:"reviewId"`
		CallerID   uuid.UUID   `json:"callerId"`
		CallerRole models.Role `json:"callerRole"`
	}

	ToggleReviewReactionMsg struct {
		ReviewID uuid.UUID `json:"reviewId"`
		UserID   uuid.UUID `json:"userId"`
		Like     bool      `json:"like"`
	}

	MarkReviewReadMsg struct {
		ReviewID   uuid.UUID   `json:"reviewId"`
		UserID     uuid.UUID   `json:"userId"`
		CallerRole models.Role `json:"callerRole"`
	}
)

// ReviewActor owns the review lifecycle: submission with lazy album
// creation, moderation transitions, reaction toggles and unique view
// counting. All review writes flow through this one actor, so toggles
// within the process never interleave on the same document.
type ReviewActor struct {
	db       database.Store
	hydrator *feed.Hydrator
	metrics  *utils.MetricsCollector
}

func NewReviewActor(db database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &ReviewActor{
		db:       db,
		hydrator: feed.NewHydrator(db, db),
		metrics:  metrics,
	}
}

func (a *ReviewActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		log.Printf("ReviewActor started with PID: %v", context.Self())

	case *CreateReviewMsg:
		a.handleCreateReview(context, msg)

	case *GetReviewMsg:
		a.handleGetReview(context, msg)

	case *ListReviewsMsg:
		a.handleListReviews(context, msg)

	case *GetUserReviewsMsg:
		a.handleGetUserReviews(context, msg)

	case *ModerateReviewMsg:
		a.handleModerateReview(context, msg)

	case *DeleteReviewMsg:
		a.handleDeleteReview(context, msg)

	case *ToggleReviewReactionMsg:
		a.handleToggleReaction(context, msg)

	case *MarkReviewReadMsg:
		a.handleMarkRead(context, msg)

	case *GetCountsMsg:
		ctx := stdctx.Background()
		count, err := a.db.CountReviews(ctx)
		if err != nil {
			context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to count reviews", err))
			return
		}
		context.Respond(count)

	default:
		log.Printf("ReviewActor: Unknown message type %T", msg)
	}
}

// getOrCreateAlbum resolves the album referenced by a new review,
// creating it on first use. Albums are immutable once written so a hit
// never updates the stored metadata.
func (a *ReviewActor) getOrCreateAlbum(ctx stdctx.Context, msg *CreateReviewMsg) (*models.Album, error) {
	albumID := msg.AlbumID
	if albumID == "" {
		albumID = uuid.NewString()
	}

	album, err := a.db.GetAlbum(ctx, albumID)
	if err == nil {
		return album, nil
	}
	if !utils.IsErrorCode(err, utils.ErrAlbumNotFound) {
		return nil, err
	}

	album = &models.Album{
		ID:        albumID,
		Artist:    msg.Artist,
		Title:     msg.Title,
		Type:      models.ReleaseType(msg.ReleaseType),
		CoverURL:  msg.CoverURL,
		CreatedAt: time.Now(),
	}
	if err := a.db.SaveAlbum(ctx, album); err != nil {
		return nil, err
	}
	log.Printf("Created album %s (%s - %s)", album.ID, album.Artist, album.Title)
	return album, nil
}

func (a *ReviewActor) handleCreateReview(context actor.Context, msg *CreateReviewMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	if strings.TrimSpace(msg.ReviewText) == "" {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Review text is required", nil))
		return
	}
	if !models.ValidRating(msg.Rating) {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Unknown rating value", nil))
		return
	}
	if msg.AlbumID == "" && !models.ValidReleaseType(msg.ReleaseType) {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Unknown release type", nil))
		return
	}

	author, err := a.db.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
		return
	}
	if author.IsBanned {
		context.Respond(utils.NewBannedError())
		return
	}

	album, err := a.getOrCreateAlbum(ctx, msg)
	if err != nil {
		log.Printf("Failed to resolve album for review: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to resolve album", err))
		return
	}

	// Admin submissions skip the moderation queue.
	status := models.StatusPending
	if author.IsAdmin() {
		status = models.StatusApproved
	}

	review := &models.Review{
		ID:             uuid.New(),
		AlbumID:        album.ID,
		UserID:         msg.UserID,
		Rating:         models.Rating(msg.Rating),
		ReviewText:     msg.ReviewText,
		Status:         status,
		CustomCoverURL: msg.CustomCoverURL,
		Reactions:      models.NewReactions(),
		CreatedAt:      time.Now(),
	}

	if err := a.db.SaveReview(ctx, review); err != nil {
		log.Printf("Failed to save review: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to save review", err))
		return
	}

	review.Album = album
	review.Author = author.Summary()

	a.metrics.AddOperationLatency("create_review", time.Since(startTime))
	log.Printf("Created review %s for album %s (status %s)", review.ID, album.ID, review.Status)
	context.Respond(review)
}

func (a *ReviewActor) handleGetReview(context actor.Context, msg *GetReviewMsg) {
	ctx := stdctx.Background()

	review, err := a.db.GetReview(ctx, msg.ReviewID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load review"))
		return
	}

	// Pending and rejected reviews are hidden from everyone except the
	// author and admins. Report not-found rather than forbidden so their
	// existence does not leak.
	if !review.VisibleTo(msg.CallerID, msg.CallerRole) {
		context.Respond(utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil))
		return
	}

	if err := a.hydrator.HydrateOne(ctx, review); err != nil {
		log.Printf("Failed to hydrate review %s: %v", msg.ReviewID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load review", err))
		return
	}
	context.Respond(review)
}

func (a *ReviewActor) handleListReviews(context actor.Context, msg *ListReviewsMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	opts := msg.Options
	// Non-privileged callers only ever see the approved set regardless of
	// the status they asked for.
	if msg.CallerRole != models.RoleAdmin {
		opts.Status = models.StatusApproved
	}
	if opts.Status == "" {
		opts.Status = models.StatusApproved
	}

	reviews, err := a.db.GetReviewsByStatus(ctx, opts.Status)
	if err != nil {
		log.Printf("Failed to query reviews by status %s: %v", opts.Status, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load reviews", err))
		return
	}

	if err := a.hydrator.Hydrate(ctx, reviews); err != nil {
		log.Printf("Failed to hydrate review page: %v", err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load reviews", err))
		return
	}

	page := feed.Build(reviews, opts)
	a.metrics.AddOperationLatency("list_reviews", time.Since(startTime))
	context.Respond(&page)
}

func (a *ReviewActor) handleGetUserReviews(context actor.Context, msg *GetUserReviewsMsg) {
	ctx := stdctx.Background()

	reviews, err := a.db.GetReviewsByAuthor(ctx, msg.AuthorID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load reviews", err))
		return
	}

	// Outsiders see only the approved subset of someone's reviews.
	ownProfile := msg.CallerID == msg.AuthorID || msg.CallerRole == models.RoleAdmin
	visible := make([]*models.Review, 0, len(reviews))
	for _, review := range reviews {
		if ownProfile || review.Status == models.StatusApproved {
			visible = append(visible, review)
		}
	}

	if err := a.hydrator.Hydrate(ctx, visible); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load reviews", err))
		return
	}
	context.Respond(visible)
}

func (a *ReviewActor) handleModerateReview(context actor.Context, msg *ModerateReviewMsg) {
	ctx := stdctx.Background()

	review, err := a.db.GetReview(ctx, msg.ReviewID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load review"))
		return
	}

	status := models.StatusRejected
	rejectReason := msg.RejectReason
	if msg.Approve {
		status = models.StatusApproved
		rejectReason = ""
	}

	// APPROVED and REJECTED are terminal.
	if review.Status != models.StatusPending {
		context.Respond(utils.NewInvalidTransitionError(string(review.Status), string(status)))
		return
	}

	if err := a.db.UpdateReviewStatus(ctx, msg.ReviewID, status, rejectReason, msg.ModerationComment); err != nil {
		log.Printf("Failed to update review %s status: %v", msg.ReviewID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update review status", err))
		return
	}

	review.Status = status
	review.RejectReason = rejectReason
	review.ModerationComment = msg.ModerationComment

	if err := a.hydrator.HydrateOne(ctx, review); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load review", err))
		return
	}

	log.Printf("Admin %s moderated review %s to %s", msg.AdminID, msg.ReviewID, status)
	context.Respond(review)
}

func (a *ReviewActor) handleDeleteReview(context actor.Context, msg *DeleteReviewMsg) {
	ctx := stdctx.Background()

	review, err := a.db.GetReview(ctx, msg.ReviewID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load review"))
		return
	}

	// Author or admin. Ban status does not block deletion.
	if review.UserID != msg.CallerID && msg.CallerRole != models.RoleAdmin {
		context.Respond(utils.NewForbiddenError("delete this review"))
		return
	}

	if err := a.db.DeleteReview(ctx, msg.ReviewID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to delete review", err))
		return
	}

	log.Printf("Deleted review %s (by %s)", msg.ReviewID, msg.CallerID)
	context.Respond(&models.StatusResponse{Success: true, Message: "Review deleted"})
}

func (a *ReviewActor) handleToggleReaction(context actor.Context, msg *ToggleReviewReactionMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	review, err := a.db.GetReview(ctx, msg.ReviewID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load review"))
		return
	}

	review.Toggle(msg.UserID, msg.Like)

	if err := a.db.UpdateReviewReactions(ctx, msg.ReviewID, review.Reactions); err != nil {
		log.Printf("Failed to persist reactions for review %s: %v", msg.ReviewID, err)
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to update reactions", err))
		return
	}

	// Respond with the hydrated review so the caller can swap its local
	// copy without a second fetch.
	if err := a.hydrator.HydrateOne(ctx, review); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to load review", err))
		return
	}

	a.metrics.AddOperationLatency("toggle_review_reaction", time.Since(startTime))
	context.Respond(review)
}

func (a *ReviewActor) handleMarkRead(context actor.Context, msg *MarkReviewReadMsg) {
	ctx := stdctx.Background()

	review, err := a.db.GetReview(ctx, msg.ReviewID)
	if err != nil {
		context.Respond(utils.AsAppError(err, "Failed to load review"))
		return
	}

	// Same visibility rule as reads: a hidden review answers not-found so
	// this endpoint does not confirm its existence either.
	if !review.VisibleTo(msg.UserID, msg.CallerRole) {
		context.Respond(utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil))
		return
	}

	read, err := a.db.HasReadReview(ctx, msg.UserID, msg.ReviewID)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to check read marker", err))
		return
	}
	if read {
		// Repeat reads are no-ops.
		context.Respond(&models.StatusResponse{Success: true, Message: "Already read"})
		return
	}

	if err := a.db.MarkReviewRead(ctx, msg.UserID, msg.ReviewID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to record read marker", err))
		return
	}
	if err := a.db.IncrementReviewViews(ctx, msg.ReviewID); err != nil {
		context.Respond(utils.NewAppError(utils.ErrDatabase, "Failed to increment views", err))
		return
	}
	if err := a.db.IncrementReadCount(ctx, msg.UserID); err != nil {
		log.Printf("Warning: failed to increment read count for user %s: %v", msg.UserID, err)
	}

	context.Respond(&models.StatusResponse{Success: true, Message: "View recorded"})
}
