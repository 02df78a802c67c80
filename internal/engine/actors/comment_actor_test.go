package actors

import (
	"context"
	"testing"
	"time"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnCommentActor(t *testing.T, db *memStore) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewCommentActor(db, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func seedApprovedReview(t *testing.T, db *memStore, authorID uuid.UUID) *models.Review {
	t.Helper()
	review := &models.Review{
		ID:         uuid.New(),
		AlbumID:    uuid.NewString(),
		UserID:     authorID,
		Rating:     models.RatingRecommend,
		ReviewText: "A favorite.",
		Status:     models.StatusApproved,
		Reactions:  models.NewReactions(),
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.SaveReview(context.Background(), review))
	return review
}

func postComment(t *testing.T, system *actor.ActorSystem, pid *actor.PID, reviewID, userID uuid.UUID, content string) *models.Comment {
	t.Helper()
	result := askActor(t, system, pid, &CreateCommentMsg{
		ReviewID: reviewID,
		UserID:   userID,
		Content:  content,
	})
	comment, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	return comment
}

func TestCreateCommentAttachesUsername(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	commenter := seedUser(t, db, "chatty", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, commenter.ID, "Great pick.")

	assert.Equal(t, "chatty", comment.AuthorUsername)
	assert.Equal(t, review.ID, comment.ReviewID)
	assert.NotNil(t, comment.Replies)
	assert.Empty(t, comment.Replies)
}

func TestBannedUserCannotComment(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	banned := seedUser(t, db, "troll", models.RoleUser, true)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	result := askActor(t, system, pid, &CreateCommentMsg{
		ReviewID: review.ID,
		UserID:   banned.ID,
		Content:  "spam",
	})
	requireAppError(t, result, utils.ErrBanned)
}

func TestEditCommentAuthorization(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	commenter := seedUser(t, db, "chatty", models.RoleUser, false)
	stranger := seedUser(t, db, "stranger", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, commenter.ID, "First take.")

	result := askActor(t, system, pid, &EditCommentMsg{
		CommentID:  comment.ID,
		CallerID:   stranger.ID,
		CallerRole: models.RoleUser,
		Content:    "hijacked",
	})
	requireAppError(t, result, utils.ErrForbidden)

	result = askActor(t, system, pid, &EditCommentMsg{
		CommentID:  comment.ID,
		CallerID:   commenter.ID,
		CallerRole: models.RoleUser,
		Content:    "Second take.",
	})
	edited, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	assert.Equal(t, "Second take.", edited.Content)
	assert.NotNil(t, edited.UpdatedAt)
}

func TestBannedAuthorCanDeleteButNotEdit(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	commenter := seedUser(t, db, "regret", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, commenter.ID, "Before the ban.")

	require.NoError(t, db.SetUserBan(context.Background(), commenter.ID, true))

	// Editing own content is blocked while banned.
	result := askActor(t, system, pid, &EditCommentMsg{
		CommentID:  comment.ID,
		CallerID:   commenter.ID,
		CallerRole: models.RoleUser,
		Content:    "After the ban.",
	})
	requireAppError(t, result, utils.ErrBanned)

	// Deleting own content still works.
	result = askActor(t, system, pid, &DeleteCommentMsg{
		CommentID:  comment.ID,
		CallerID:   commenter.ID,
		CallerRole: models.RoleUser,
	})
	status, ok := result.(*models.StatusResponse)
	require.True(t, ok, "expected *models.StatusResponse, got %T", result)
	assert.True(t, status.Success)
}

func TestReplyLifecycle(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	commenter := seedUser(t, db, "chatty", models.RoleUser, false)
	replier := seedUser(t, db, "replier", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, commenter.ID, "Thread root.")

	// Create a reply; the whole updated comment comes back.
	result := askActor(t, system, pid, &CreateReplyMsg{
		CommentID: comment.ID,
		UserID:    replier.ID,
		Content:   "Replying here.",
	})
	withReply, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	require.Len(t, withReply.Replies, 1)
	reply := withReply.Replies[0]
	assert.Equal(t, "replier", reply.AuthorUsername)

	// Edit the reply.
	result = askActor(t, system, pid, &EditReplyMsg{
		CommentID:  comment.ID,
		ReplyID:    reply.ID,
		CallerID:   replier.ID,
		CallerRole: models.RoleUser,
		Content:    "Edited reply.",
	})
	edited, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	require.Len(t, edited.Replies, 1)
	assert.Equal(t, "Edited reply.", edited.Replies[0].Content)
	assert.NotNil(t, edited.Replies[0].UpdatedAt)

	// Delete the reply.
	result = askActor(t, system, pid, &DeleteReplyMsg{
		CommentID:  comment.ID,
		ReplyID:    reply.ID,
		CallerID:   replier.ID,
		CallerRole: models.RoleUser,
	})
	emptied, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	assert.Empty(t, emptied.Replies)

	// The array rewrite persisted.
	stored, err := db.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Replies)
}

func TestTwoRapidRepliesBothRetained(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	first := seedUser(t, db, "first", models.RoleUser, false)
	second := seedUser(t, db, "second", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, author.ID, "Thread root.")

	// Two cross-user replies sent back to back serialize through the
	// actor mailbox, so neither document rewrite loses the other.
	done := make(chan struct{}, 2)
	for _, replier := range []*models.User{first, second} {
		go func(userID uuid.UUID, content string) {
			future := system.Root.RequestFuture(pid, &CreateReplyMsg{
				CommentID: comment.ID,
				UserID:    userID,
				Content:   content,
			}, 5*time.Second)
			_, _ = future.Result()
			done <- struct{}{}
		}(replier.ID, "Reply from "+replier.Username)
	}
	for i := 0; i < 2; i++ {
		<-done
	}

	stored, err := db.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	require.Len(t, stored.Replies, 2)
	contents := []string{stored.Replies[0].Content, stored.Replies[1].Content}
	assert.Contains(t, contents, "Reply from first")
	assert.Contains(t, contents, "Reply from second")
}

func TestEditMissingReply(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	commenter := seedUser(t, db, "chatty", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, commenter.ID, "No replies yet.")

	result := askActor(t, system, pid, &EditReplyMsg{
		CommentID:  comment.ID,
		ReplyID:    uuid.New(),
		CallerID:   commenter.ID,
		CallerRole: models.RoleUser,
		Content:    "ghost",
	})
	requireAppError(t, result, utils.ErrReplyNotFound)
}

func TestCommentAndReplyReactions(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	commenter := seedUser(t, db, "chatty", models.RoleUser, false)
	reactor := seedUser(t, db, "reactor", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	comment := postComment(t, system, pid, review.ID, commenter.ID, "React to me.")

	result := askActor(t, system, pid, &ToggleCommentReactionMsg{
		CommentID: comment.ID,
		UserID:    reactor.ID,
		Like:      true,
	})
	liked, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	assert.Equal(t, 1, liked.Likes)

	// Reply reactions live on the embedded reply, not the parent.
	result = askActor(t, system, pid, &CreateReplyMsg{
		CommentID: comment.ID,
		UserID:    commenter.ID,
		Content:   "A reply to dislike.",
	})
	withReply, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	replyID := withReply.Replies[0].ID

	result = askActor(t, system, pid, &ToggleReplyReactionMsg{
		CommentID: comment.ID,
		ReplyID:   replyID,
		UserID:    reactor.ID,
		Like:      false,
	})
	updated, ok := result.(*models.Comment)
	require.True(t, ok, "expected *models.Comment, got %T", result)
	assert.Equal(t, 1, updated.Likes)
	require.Len(t, updated.Replies, 1)
	assert.Equal(t, 1, updated.Replies[0].Dislikes)
	assert.Equal(t, 0, updated.Replies[0].Likes)
}

func TestGetReviewCommentsFillsUsernames(t *testing.T) {
	db := newMemStore()
	author := seedUser(t, db, "reviewer", models.RoleUser, false)
	review := seedApprovedReview(t, db, author.ID)
	system, pid := spawnCommentActor(t, db)

	// Seed a comment without a stored username, as older documents have.
	bare := &models.Comment{
		ID:        uuid.New(),
		ReviewID:  review.ID,
		UserID:    author.ID,
		Content:   "Stored without a name.",
		Reactions: models.NewReactions(),
		Replies:   make([]models.Reply, 0),
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.SaveComment(context.Background(), bare))

	result := askActor(t, system, pid, &GetReviewCommentsMsg{ReviewID: review.ID})
	comments, ok := result.([]*models.Comment)
	require.True(t, ok, "expected []*models.Comment, got %T", result)
	require.Len(t, comments, 1)
	assert.Equal(t, "reviewer", comments[0].AuthorUsername)
}
