// internal/database/review_repository.go
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoInClauseLimit caps the number of ids per $in query. Larger author
// sets are chunked and the results merged.
const mongoInClauseLimit = 10

// ReviewDocument represents the MongoDB schema for a review.
type ReviewDocument struct {
	ID                string    `bson:"_id"`
	AlbumID           string    `bson:"albumId"`
	UserID            string    `bson:"userId"`
	Rating            string    `bson:"rating"`
	ReviewText        string    `bson:"reviewText"`
	Status            string    `bson:"status"`
	RejectReason      string    `bson:"rejectReason,omitempty"`
	ModerationComment string    `bson:"moderationComment,omitempty"`
	CustomCoverURL    string    `bson:"customCoverUrl,omitempty"`
	UniqueViews       int       `bson:"uniqueViews"`
	Likes             int       `bson:"likes"`
	Dislikes          int       `bson:"dislikes"`
	LikedBy           []string  `bson:"likedBy"`
	DislikedBy        []string  `bson:"dislikedBy"`
	CreatedAt         time.Time `bson:"createdAt"`
}

func reviewToDocument(review *models.Review) *ReviewDocument {
	return &ReviewDocument{
		ID:                review.ID.String(),
		AlbumID:           review.AlbumID,
		UserID:            review.UserID.String(),
		Rating:            string(review.Rating),
		ReviewText:        review.ReviewText,
		Status:            string(review.Status),
		RejectReason:      review.RejectReason,
		ModerationComment: review.ModerationComment,
		CustomCoverURL:    review.CustomCoverURL,
		UniqueViews:       review.UniqueViews,
		Likes:             review.Likes,
		Dislikes:          review.Dislikes,
		LikedBy:           idsToStrings(review.LikedBy),
		DislikedBy:        idsToStrings(review.DislikedBy),
		CreatedAt:         review.CreatedAt,
	}
}

func reviewDocumentToModel(doc *ReviewDocument) (*models.Review, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid review ID: %v", err)
	}

	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid review author ID: %v", err)
	}

	likedBy, err := stringsToIDs(doc.LikedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid likedBy entry: %v", err)
	}
	dislikedBy, err := stringsToIDs(doc.DislikedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid dislikedBy entry: %v", err)
	}

	return &models.Review{
		ID:                id,
		AlbumID:           doc.AlbumID,
		UserID:            userID,
		Rating:            models.Rating(doc.Rating),
		ReviewText:        doc.ReviewText,
		Status:            models.ReviewStatus(doc.Status),
		RejectReason:      doc.RejectReason,
		ModerationComment: doc.ModerationComment,
		CustomCoverURL:    doc.CustomCoverURL,
		UniqueViews:       doc.UniqueViews,
		Reactions: models.Reactions{
			Likes:      doc.Likes,
			Dislikes:   doc.Dislikes,
			LikedBy:    likedBy,
			DislikedBy: dislikedBy,
		},
		CreatedAt: doc.CreatedAt,
	}, nil
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToIDs(strs []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(strs))
	for i, s := range strs {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// SaveReview creates or updates a review in MongoDB
func (m *MongoDB) SaveReview(ctx context.Context, review *models.Review) error {
	doc := reviewToDocument(review)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Reviews.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetReview retrieves a review by its ID
func (m *MongoDB) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var doc ReviewDocument

	err := m.Reviews.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrReviewNotFound, "Review not found", err)
	}
	if err != nil {
		return nil, err
	}

	return reviewDocumentToModel(&doc)
}

// DeleteReview removes a review document
func (m *MongoDB) DeleteReview(ctx context.Context, id uuid.UUID) error {
	result, err := m.Reviews.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	return nil
}

// GetReviewsByStatus runs the coarse server-side equality query; all
// further filtering happens in memory in the feed layer.
func (m *MongoDB) GetReviewsByStatus(ctx context.Context, status models.ReviewStatus) ([]*models.Review, error) {
	return m.queryReviews(ctx, bson.M{"status": string(status)})
}

// GetReviewsByAuthor returns every review by one author, any status.
func (m *MongoDB) GetReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Review, error) {
	return m.queryReviews(ctx, bson.M{"userId": authorID.String()})
}

// GetApprovedReviewsByAuthors fetches APPROVED reviews whose author is in
// the given set, chunking the $in clause at the store's limit and merging
// the batches.
func (m *MongoDB) GetApprovedReviewsByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]*models.Review, error) {
	var all []*models.Review
	for start := 0; start < len(authorIDs); start += mongoInClauseLimit {
		end := start + mongoInClauseLimit
		if end > len(authorIDs) {
			end = len(authorIDs)
		}

		batch, err := m.queryReviews(ctx, bson.M{
			"status": string(models.StatusApproved),
			"userId": bson.M{"$in": idsToStrings(authorIDs[start:end])},
		})
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (m *MongoDB) queryReviews(ctx context.Context, filter bson.M) ([]*models.Review, error) {
	cursor, err := m.Reviews.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("review query failed: %v", err)
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	for cursor.Next(ctx) {
		var doc ReviewDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding review document: %v", err)
			continue
		}

		review, err := reviewDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting review document to model: %v", err)
			continue
		}
		reviews = append(reviews, review)
	}

	return reviews, cursor.Err()
}

// UpdateReviewStatus applies a moderation decision
func (m *MongoDB) UpdateReviewStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, rejectReason, moderationComment string) error {
	update := bson.M{"$set": bson.M{
		"status":            string(status),
		"rejectReason":      rejectReason,
		"moderationComment": moderationComment,
	}}

	result, err := m.Reviews.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	return nil
}

// UpdateReviewReactions writes the like/dislike sets and counters in a
// single document update so both change together.
func (m *MongoDB) UpdateReviewReactions(ctx context.Context, id uuid.UUID, reactions models.Reactions) error {
	update := bson.M{"$set": bson.M{
		"likes":      reactions.Likes,
		"dislikes":   reactions.Dislikes,
		"likedBy":    idsToStrings(reactions.LikedBy),
		"dislikedBy": idsToStrings(reactions.DislikedBy),
	}}

	result, err := m.Reviews.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	return nil
}

// IncrementReviewViews bumps the unique-view counter atomically
func (m *MongoDB) IncrementReviewViews(ctx context.Context, id uuid.UUID) error {
	result, err := m.Reviews.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$inc": bson.M{"uniqueViews": 1}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	return nil
}

// CountReviews returns the total number of review documents
func (m *MongoDB) CountReviews(ctx context.Context) (int, error) {
	count, err := m.Reviews.CountDocuments(ctx, bson.M{})
	return int(count), err
}

// ReadMarkDocument is the per-user "has read this review" dedup marker.
type ReadMarkDocument struct {
	ID       string    `bson:"_id"` // userID:reviewID
	UserID   string    `bson:"userId"`
	ReviewID string    `bson:"reviewId"`
	ReadAt   time.Time `bson:"readAt"`
}

func readMarkID(userID, reviewID uuid.UUID) string {
	return userID.String() + ":" + reviewID.String()
}

// HasReadReview reports whether the user already has a read marker for
// the review. The check-then-act window against MarkReviewRead is not
// atomic; a simultaneous first read can double count, which the caller
// accepts.
func (m *MongoDB) HasReadReview(ctx context.Context, userID, reviewID uuid.UUID) (bool, error) {
	err := m.ReadMarks.FindOne(ctx, bson.M{"_id": readMarkID(userID, reviewID)}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkReviewRead inserts the dedup marker for (user, review)
func (m *MongoDB) MarkReviewRead(ctx context.Context, userID, reviewID uuid.UUID) error {
	doc := ReadMarkDocument{
		ID:       readMarkID(userID, reviewID),
		UserID:   userID.String(),
		ReviewID: reviewID.String(),
		ReadAt:   time.Now(),
	}

	opts := options.Update().SetUpsert(true)
	_, err := m.ReadMarks.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}
