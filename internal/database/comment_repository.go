// internal/database/comment_repository.go
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

// ReplyDocument is embedded in its parent comment document. Replies never
// get their own collection, so any reply change rewrites the whole
// replies array.
type ReplyDocument struct {
	ID         string     `bson:"id"`
	UserID     string     `bson:"userId"`
	Content    string     `bson:"content"`
	Likes      int        `bson:"likes"`
	Dislikes   int        `bson:"dislikes"`
	LikedBy    []string   `bson:"likedBy"`
	DislikedBy []string   `bson:"dislikedBy"`
	CreatedAt  time.Time  `bson:"createdAt"`
	UpdatedAt  *time.Time `bson:"updatedAt,omitempty"`
}

// CommentDocument represents comment data in MongoDB
type CommentDocument struct {
	ID         string          `bson:"_id"`
	ReviewID   string          `bson:"reviewId"`
	UserID     string          `bson:"userId"`
	Content    string          `bson:"content"`
	Likes      int             `bson:"likes"`
	Dislikes   int             `bson:"dislikes"`
	LikedBy    []string        `bson:"likedBy"`
	DislikedBy []string        `bson:"dislikedBy"`
	Replies    []ReplyDocument `bson:"replies"`
	CreatedAt  time.Time       `bson:"createdAt"`
	UpdatedAt  *time.Time      `bson:"updatedAt,omitempty"`
}

func commentToDocument(comment *models.Comment) *CommentDocument {
	doc := &CommentDocument{
		ID:         comment.ID.String(),
		ReviewID:   comment.ReviewID.String(),
		UserID:     comment.UserID.String(),
		Content:    comment.Content,
		Likes:      comment.Likes,
		Dislikes:   comment.Dislikes,
		LikedBy:    idsToStrings(comment.LikedBy),
		DislikedBy: idsToStrings(comment.DislikedBy),
		Replies:    make([]ReplyDocument, len(comment.Replies)),
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}

	for i, reply := range comment.Replies {
		doc.Replies[i] = ReplyDocument{
			ID:         reply.ID.String(),
			UserID:     reply.UserID.String(),
			Content:    reply.Content,
			Likes:      reply.Likes,
			Dislikes:   reply.Dislikes,
			LikedBy:    idsToStrings(reply.LikedBy),
			DislikedBy: idsToStrings(reply.DislikedBy),
			CreatedAt:  reply.CreatedAt,
			UpdatedAt:  reply.UpdatedAt,
		}
	}

	return doc
}

func commentDocumentToModel(doc *CommentDocument) (*models.Comment, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID: %v", err)
	}
	reviewID, err := uuid.Parse(doc.ReviewID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment review ID: %v", err)
	}
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment author ID: %v", err)
	}

	likedBy, err := stringsToIDs(doc.LikedBy)
	if err != nil {
		return nil, err
	}
	dislikedBy, err := stringsToIDs(doc.DislikedBy)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:       id,
		ReviewID: reviewID,
		UserID:   userID,
		Content:  doc.Content,
		Reactions: models.Reactions{
			Likes:      doc.Likes,
			Dislikes:   doc.Dislikes,
			LikedBy:    likedBy,
			DislikedBy: dislikedBy,
		},
		Replies:   make([]models.Reply, len(doc.Replies)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}

	for i, replyDoc := range doc.Replies {
		replyID, err := uuid.Parse(replyDoc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid reply ID: %v", err)
		}
		replyUserID, err := uuid.Parse(replyDoc.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid reply author ID: %v", err)
		}
		replyLikedBy, err := stringsToIDs(replyDoc.LikedBy)
		if err != nil {
			return nil, err
		}
		replyDislikedBy, err := stringsToIDs(replyDoc.DislikedBy)
		if err != nil {
			return nil, err
		}

		comment.Replies[i] = models.Reply{
			ID:      replyID,
			UserID:  replyUserID,
			Content: replyDoc.Content,
			Reactions: models.Reactions{
				Likes:      replyDoc.Likes,
				Dislikes:   replyDoc.Dislikes,
				LikedBy:    replyLikedBy,
				DislikedBy: replyDislikedBy,
			},
			CreatedAt: replyDoc.CreatedAt,
			UpdatedAt: replyDoc.UpdatedAt,
		}
	}

	return comment, nil
}

// SaveComment creates or updates a comment (with its full embedded
// replies array) in MongoDB
func (m *MongoDB) SaveComment(ctx context.Context, comment *models.Comment) error {
	doc := commentToDocument(comment)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Comments.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save comment: %v", err)
	}
	return nil
}

// GetComment retrieves a comment by ID
func (m *MongoDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var doc CommentDocument

	err := m.Comments.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %v", err)
	}

	return commentDocumentToModel(&doc)
}

// GetReviewComments retrieves all comments for a review
func (m *MongoDB) GetReviewComments(ctx context.Context, reviewID uuid.UUID) ([]*models.Comment, error) {
	cursor, err := m.Comments.Find(ctx, bson.M{"reviewId": reviewID.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to get review comments: %v", err)
	}
	defer cursor.Close(ctx)

	var comments []*models.Comment
	for cursor.Next(ctx) {
		var doc CommentDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding comment document: %v", err)
			continue
		}

		comment, err := commentDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting comment document to model: %v", err)
			continue
		}
		comments = append(comments, comment)
	}

	return comments, cursor.Err()
}

// DeleteComment removes a comment and its embedded replies
func (m *MongoDB) DeleteComment(ctx context.Context, id uuid.UUID) error {
	result, err := m.Comments.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil)
	}
	return nil
}

// CountComments returns the total number of comment documents
func (m *MongoDB) CountComments(ctx context.Context) (int, error) {
	count, err := m.Comments.CountDocuments(ctx, bson.M{})
	return int(count), err
}
