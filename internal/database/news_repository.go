// internal/database/news_repository.go
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

// NewsDocument represents the MongoDB schema for a news item.
type NewsDocument struct {
	ID        string     `bson:"_id"`
	Title     string     `bson:"title"`
	Text      string     `bson:"text"`
	ImageURLs []string   `bson:"imageUrls"`
	AuthorID  string     `bson:"authorId"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt,omitempty"`
}

func newsToDocument(news *models.News) *NewsDocument {
	return &NewsDocument{
		ID:        news.ID.String(),
		Title:     news.Title,
		Text:      news.Text,
		ImageURLs: news.ImageURLs,
		AuthorID:  news.AuthorID.String(),
		CreatedAt: news.CreatedAt,
		UpdatedAt: news.UpdatedAt,
	}
}

func newsDocumentToModel(doc *NewsDocument) (*models.News, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid news ID: %v", err)
	}
	authorID, err := uuid.Parse(doc.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("invalid news author ID: %v", err)
	}

	return &models.News{
		ID:        id,
		Title:     doc.Title,
		Text:      doc.Text,
		ImageURLs: doc.ImageURLs,
		AuthorID:  authorID,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// SaveNews creates or updates a news item
func (m *MongoDB) SaveNews(ctx context.Context, news *models.News) error {
	doc := newsToDocument(news)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.News.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetNews retrieves a news item by ID
func (m *MongoDB) GetNews(ctx context.Context, id uuid.UUID) (*models.News, error) {
	var doc NewsDocument

	err := m.News.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrNewsNotFound, "News item not found", err)
	}
	if err != nil {
		return nil, err
	}

	return newsDocumentToModel(&doc)
}

// ListNews returns a newest-first page of news items plus the total count.
func (m *MongoDB) ListNews(ctx context.Context, limit, offset int) ([]*models.News, int, error) {
	total, err := m.News.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count news: %v", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := m.News.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("news query failed: %v", err)
	}
	defer cursor.Close(ctx)

	var items []*models.News
	for cursor.Next(ctx) {
		var doc NewsDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("Error decoding news document: %v", err)
			continue
		}

		item, err := newsDocumentToModel(&doc)
		if err != nil {
			log.Printf("Error converting news document to model: %v", err)
			continue
		}
		items = append(items, item)
	}

	return items, int(total), cursor.Err()
}

// DeleteNews removes a news item
func (m *MongoDB) DeleteNews(ctx context.Context, id uuid.UUID) error {
	result, err := m.News.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return utils.NewAppError(utils.ErrNewsNotFound, "News item not found", nil)
	}
	return nil
}
