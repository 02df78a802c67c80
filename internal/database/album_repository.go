// internal/database/album_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AlbumDocument represents the MongoDB schema for a release. Albums are
// reference data: written once when first reviewed, then only read.
type AlbumDocument struct {
	ID        string    `bson:"_id"`
	Artist    string    `bson:"artist"`
	Title     string    `bson:"title"`
	Type      string    `bson:"type"`
	CoverURL  string    `bson:"coverUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

func albumToDocument(album *models.Album) *AlbumDocument {
	return &AlbumDocument{
		ID:        album.ID,
		Artist:    album.Artist,
		Title:     album.Title,
		Type:      string(album.Type),
		CoverURL:  album.CoverURL,
		CreatedAt: album.CreatedAt,
	}
}

func albumDocumentToModel(doc *AlbumDocument) *models.Album {
	return &models.Album{
		ID:        doc.ID,
		Artist:    doc.Artist,
		Title:     doc.Title,
		Type:      models.ReleaseType(doc.Type),
		CoverURL:  doc.CoverURL,
		CreatedAt: doc.CreatedAt,
	}
}

// SaveAlbum upserts an album document
func (m *MongoDB) SaveAlbum(ctx context.Context, album *models.Album) error {
	doc := albumToDocument(album)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": doc}

	_, err := m.Albums.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAlbum retrieves an album by its id
func (m *MongoDB) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	var doc AlbumDocument

	err := m.Albums.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewAppError(utils.ErrAlbumNotFound, "Album not found: "+id, err)
	}
	if err != nil {
		return nil, err
	}

	return albumDocumentToModel(&doc), nil
}

// GetAlbumsByIDs batch-reads albums for feed hydration. Missing ids are
// absent from the map.
func (m *MongoDB) GetAlbumsByIDs(ctx context.Context, ids []string) (map[string]*models.Album, error) {
	result := make(map[string]*models.Album, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := m.Albums.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to batch-read albums: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc AlbumDocument
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		album := albumDocumentToModel(&doc)
		result[album.ID] = album
	}

	return result, cursor.Err()
}
