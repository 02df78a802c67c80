package feed

import (
	"context"
	"fmt"

	"groove-press/internal/models"

	"github.com/google/uuid"
)

// AlbumSource is the slice of the store needed to resolve albums.
type AlbumSource interface {
	GetAlbumsByIDs(ctx context.Context, ids []string) (map[string]*models.Album, error)
}

// AuthorSource is the slice of the store needed to resolve authors.
type AuthorSource interface {
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// Hydrator attaches album and author data to raw review documents using
// batched, deduplicated point-reads. Authors go through a TTL cache since
// one author typically appears on many items of a page.
type Hydrator struct {
	albums  AlbumSource
	authors AuthorSource
	cache   *AuthorCache
}

func NewHydrator(albums AlbumSource, authors AuthorSource) *Hydrator {
	return &Hydrator{
		albums:  albums,
		authors: authors,
		cache:   NewAuthorCache(),
	}
}

// Hydrate populates Album and Author on every review in place. A missing
// album or author document leaves the field nil (rendered as a
// placeholder downstream); only a failed batch read is an error.
func (h *Hydrator) Hydrate(ctx context.Context, reviews []*models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	albumIDs := make([]string, 0, len(reviews))
	seenAlbums := make(map[string]bool)
	for _, review := range reviews {
		if review.AlbumID != "" && !seenAlbums[review.AlbumID] {
			seenAlbums[review.AlbumID] = true
			albumIDs = append(albumIDs, review.AlbumID)
		}
	}

	albums, err := h.albums.GetAlbumsByIDs(ctx, albumIDs)
	if err != nil {
		return fmt.Errorf("failed to hydrate albums: %v", err)
	}

	// Authors: cache hits first, then one batched read for the misses.
	cached := make(map[uuid.UUID]*models.User)
	missing := make([]uuid.UUID, 0)
	seenAuthors := make(map[uuid.UUID]bool)
	for _, review := range reviews {
		if seenAuthors[review.UserID] {
			continue
		}
		seenAuthors[review.UserID] = true
		if user, ok := h.cache.Get(review.UserID); ok {
			cached[review.UserID] = user
		} else {
			missing = append(missing, review.UserID)
		}
	}

	fetched, err := h.authors.GetUsersByIDs(ctx, missing)
	if err != nil {
		return fmt.Errorf("failed to hydrate authors: %v", err)
	}
	for _, user := range fetched {
		h.cache.Put(user)
		cached[user.ID] = user
	}

	for _, review := range reviews {
		review.Album = albums[review.AlbumID]
		if user, ok := cached[review.UserID]; ok {
			review.Author = user.Summary()
		} else {
			review.Author = nil
		}
	}

	return nil
}

// HydrateOne populates a single review.
func (h *Hydrator) HydrateOne(ctx context.Context, review *models.Review) error {
	return h.Hydrate(ctx, []*models.Review{review})
}
