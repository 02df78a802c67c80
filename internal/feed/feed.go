// Package feed implements the in-memory half of review retrieval: after
// the store returns the coarse status-filtered set, reviews are hydrated
// with album and author data, filtered, sorted and paginated here. The
// store offers no compound queries, so correctness of every list endpoint
// depends on this package behaving deterministically.
package feed

import (
	"sort"
	"strings"

	"groove-press/internal/models"
)

// Placeholder values rendered when a referenced document is missing.
const (
	UnknownArtist = "Unknown artist"
	UnknownAuthor = "Unknown author"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"

	FilterAll = "all"
)

// Options carries every client-side filter of a paginated review fetch.
type Options struct {
	Status      models.ReviewStatus
	Page        int    // 1-based
	PageSize    int
	Search      string // case-insensitive, matched against album title and artist
	ReleaseType string // "all" or an exact release type
	Rating      string // "all" or an exact rating
	Sort        string // "newest" or "oldest"

	// StaffOnly selects admin-authored reviews; otherwise the feed
	// serves user-authored ones. The discriminator is applied after
	// hydration since the author's role lives on the user document.
	StaffOnly bool

	// AnyAudience disables the staff/community split entirely. The
	// subscription feed sets it: followed authors appear regardless of
	// role.
	AnyAudience bool
}

// Page is one slice of the filtered result set plus the filtered total,
// from which callers compute page counts.
type Page struct {
	Reviews []*models.Review `json:"reviews"`
	Total   int              `json:"total"`
}

// Build applies the audience discriminator, the text/type/rating filters,
// the sort order and the page slice to an already-hydrated review set.
func Build(reviews []*models.Review, opts Options) Page {
	filtered := make([]*models.Review, 0, len(reviews))
	for _, review := range reviews {
		if !opts.AnyAudience && !matchesAudience(review, opts.StaffOnly) {
			continue
		}
		if !matchesSearch(review, opts.Search) {
			continue
		}
		if !matchesReleaseType(review, opts.ReleaseType) {
			continue
		}
		if !matchesRating(review, opts.Rating) {
			continue
		}
		filtered = append(filtered, review)
	}

	sortReviews(filtered, opts.Sort)

	return Page{
		Reviews: paginate(filtered, opts.Page, opts.PageSize),
		Total:   len(filtered),
	}
}

// ExcludeUnresolvedAuthors drops reviews whose author is banned or whose
// author document could not be resolved. Used by the subscription feed;
// the general feed keeps such reviews and renders placeholders instead.
func ExcludeUnresolvedAuthors(reviews []*models.Review) []*models.Review {
	kept := make([]*models.Review, 0, len(reviews))
	for _, review := range reviews {
		if review.Author == nil || review.Author.IsBanned {
			continue
		}
		kept = append(kept, review)
	}
	return kept
}

// matchesAudience keeps admin-authored reviews for the staff feed and
// everything else for the community feed. An unresolvable author counts
// as non-admin.
func matchesAudience(review *models.Review, staffOnly bool) bool {
	isAdmin := review.Author != nil && review.Author.Role == models.RoleAdmin
	return isAdmin == staffOnly
}

func matchesSearch(review *models.Review, search string) bool {
	if search == "" {
		return true
	}
	if review.Album == nil {
		return false
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(review.Album.Title), needle) ||
		strings.Contains(strings.ToLower(review.Album.Artist), needle)
}

func matchesReleaseType(review *models.Review, releaseType string) bool {
	if releaseType == "" || releaseType == FilterAll {
		return true
	}
	return review.Album != nil && string(review.Album.Type) == releaseType
}

func matchesRating(review *models.Review, rating string) bool {
	if rating == "" || rating == FilterAll {
		return true
	}
	return string(review.Rating) == rating
}

func sortReviews(reviews []*models.Review, order string) {
	ascending := order == SortOldest
	sort.SliceStable(reviews, func(i, j int) bool {
		if ascending {
			return reviews[i].CreatedAt.Before(reviews[j].CreatedAt)
		}
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

func paginate(reviews []*models.Review, page, pageSize int) []*models.Review {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	if start >= len(reviews) {
		return []*models.Review{}
	}
	end := start + pageSize
	if end > len(reviews) {
		end = len(reviews)
	}
	return reviews[start:end]
}
