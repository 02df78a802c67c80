package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"groove-press/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func makeReview(album *models.Album, author *models.AuthorSummary, rating models.Rating, createdAt time.Time) *models.Review {
	return &models.Review{
		ID:        uuid.New(),
		Rating:    rating,
		Status:    models.StatusApproved,
		CreatedAt: createdAt,
		Album:     album,
		Author:    author,
	}
}

func userAuthor() *models.AuthorSummary {
	return &models.AuthorSummary{ID: uuid.New(), Username: "listener", Role: models.RoleUser}
}

func adminAuthor() *models.AuthorSummary {
	return &models.AuthorSummary{ID: uuid.New(), Username: "staff", Role: models.RoleAdmin}
}

func TestBuildPageSizeNeverExceeded(t *testing.T) {
	base := time.Now()
	var reviews []*models.Review
	for i := 0; i < 17; i++ {
		reviews = append(reviews, makeReview(nil, userAuthor(), models.RatingNeutral, base.Add(time.Duration(i)*time.Minute)))
	}

	page := Build(reviews, Options{Page: 1, PageSize: 5, Sort: SortNewest})
	assert.LessOrEqual(t, len(page.Reviews), 5)
	assert.Equal(t, 17, page.Total)
}

func TestBuildPagesSumToTotal(t *testing.T) {
	base := time.Now()
	var reviews []*models.Review
	for i := 0; i < 23; i++ {
		reviews = append(reviews, makeReview(nil, userAuthor(), models.RatingRecommend, base.Add(time.Duration(i)*time.Second)))
	}

	const pageSize = 7
	seen := 0
	seenIDs := make(map[uuid.UUID]bool)
	for pageNum := 1; ; pageNum++ {
		page := Build(reviews, Options{Page: pageNum, PageSize: pageSize, Sort: SortOldest})
		if len(page.Reviews) == 0 {
			break
		}
		for _, r := range page.Reviews {
			assert.False(t, seenIDs[r.ID], "review served on two pages")
			seenIDs[r.ID] = true
		}
		seen += len(page.Reviews)
	}
	assert.Equal(t, 23, seen)
}

func TestBuildSortOrder(t *testing.T) {
	base := time.Now()
	reviews := []*models.Review{
		makeReview(nil, userAuthor(), models.RatingNeutral, base.Add(2*time.Hour)),
		makeReview(nil, userAuthor(), models.RatingNeutral, base),
		makeReview(nil, userAuthor(), models.RatingNeutral, base.Add(time.Hour)),
	}

	newest := Build(reviews, Options{Page: 1, PageSize: 10, Sort: SortNewest})
	for i := 1; i < len(newest.Reviews); i++ {
		assert.False(t, newest.Reviews[i-1].CreatedAt.Before(newest.Reviews[i].CreatedAt))
	}

	oldest := Build(reviews, Options{Page: 1, PageSize: 10, Sort: SortOldest})
	for i := 1; i < len(oldest.Reviews); i++ {
		assert.False(t, oldest.Reviews[i-1].CreatedAt.After(oldest.Reviews[i].CreatedAt))
	}
}

func TestBuildSearchMatchesAlbumTitleAndArtist(t *testing.T) {
	now := time.Now()
	ok1 := makeReview(&models.Album{ID: "a1", Title: "Blue Train", Artist: "John Coltrane", Type: models.ReleaseAlbum}, userAuthor(), models.RatingRecommend, now)
	ok2 := makeReview(&models.Album{ID: "a2", Title: "Giant Steps", Artist: "JOHN COLTRANE", Type: models.ReleaseAlbum}, userAuthor(), models.RatingNeutral, now)
	miss := makeReview(&models.Album{ID: "a3", Title: "Kind of Blue", Artist: "Miles Davis", Type: models.ReleaseAlbum}, userAuthor(), models.RatingRecommend, now)
	noAlbum := makeReview(nil, userAuthor(), models.RatingRecommend, now)

	page := Build([]*models.Review{ok1, ok2, miss, noAlbum}, Options{Page: 1, PageSize: 10, Search: "coltrane"})
	assert.Equal(t, 2, page.Total)
}

func TestBuildTypeAndRatingFilters(t *testing.T) {
	now := time.Now()
	ep := makeReview(&models.Album{ID: "e", Type: models.ReleaseEP}, userAuthor(), models.RatingRecommend, now)
	album := makeReview(&models.Album{ID: "l", Type: models.ReleaseAlbum}, userAuthor(), models.RatingNotRecommend, now)

	byType := Build([]*models.Review{ep, album}, Options{Page: 1, PageSize: 10, ReleaseType: "ep"})
	assert.Equal(t, 1, byType.Total)
	assert.Equal(t, ep.ID, byType.Reviews[0].ID)

	byRating := Build([]*models.Review{ep, album}, Options{Page: 1, PageSize: 10, Rating: string(models.RatingNotRecommend)})
	assert.Equal(t, 1, byRating.Total)
	assert.Equal(t, album.ID, byRating.Reviews[0].ID)

	all := Build([]*models.Review{ep, album}, Options{Page: 1, PageSize: 10, ReleaseType: FilterAll, Rating: FilterAll})
	assert.Equal(t, 2, all.Total)
}

func TestBuildAudienceDiscriminator(t *testing.T) {
	now := time.Now()
	community := makeReview(nil, userAuthor(), models.RatingNeutral, now)
	staff := makeReview(nil, adminAuthor(), models.RatingNeutral, now)
	orphan := makeReview(nil, nil, models.RatingNeutral, now) // author unresolvable

	communityPage := Build([]*models.Review{community, staff, orphan}, Options{Page: 1, PageSize: 10})
	assert.Equal(t, 2, communityPage.Total, "orphan counts as user-authored")

	staffPage := Build([]*models.Review{community, staff, orphan}, Options{Page: 1, PageSize: 10, StaffOnly: true})
	assert.Equal(t, 1, staffPage.Total)
	assert.Equal(t, staff.ID, staffPage.Reviews[0].ID)
}

func TestExcludeUnresolvedAuthors(t *testing.T) {
	now := time.Now()
	ok := makeReview(nil, userAuthor(), models.RatingNeutral, now)
	banned := makeReview(nil, &models.AuthorSummary{ID: uuid.New(), Username: "troll", Role: models.RoleUser, IsBanned: true}, models.RatingNeutral, now)
	orphan := makeReview(nil, nil, models.RatingNeutral, now)

	kept := ExcludeUnresolvedAuthors([]*models.Review{ok, banned, orphan})
	assert.Len(t, kept, 1)
	assert.Equal(t, ok.ID, kept[0].ID)
}

func TestPaginateOutOfRangePage(t *testing.T) {
	now := time.Now()
	reviews := []*models.Review{makeReview(nil, userAuthor(), models.RatingNeutral, now)}

	page := Build(reviews, Options{Page: 99, PageSize: 10})
	assert.Empty(t, page.Reviews)
	assert.Equal(t, 1, page.Total)
}

func TestAuthorCacheExpiry(t *testing.T) {
	cache := &AuthorCache{ttl: 10 * time.Millisecond, entries: make(map[uuid.UUID]authorEntry)}
	user := &models.User{ID: uuid.New(), Username: "cached"}

	cache.Put(user)
	got, ok := cache.Get(user.ID)
	assert.True(t, ok)
	assert.Equal(t, "cached", got.Username)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get(user.ID)
	assert.False(t, ok, "entry should expire after the TTL")
}

// fake sources for hydration tests

type fakeAlbums struct {
	albums map[string]*models.Album
	calls  int
}

func (f *fakeAlbums) GetAlbumsByIDs(_ context.Context, ids []string) (map[string]*models.Album, error) {
	f.calls++
	out := make(map[string]*models.Album)
	for _, id := range ids {
		if a, ok := f.albums[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type fakeAuthors struct {
	users map[uuid.UUID]*models.User
	calls int
	asked []uuid.UUID
}

func (f *fakeAuthors) GetUsersByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	f.calls++
	f.asked = append(f.asked, ids...)
	out := make(map[uuid.UUID]*models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func TestHydrateAttachesAlbumAndAuthor(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "critic", Role: models.RoleUser}
	album := &models.Album{ID: "alb-1", Title: "Horses", Artist: "Patti Smith", Type: models.ReleaseAlbum}

	albums := &fakeAlbums{albums: map[string]*models.Album{album.ID: album}}
	authors := &fakeAuthors{users: map[uuid.UUID]*models.User{author.ID: author}}
	h := NewHydrator(albums, authors)

	review := &models.Review{ID: uuid.New(), AlbumID: album.ID, UserID: author.ID}
	missingBoth := &models.Review{ID: uuid.New(), AlbumID: "gone", UserID: uuid.New()}

	err := h.Hydrate(context.Background(), []*models.Review{review, missingBoth})
	assert.NoError(t, err)

	assert.Equal(t, "Horses", review.Album.Title)
	assert.Equal(t, "critic", review.Author.Username)

	// Missing references degrade to nil, not an error.
	assert.Nil(t, missingBoth.Album)
	assert.Nil(t, missingBoth.Author)
}

func TestHydrateDeduplicatesAndCachesAuthors(t *testing.T) {
	author := &models.User{ID: uuid.New(), Username: "prolific", Role: models.RoleUser}
	authors := &fakeAuthors{users: map[uuid.UUID]*models.User{author.ID: author}}
	h := NewHydrator(&fakeAlbums{albums: map[string]*models.Album{}}, authors)

	var reviews []*models.Review
	for i := 0; i < 5; i++ {
		reviews = append(reviews, &models.Review{ID: uuid.New(), AlbumID: fmt.Sprintf("a-%d", i), UserID: author.ID})
	}

	assert.NoError(t, h.Hydrate(context.Background(), reviews))
	assert.Len(t, authors.asked, 1, "shared author requested once per batch")

	// Second hydration is served from the cache.
	assert.NoError(t, h.Hydrate(context.Background(), reviews))
	assert.Len(t, authors.asked, 1)
	for _, r := range reviews {
		assert.Equal(t, "prolific", r.Author.Username)
	}
}
