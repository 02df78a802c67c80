package actors

import (
	"context"
	"sort"
	"sync"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/google/uuid"
)

// memStore is an in-memory database.Store used by the actor tests. It
// mirrors the error codes the MongoDB repositories return so the actors
// behave the same way against it.
type memStore struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*models.User
	albums        map[string]*models.Album
	reviews       map[uuid.UUID]*models.Review
	comments      map[uuid.UUID]*models.Comment
	news          map[uuid.UUID]*models.News
	subscriptions map[uuid.UUID]*models.Subscription
	readMarks     map[uuid.UUID]map[uuid.UUID]bool // userID -> reviewID set
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uuid.UUID]*models.User),
		albums:        make(map[string]*models.Album),
		reviews:       make(map[uuid.UUID]*models.Review),
		comments:      make(map[uuid.UUID]*models.Comment),
		news:          make(map[uuid.UUID]*models.News),
		subscriptions: make(map[uuid.UUID]*models.Subscription),
		readMarks:     make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *memStore) Close(ctx context.Context) error { return nil }

// User methods

func (s *memStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found: "+email, nil)
}

func (s *memStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found: "+username, nil)
}

func (s *memStore) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID]*models.User, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			copied := *user
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *memStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memStore) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *memStore) SetUserBan(ctx context.Context, id uuid.UUID, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.IsBanned = banned
	return nil
}

func (s *memStore) SetUserRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.Role = role
	return nil
}

func (s *memStore) SetSubscriptionCounters(ctx context.Context, id uuid.UUID, subscribers, subscriptions int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.SubscribersCount = subscribers
	user.SubscriptionsCount = subscriptions
	return nil
}

func (s *memStore) IncrementSubscribers(ctx context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.SubscribersCount += delta
	return nil
}

func (s *memStore) IncrementSubscriptions(ctx context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.SubscriptionsCount += delta
	return nil
}

func (s *memStore) IncrementReadCount(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.ReadReviews++
	return nil
}

func (s *memStore) CountUsers(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

// Album methods

func (s *memStore) GetAlbum(ctx context.Context, id string) (*models.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	album, ok := s.albums[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrAlbumNotFound, "Album not found: "+id, nil)
	}
	copied := *album
	return &copied, nil
}

func (s *memStore) GetAlbumsByIDs(ctx context.Context, ids []string) (map[string]*models.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.Album, len(ids))
	for _, id := range ids {
		if album, ok := s.albums[id]; ok {
			copied := *album
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *memStore) SaveAlbum(ctx context.Context, album *models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *album
	s.albums[album.ID] = &copied
	return nil
}

// Review methods

func (s *memStore) SaveReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *review
	copied.Album = nil
	copied.Author = nil
	s.reviews[review.ID] = &copied
	return nil
}

func (s *memStore) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.reviews[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	copied := *review
	return &copied, nil
}

func (s *memStore) DeleteReview(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
	return nil
}

func (s *memStore) GetReviewsByStatus(ctx context.Context, status models.ReviewStatus) ([]*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Review
	for _, review := range s.reviews {
		if review.Status == status {
			copied := *review
			out = append(out, &copied)
		}
	}
	sortReviews(out)
	return out, nil
}

func (s *memStore) GetReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Review
	for _, review := range s.reviews {
		if review.UserID == authorID {
			copied := *review
			out = append(out, &copied)
		}
	}
	sortReviews(out)
	return out, nil
}

func (s *memStore) GetApprovedReviewsByAuthors(ctx context.Context, authorIDs []uuid.UUID) ([]*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[uuid.UUID]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}
	var out []*models.Review
	for _, review := range s.reviews {
		if review.Status == models.StatusApproved && wanted[review.UserID] {
			copied := *review
			out = append(out, &copied)
		}
	}
	sortReviews(out)
	return out, nil
}

func (s *memStore) UpdateReviewStatus(ctx context.Context, id uuid.UUID, status models.ReviewStatus, rejectReason, moderationComment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[id]
	if !ok {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	review.Status = status
	review.RejectReason = rejectReason
	review.ModerationComment = moderationComment
	return nil
}

func (s *memStore) UpdateReviewReactions(ctx context.Context, id uuid.UUID, reactions models.Reactions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[id]
	if !ok {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	review.Reactions = reactions
	return nil
}

func (s *memStore) IncrementReviewViews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[id]
	if !ok {
		return utils.NewAppError(utils.ErrReviewNotFound, "Review not found", nil)
	}
	review.UniqueViews++
	return nil
}

func (s *memStore) CountReviews(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews), nil
}

// Read markers

func (s *memStore) HasReadReview(ctx context.Context, userID, reviewID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMarks[userID][reviewID], nil
}

func (s *memStore) MarkReviewRead(ctx context.Context, userID, reviewID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readMarks[userID] == nil {
		s.readMarks[userID] = make(map[uuid.UUID]bool)
	}
	s.readMarks[userID][reviewID] = true
	return nil
}

// Comment methods

func (s *memStore) SaveComment(ctx context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *comment
	copied.Replies = append([]models.Reply(nil), comment.Replies...)
	s.comments[comment.ID] = &copied
	return nil
}

func (s *memStore) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comment, ok := s.comments[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrCommentNotFound, "Comment not found", nil)
	}
	copied := *comment
	copied.Replies = append([]models.Reply(nil), comment.Replies...)
	return &copied, nil
}

func (s *memStore) GetReviewComments(ctx context.Context, reviewID uuid.UUID) ([]*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Comment
	for _, comment := range s.comments {
		if comment.ReviewID == reviewID {
			copied := *comment
			copied.Replies = append([]models.Reply(nil), comment.Replies...)
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) DeleteComment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.comments, id)
	return nil
}

func (s *memStore) CountComments(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments), nil
}

// News methods

func (s *memStore) SaveNews(ctx context.Context, news *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *news
	copied.ImageURLs = append([]string(nil), news.ImageURLs...)
	s.news[news.ID] = &copied
	return nil
}

func (s *memStore) GetNews(ctx context.Context, id uuid.UUID) (*models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	news, ok := s.news[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrNewsNotFound, "News item not found", nil)
	}
	copied := *news
	copied.ImageURLs = append([]string(nil), news.ImageURLs...)
	return &copied, nil
}

func (s *memStore) ListNews(ctx context.Context, limit, offset int) ([]*models.News, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*models.News, 0, len(s.news))
	for _, news := range s.news {
		copied := *news
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset >= total {
		return []*models.News{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (s *memStore) DeleteNews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.news, id)
	return nil
}

// Subscription methods

func (s *memStore) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sub
	s.subscriptions[sub.ID] = &copied
	return nil
}

func (s *memStore) GetSubscription(ctx context.Context, subscriberID, targetID uuid.UUID) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscriptions {
		if sub.SubscriberID == subscriberID && sub.TargetUserID == targetID {
			copied := *sub
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrNotSubscribed, "No subscription found", nil)
}

func (s *memStore) DeleteSubscription(ctx context.Context, subscriberID, targetID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subscriptions {
		if sub.SubscriberID == subscriberID && sub.TargetUserID == targetID {
			delete(s.subscriptions, id)
			return nil
		}
	}
	return utils.NewAppError(utils.ErrNotSubscribed, "No subscription found", nil)
}

func (s *memStore) GetSubscriptionsBySubscriber(ctx context.Context, subscriberID uuid.UUID) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Subscription
	for _, sub := range s.subscriptions {
		if sub.SubscriberID == subscriberID {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memStore) GetSubscribersOfUser(ctx context.Context, targetID uuid.UUID) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Subscription
	for _, sub := range s.subscriptions {
		if sub.TargetUserID == targetID {
			copied := *sub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *memStore) CountSubscriptions(ctx context.Context, subscriberID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sub := range s.subscriptions {
		if sub.SubscriberID == subscriberID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) CountSubscribers(ctx context.Context, targetID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sub := range s.subscriptions {
		if sub.TargetUserID == targetID {
			count++
		}
	}
	return count, nil
}

func sortReviews(reviews []*models.Review) {
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}
