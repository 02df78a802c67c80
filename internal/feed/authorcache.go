package feed

import (
	"sync"
	"time"

	"groove-press/internal/models"

	"github.com/google/uuid"
)

// authorCacheTTL bounds how stale cached author data may get; role and
// ban changes become visible to feeds within this window at the latest.
const authorCacheTTL = 30 * time.Minute

// AuthorCache avoids redundant user point-reads when many reviews on a
// page share an author.
type AuthorCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]authorEntry
}

type authorEntry struct {
	user    *models.User
	expires time.Time
}

func NewAuthorCache() *AuthorCache {
	return &AuthorCache{
		ttl:     authorCacheTTL,
		entries: make(map[uuid.UUID]authorEntry),
	}
}

// Get returns the cached user if present and not expired.
func (c *AuthorCache) Get(id uuid.UUID) (*models.User, bool) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.user, true
}

// Put stores the user with a fresh TTL.
func (c *AuthorCache) Put(user *models.User) {
	c.mu.Lock()
	c.entries[user.ID] = authorEntry{
		user:    user,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}
