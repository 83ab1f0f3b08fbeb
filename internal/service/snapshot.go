package service

import (
	"sync"

	"github.com/listenupapp/binderkeep/internal/domain"
)

// SnapshotCache holds the last good binder list per user, for painting a screen before
// the next real load completes. It is never a source of truth: entries may be stale and
// are replaced after every real load.
//
// Values are deep-copied in and out, so an abandoned caller cannot corrupt the cache.
type SnapshotCache struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.Collection
}

// NewSnapshotCache creates an empty cache.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{byUser: make(map[string][]*domain.Collection)}
}

// Prime seeds the cache for userID at session start. It does nothing when a snapshot
// is already present.
func (c *SnapshotCache) Prime(userID string, collections []*domain.Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byUser[userID]; ok {
		return
	}
	c.byUser[userID] = cloneAll(collections)
}

// Store replaces the snapshot of userID with the result of a real load.
func (c *SnapshotCache) Store(userID string, collections []*domain.Collection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byUser[userID] = cloneAll(collections)
}

// Peek returns the snapshot of userID, if any.
func (c *SnapshotCache) Peek(userID string) ([]*domain.Collection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cols, ok := c.byUser[userID]
	if !ok {
		return nil, false
	}
	return cloneAll(cols), true
}

// Invalidate drops the snapshot of userID.
func (c *SnapshotCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byUser, userID)
}

func cloneAll(collections []*domain.Collection) []*domain.Collection {
	out := make([]*domain.Collection, len(collections))
	for i, c := range collections {
		out[i] = c.Clone()
	}
	return out
}
