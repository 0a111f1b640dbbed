// Package star enforces the per-category cap on featured portfolio items.
package star

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MaxPerCategory is the number of items that may be starred at once in a
// single category.
const MaxPerCategory = 12

// ErrLimitReached is returned when starring would exceed MaxPerCategory.
var ErrLimitReached = errors.New("star limit reached for category")

// Item is the view of a portfolio item the limiter needs.
type Item struct {
	ID         string
	CategoryID string
	Starred    bool
}

// CanStar reports whether item may be toggled. Unstarring is always
// allowed; starring is allowed while the category is under the cap.
func CanStar(item Item, starredInCategory int) bool {
	if item.Starred {
		return true
	}
	return starredInCategory < MaxPerCategory
}

// Store persists star state and derives counts from stored rows.
type Store interface {
	// SetStarred writes the starred flag for an item.
	SetStarred(ctx context.Context, itemID string, starred bool) error

	// StarredCount counts starred items in a category.
	StarredCount(ctx context.Context, categoryID string) (int, error)
}

// Counts tracks starred items per category in memory.
type Counts struct {
	mu sync.RWMutex
	m  map[string]int
}

// NewCounts creates an empty counter set.
func NewCounts() *Counts {
	return &Counts{m: make(map[string]int)}
}

// Get returns the count for a category.
func (c *Counts) Get(categoryID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.m[categoryID]
}

// Set replaces the count for a category.
func (c *Counts) Set(categoryID string, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[categoryID] = max(n, 0)
}

// Adjust moves a category's count by one in the direction of starred,
// never below zero, and returns the new value.
func (c *Counts) Adjust(categoryID string, starred bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.m[categoryID]
	if starred {
		n++
	} else {
		n = max(n-1, 0)
	}
	c.m[categoryID] = n
	return n
}

// Snapshot returns a copy of all counts.
func (c *Counts) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.m))
	for k, v := range c.m {
		out[k] = v
	}
	return out
}

// Limiter gates star mutations against the per-category cap.
type Limiter struct {
	store  Store
	counts *Counts
}

// NewLimiter creates a limiter backed by store.
func NewLimiter(store Store) *Limiter {
	return &Limiter{store: store, counts: NewCounts()}
}

// Counts returns the limiter's in-memory counts.
func (l *Limiter) Counts() *Counts {
	return l.counts
}

// Load derives the counts for the given categories from the store.
func (l *Limiter) Load(ctx context.Context, categoryIDs ...string) error {
	for _, id := range categoryIDs {
		n, err := l.store.StarredCount(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count starred items for %s: %w", id, err)
		}
		l.counts.Set(id, n)
	}
	return nil
}

// CanStar reports whether item may be toggled given the tracked count.
func (l *Limiter) CanStar(item Item) bool {
	return CanStar(item, l.counts.Get(item.CategoryID))
}

// Toggle sets item's starred flag to starred. Starring past the cap is
// refused before the store is called. On a store failure neither the item
// nor the count changes.
func (l *Limiter) Toggle(ctx context.Context, item Item, starred bool) (Item, int, error) {
	if item.Starred == starred {
		return item, l.counts.Get(item.CategoryID), nil
	}
	if starred && !l.CanStar(item) {
		return item, l.counts.Get(item.CategoryID), ErrLimitReached
	}

	if err := l.store.SetStarred(ctx, item.ID, starred); err != nil {
		return item, l.counts.Get(item.CategoryID), fmt.Errorf("failed to update star status: %w", err)
	}

	item.Starred = starred
	return item, l.counts.Adjust(item.CategoryID, starred), nil
}
