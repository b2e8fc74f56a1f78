package feed

import (
	"context"
	"sync"

	"feed-service/internal/models"
)

// PageFetcher is the backing-store collaborator for backward pagination.
type PageFetcher interface {
	FetchPage(ctx context.Context, roomID string, cursor string, limit int) (models.Page, error)
}

// Cache holds the locally materialized, newest-first view of one room's
// feed. Pagination appends at the old end, live create events insert at the
// new end; the two paths are position-disjoint, so a single mutex with the
// fetching flag held across the store call keeps both correct. The cache is
// created on room entry and discarded on room exit.
type Cache struct {
	roomID  string
	fetcher PageFetcher
	limit   int

	mu        sync.Mutex
	items     []models.Message
	present   map[string]struct{}
	cursor    *string
	exhausted bool
	fetching  bool
}

// NewCache builds an empty cache for a room.
func NewCache(roomID string, fetcher PageFetcher, limit int) *Cache {
	return &Cache{
		roomID:  roomID,
		fetcher: fetcher,
		limit:   limit,
		present: make(map[string]struct{}),
	}
}

// FetchNextPage loads the next older page and appends it at the tail of the
// flattened sequence. At most one fetch runs at a time; a failure reverts
// the cache to idle and the same trigger can retry.
func (c *Cache) FetchNextPage(ctx context.Context) (models.Page, error) {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return models.Page{}, ErrFetchInFlight
	}
	if c.exhausted {
		c.mu.Unlock()
		return models.Page{}, ErrExhausted
	}
	cursor := ""
	if c.cursor != nil {
		cursor = *c.cursor
	}
	c.fetching = true
	c.mu.Unlock()

	// Live events keep applying while the store call is in flight; they only
	// touch the new end of the sequence.
	page, err := c.fetcher.FetchPage(ctx, c.roomID, cursor, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false
	if err != nil {
		return models.Page{}, &FetchError{Err: err}
	}

	for _, item := range page.Items {
		// A live event that raced the fetch may have already delivered this id.
		if _, ok := c.present[item.ID]; ok {
			continue
		}
		c.present[item.ID] = struct{}{}
		c.items = append(c.items, item)
	}
	c.cursor = page.NextCursor
	if page.NextCursor == nil {
		c.exhausted = true
	}
	return page, nil
}

// ApplyLiveEvent merges one live event into the cache. All merges are
// keyed on the item id and idempotent: duplicate creates and updates or
// deletes for unknown ids are no-ops. Reports whether the cache changed.
func (c *Cache) ApplyLiveEvent(ev LiveEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case models.EventMessageCreate:
		if _, ok := c.present[ev.Message.ID]; ok {
			return false
		}
		// Created events always carry items newer than anything cached, so a
		// head insert preserves createdAt-descending order without resorting.
		c.present[ev.Message.ID] = struct{}{}
		c.items = append([]models.Message{ev.Message}, c.items...)
		return true

	case models.EventMessageUpdate:
		i, ok := c.locate(ev.Update.ID)
		if !ok {
			return false
		}
		if ev.Update.Content != nil {
			c.items[i].Content = ev.Update.Content
		}
		c.items[i].IsEdited = true
		if ev.At.After(c.items[i].UpdatedAt) {
			c.items[i].UpdatedAt = ev.At
		}
		return true

	case models.EventMessageDelete:
		i, ok := c.locate(ev.Delete.ID)
		if !ok {
			return false
		}
		delete(c.present, ev.Delete.ID)
		c.items = append(c.items[:i], c.items[i+1:]...)
		return true
	}
	return false
}

// locate short-circuits on the presence set before scanning for position.
func (c *Cache) locate(id string) (int, bool) {
	if _, ok := c.present[id]; !ok {
		return 0, false
	}
	for i := range c.items {
		if c.items[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Items returns a copy of the flattened newest-first sequence.
func (c *Cache) Items() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns a cached item by id.
func (c *Cache) Get(id string) (models.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.locate(id)
	if !ok {
		return models.Message{}, false
	}
	return c.items[i], true
}

// Len reports the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsExhausted reports whether the oldest page has been loaded.
func (c *Cache) IsExhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhausted
}

// IsFetching reports whether a page fetch is in flight.
func (c *Cache) IsFetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}
