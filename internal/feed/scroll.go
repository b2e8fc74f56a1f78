package feed

import "sync"

// ScrollThreshold is negative because the feed renders in a reversed,
// newest-first layout: offsets at or above it mean the user sits within
// threshold distance of the newest message.
const ScrollThreshold = -350

// ScrollAnchor derives auto-scroll and backward-pagination decisions from
// the current scroll offset and sentinel visibility. It carries no rendering
// concerns; callers feed it scroll ticks and read it after cache mutations.
type ScrollAnchor struct {
	cache *Cache

	mu     sync.Mutex
	offset int
}

// NewScrollAnchor builds an anchor over the room's cache.
func NewScrollAnchor(cache *Cache) *ScrollAnchor {
	return &ScrollAnchor{cache: cache}
}

// SetOffset records the latest scroll position. Called on every scroll tick.
func (a *ScrollAnchor) SetOffset(offset int) {
	a.mu.Lock()
	a.offset = offset
	a.mu.Unlock()
}

// Offset returns the last recorded scroll position.
func (a *ScrollAnchor) Offset() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

// ShouldAutoScroll reports whether a newly inserted message should scroll
// the view to the newest end. Read immediately after applying a create
// event; staleness is bounded by one scroll tick.
func (a *ScrollAnchor) ShouldAutoScroll() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset >= ScrollThreshold
}

// ShouldFetchMore reports whether the sentinel past the oldest loaded item
// becoming visible should trigger backward pagination. Suppressed while a
// fetch is in flight or once the feed is exhausted.
func (a *ScrollAnchor) ShouldFetchMore(sentinelVisible bool) bool {
	return sentinelVisible && !a.cache.IsFetching() && !a.cache.IsExhausted()
}
