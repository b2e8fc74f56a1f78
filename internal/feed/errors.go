package feed

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchInFlight rejects a page fetch while another one is running.
	ErrFetchInFlight = errors.New("page fetch already in flight")
	// ErrExhausted rejects a page fetch once the oldest page was loaded.
	ErrExhausted = errors.New("feed exhausted")
	// ErrNotOwner rejects an edit or delete by anyone but the item's author,
	// before any network call is made.
	ErrNotOwner = errors.New("not the message owner")
	// ErrMessageNotCached reports an edit target missing from the cache.
	ErrMessageNotCached = errors.New("message not in cache")
)

// FetchError wraps a failed page fetch. The cache reverts to idle, prior
// content stays intact, and the same trigger can retry.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ValidationError reports a content constraint violation detected before any
// network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}
