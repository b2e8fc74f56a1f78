package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"feed-service/internal/models"
)

func TestShouldAutoScrollNearNewest(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	anchor := NewScrollAnchor(cache)

	// Offset -10 sits well within the threshold of the newest message.
	anchor.SetOffset(-10)
	require.True(t, cache.ApplyLiveEvent(CreatedEvent(testMessage("m4", 0))))
	assert.True(t, anchor.ShouldAutoScroll())

	anchor.SetOffset(-500)
	assert.False(t, anchor.ShouldAutoScroll(), "scrolled into history, do not yank the view")

	anchor.SetOffset(ScrollThreshold)
	assert.True(t, anchor.ShouldAutoScroll(), "threshold itself still auto-scrolls")
}

func TestShouldFetchMore(t *testing.T) {
	fetcher := new(fetcherMock)
	cache := NewCache("room-1", fetcher, 3)
	anchor := NewScrollAnchor(cache)

	assert.False(t, anchor.ShouldFetchMore(false), "sentinel not visible")
	assert.True(t, anchor.ShouldFetchMore(true))

	fetcher.On("FetchPage", mock.Anything, "room-1", "", 3).Return(models.Page{
		Items: []models.Message{testMessage("m1", time.Minute)},
	}, nil).Once()
	_, err := cache.FetchNextPage(context.Background())
	require.NoError(t, err)

	assert.False(t, anchor.ShouldFetchMore(true), "exhausted feed never fetches")
	fetcher.AssertExpectations(t)
}

func TestShouldFetchMoreSuppressedWhileFetching(t *testing.T) {
	fetcher := &blockingFetcher{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		page:    models.Page{Items: []models.Message{testMessage("m1", time.Minute)}},
	}
	cache := NewCache("room-1", fetcher, 3)
	anchor := NewScrollAnchor(cache)

	done := make(chan error, 1)
	go func() {
		_, err := cache.FetchNextPage(context.Background())
		done <- err
	}()
	<-fetcher.entered

	assert.False(t, anchor.ShouldFetchMore(true), "in-flight fetch suppresses the trigger")

	close(fetcher.release)
	require.NoError(t, <-done)
}
