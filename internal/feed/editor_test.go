package feed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"feed-service/internal/models"
)

type storeMock struct {
	mock.Mock
}

func (m *storeMock) UpdateMessage(ctx context.Context, roomID string, messageID string, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, messageID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *storeMock) DeleteMessage(ctx context.Context, roomID string, messageID string) error {
	args := m.Called(ctx, roomID, messageID)
	return args.Error(0)
}

func ownedMessage(id string, ownerID string, age time.Duration) models.Message {
	msg := testMessage(id, age)
	msg.OwnerID = ownerID
	return msg
}

func TestStartEditOnlyForOwner(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m2", "bob", 0)))

	editor := NewEditor("room-1", "alice", cache, new(storeMock))

	require.NoError(t, editor.StartEdit("m1"))
	assert.Equal(t, "m1", editor.EditingID())

	err := editor.StartEdit("m2")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, "m1", editor.EditingID(), "failed start leaves the session untouched")

	assert.ErrorIs(t, editor.StartEdit("missing"), ErrMessageNotCached)

	editor.CancelEdit()
	assert.Empty(t, editor.EditingID())
}

func TestStartEditSwitchesTarget(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m2", "alice", 0)))

	editor := NewEditor("room-1", "alice", cache, new(storeMock))
	require.NoError(t, editor.StartEdit("m1"))
	require.NoError(t, editor.StartEdit("m2"))
	assert.Equal(t, "m2", editor.EditingID())
}

func TestSubmitEditValidatesBeforeNetwork(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)

	var validationErr *ValidationError
	assert.ErrorAs(t, editor.SubmitEdit(context.Background(), "m1", ""), &validationErr)
	assert.ErrorAs(t, editor.SubmitEdit(context.Background(), "m1", strings.Repeat("x", 251)), &validationErr)
	store.AssertNotCalled(t, "UpdateMessage")
}

func TestSubmitEditByNonOwnerNeverReachesStore(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "bob", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)

	err := editor.SubmitEdit(context.Background(), "m1", "edited")
	assert.ErrorIs(t, err, ErrNotOwner)
	store.AssertNotCalled(t, "UpdateMessage")

	got, ok := cache.Get("m1")
	require.True(t, ok)
	assert.False(t, got.IsEdited, "cache unchanged")
}

func TestSubmitEditSuccessClosesSessionAndMerges(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)
	require.NoError(t, editor.StartEdit("m1"))

	edited := "edited"
	confirmed := ownedMessage("m1", "alice", time.Minute)
	confirmed.Content = &edited
	confirmed.IsEdited = true
	confirmed.UpdatedAt = baseTime.Add(time.Hour)
	store.On("UpdateMessage", mock.Anything, "room-1", "m1", "edited").Return(confirmed, nil).Once()

	require.NoError(t, editor.SubmitEdit(context.Background(), "m1", "edited"))
	assert.Empty(t, editor.EditingID())

	got, ok := cache.Get("m1")
	require.True(t, ok)
	require.NotNil(t, got.Content)
	assert.Equal(t, "edited", *got.Content)
	assert.True(t, got.IsEdited)

	// Convergence: the live update event arriving afterwards is harmless.
	cache.ApplyLiveEvent(UpdatedEvent("m1", &edited, confirmed.UpdatedAt))
	assert.Equal(t, 1, cache.Len())
	store.AssertExpectations(t)
}

func TestSubmitEditFailureKeepsSessionOpen(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)
	require.NoError(t, editor.StartEdit("m1"))

	store.On("UpdateMessage", mock.Anything, "room-1", "m1", "edited").Return(models.Message{}, assert.AnError).Once()

	err := editor.SubmitEdit(context.Background(), "m1", "edited")
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "m1", editor.EditingID(), "unsaved content must not be discarded")
	store.AssertExpectations(t)
}

func TestDeleteRemovesOptimistically(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)

	store.On("DeleteMessage", mock.Anything, "room-1", "m1").Return(nil).Once()
	require.NoError(t, editor.Delete(context.Background(), "m1"))
	assert.Equal(t, 0, cache.Len())

	// The live delete event converging later is a no-op.
	assert.False(t, cache.ApplyLiveEvent(DeletedEvent("m1")))
	store.AssertExpectations(t)
}

func TestDeleteByNonOwnerNeverReachesStore(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "bob", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)

	assert.ErrorIs(t, editor.Delete(context.Background(), "m1"), ErrNotOwner)
	assert.Equal(t, 1, cache.Len())
	store.AssertNotCalled(t, "DeleteMessage")
}

func TestDeleteFailureKeepsItem(t *testing.T) {
	cache := NewCache("room-1", nil, 3)
	cache.ApplyLiveEvent(CreatedEvent(ownedMessage("m1", "alice", time.Minute)))
	store := new(storeMock)
	editor := NewEditor("room-1", "alice", cache, store)

	store.On("DeleteMessage", mock.Anything, "room-1", "m1").Return(assert.AnError).Once()
	assert.ErrorIs(t, editor.Delete(context.Background(), "m1"), assert.AnError)
	assert.Equal(t, 1, cache.Len())
	store.AssertExpectations(t)
}
