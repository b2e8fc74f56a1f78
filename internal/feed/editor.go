package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"feed-service/internal/models"
)

// MutationStore is the backing-store collaborator for edits and deletes.
type MutationStore interface {
	UpdateMessage(ctx context.Context, roomID string, messageID string, content string) (models.Message, error)
	DeleteMessage(ctx context.Context, roomID string, messageID string) error
}

// Editor tracks the single in-progress edit session for a room and applies
// confirmed mutation results back into the cache. Only the item's author may
// hold the session.
type Editor struct {
	roomID string
	userID string
	cache  *Cache
	store  MutationStore

	mu        sync.Mutex
	editingID string
}

// NewEditor builds an Editor for the given user and room cache.
func NewEditor(roomID string, userID string, cache *Cache, store MutationStore) *Editor {
	return &Editor{roomID: roomID, userID: userID, cache: cache, store: store}
}

// StartEdit opens an edit session on a message. Calling it again simply
// switches the target.
func (e *Editor) StartEdit(messageID string) error {
	msg, ok := e.cache.Get(messageID)
	if !ok {
		return ErrMessageNotCached
	}
	if msg.OwnerID != e.userID {
		return ErrNotOwner
	}

	e.mu.Lock()
	e.editingID = messageID
	e.mu.Unlock()
	return nil
}

// CancelEdit closes the current edit session, if any.
func (e *Editor) CancelEdit() {
	e.mu.Lock()
	e.editingID = ""
	e.mu.Unlock()
}

// EditingID returns the id of the message being edited, or "".
func (e *Editor) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

// SubmitEdit validates the new content, calls the store, and on success
// closes the session and merges the confirmed result locally. The merge is
// idempotent, so converging again via the live update event is safe. On
// failure the session stays open so unsaved content is not discarded.
func (e *Editor) SubmitEdit(ctx context.Context, messageID string, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}

	msg, ok := e.cache.Get(messageID)
	if !ok {
		return ErrMessageNotCached
	}
	if msg.OwnerID != e.userID {
		return ErrNotOwner
	}

	updated, err := e.store.UpdateMessage(ctx, e.roomID, messageID, content)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.editingID == messageID {
		e.editingID = ""
	}
	e.mu.Unlock()

	e.cache.ApplyLiveEvent(UpdatedEvent(messageID, updated.Content, updated.UpdatedAt))
	return nil
}

// Delete removes a message via the store with an optimistic local removal.
// The live delete event converging later is a no-op.
func (e *Editor) Delete(ctx context.Context, messageID string) error {
	msg, ok := e.cache.Get(messageID)
	if !ok {
		return ErrMessageNotCached
	}
	if msg.OwnerID != e.userID {
		return ErrNotOwner
	}

	if err := e.store.DeleteMessage(ctx, e.roomID, messageID); err != nil {
		return err
	}

	e.cache.ApplyLiveEvent(LiveEvent{Kind: models.EventMessageDelete, At: time.Now(), Delete: models.DeletePayload{ID: messageID}})

	e.mu.Lock()
	if e.editingID == messageID {
		e.editingID = ""
	}
	e.mu.Unlock()
	return nil
}

func validateContent(content string) error {
	n := len([]rune(content))
	if n < 1 {
		return &ValidationError{Reason: "message must be at least 1 character"}
	}
	if n > models.MaxContentLength {
		return &ValidationError{Reason: fmt.Sprintf("message cannot exceed %d characters", models.MaxContentLength)}
	}
	return nil
}
