package feed

import (
	"time"

	"feed-service/internal/models"
)

// LiveEvent is a decoded mutation notification delivered out-of-band from
// the request/response path. Merges keyed on the item id are idempotent, so
// duplicate or reordered delivery is safe.
type LiveEvent struct {
	Kind    string
	At      time.Time
	Message models.Message       // message:create
	Update  models.UpdatePayload // message:update
	Delete  models.DeletePayload // message:delete
}

// CreatedEvent builds a message:create live event.
func CreatedEvent(msg models.Message) LiveEvent {
	return LiveEvent{Kind: models.EventMessageCreate, At: msg.CreatedAt, Message: msg}
}

// UpdatedEvent builds a message:update live event.
func UpdatedEvent(id string, content *string, at time.Time) LiveEvent {
	return LiveEvent{Kind: models.EventMessageUpdate, At: at, Update: models.UpdatePayload{ID: id, Content: content}}
}

// DeletedEvent builds a message:delete live event.
func DeletedEvent(id string) LiveEvent {
	return LiveEvent{Kind: models.EventMessageDelete, At: time.Now(), Delete: models.DeletePayload{ID: id}}
}
