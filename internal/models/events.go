package models

// Event names carried in the envelope and re-emitted on per-room channels.
const (
	EventMessageCreate = "message:create"
	EventMessageUpdate = "message:update"
	EventMessageDelete = "message:delete"
)

// Envelope is the wire format published to the broker. Room routing happens
// downstream; the broker queue itself is deployment-wide.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	RoomID  string `json:"roomId"`
}

// UpdatePayload is the payload for message:update events.
type UpdatePayload struct {
	ID      string  `json:"id"`
	Content *string `json:"content,omitempty"`
}

// DeletePayload is the payload for message:delete events.
type DeletePayload struct {
	ID string `json:"id"`
}
