package models

import "time"

// MaxContentLength is the longest message content accepted anywhere in the
// system; enforced client-side before any network call and again by the API.
const MaxContentLength = 250

// Attachment describes a file attached to a message. Attachments are
// immutable once the message exists.
type Attachment struct {
	URI         string `db:"uri" json:"uri"`
	ContentType string `db:"content_type" json:"content_type"`
	Name        string `db:"name" json:"name"`
}

// Owner is a denormalized snapshot of the message author.
type Owner struct {
	ID       string    `db:"id" json:"id"`
	Username string    `db:"username" json:"username"`
	Name     *string   `db:"name" json:"name,omitempty"`
	Image    *string   `db:"image" json:"image,omitempty"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// Message represents one item in a room's feed.
type Message struct {
	ID          string       `db:"id" json:"id"`
	RoomID      string       `db:"room_id" json:"room_id"`
	OwnerID     string       `db:"owner_id" json:"owner_id"`
	Content     *string      `db:"content" json:"content"`
	IsEdited    bool         `db:"is_edited" json:"is_edited"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
	Attachments []Attachment `json:"attachments"`
	Owner       Owner        `json:"owner"`
}

// Page is one contiguous, newest-first slice of a room's feed. NextCursor is
// absent when the fetch reached the oldest message.
type Page struct {
	Items      []Message `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}
