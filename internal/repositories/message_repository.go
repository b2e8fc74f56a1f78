package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"feed-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for room messages.
type MessageRepository interface {
	ListPage(ctx context.Context, roomID string, cursor string, limit int) (models.Page, error)
	Create(ctx context.Context, roomID string, ownerID string, content string, attachments []models.Attachment) (models.Message, error)
	Update(ctx context.Context, messageID string, content string) (models.Message, error)
	Delete(ctx context.Context, messageID string) error
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `m.id, m.room_id, m.owner_id, m.content, m.is_edited, m.created_at, m.updated_at,
        u.id AS "owner.id", u.username AS "owner.username", u.name AS "owner.name",
        u.image AS "owner.image", u.joined_at AS "owner.joined_at"`

// ListPage returns one newest-first page of a room's feed. The cursor points
// at the oldest item of the previous page; an absent next cursor means the
// feed is exhausted.
func (r *MessageRepo) ListPage(ctx context.Context, roomID string, cursor string, limit int) (models.Page, error) {
	cur, err := DecodeCursor(cursor)
	if err != nil {
		return models.Page{}, err
	}

	query := `SELECT ` + messageColumns + `
        FROM messages m
        JOIN users u ON u.id = m.owner_id
        WHERE m.room_id = $1
          AND (
            $2::timestamptz IS NULL
            OR m.created_at < $2
            OR (m.created_at = $2 AND m.id < $3)
          )
        ORDER BY m.created_at DESC, m.id DESC
        LIMIT $4`

	var createdAt, id any
	if cur != nil {
		createdAt = cur.CreatedAt
		id = cur.ID
	}

	// One extra row tells us whether an older page exists.
	var msgs []models.Message
	if err := r.db.SelectContext(ctx, &msgs, query, roomID, createdAt, id, limit+1); err != nil {
		return models.Page{}, fmt.Errorf("list page: %w", err)
	}

	page := models.Page{}
	if len(msgs) > limit {
		msgs = msgs[:limit]
		last := msgs[len(msgs)-1]
		token, err := EncodeCursor(Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		if err != nil {
			return models.Page{}, err
		}
		page.NextCursor = &token
	}

	if err := r.loadAttachments(ctx, msgs); err != nil {
		return models.Page{}, err
	}
	page.Items = msgs
	return page, nil
}

func (r *MessageRepo) loadAttachments(ctx context.Context, msgs []models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	ids := make([]string, 0, len(msgs))
	index := make(map[string]int, len(msgs))
	for i := range msgs {
		msgs[i].Attachments = []models.Attachment{}
		ids = append(ids, msgs[i].ID)
		index[msgs[i].ID] = i
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT message_id, uri, content_type, name
        FROM attachments WHERE message_id = ANY($1) ORDER BY uri`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var messageID string
		var att models.Attachment
		if err := rows.Scan(&messageID, &att.URI, &att.ContentType, &att.Name); err != nil {
			return err
		}
		if i, ok := index[messageID]; ok {
			msgs[i].Attachments = append(msgs[i].Attachments, att)
		}
	}
	return rows.Err()
}

// Create stores a message and its attachments and returns the full row with
// the owner snapshot attached.
func (r *MessageRepo) Create(ctx context.Context, roomID string, ownerID string, content string, attachments []models.Attachment) (models.Message, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Message{}, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO messages (id, room_id, owner_id, content)
        VALUES ($1, $2, $3, $4)`, id, roomID, ownerID, content); err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}

	for _, att := range attachments {
		if _, err := tx.ExecContext(ctx, `INSERT INTO attachments (uri, message_id, content_type, name)
            VALUES ($1, $2, $3, $4)`, att.URI, id, att.ContentType, att.Name); err != nil {
			return models.Message{}, fmt.Errorf("insert attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Message{}, err
	}
	return r.GetMessage(ctx, id)
}

// Update replaces the content of a message, marking it edited. Ownership is
// checked by the caller before the store is touched.
func (r *MessageRepo) Update(ctx context.Context, messageID string, content string) (models.Message, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages
        SET content = $2, is_edited = TRUE, updated_at = NOW()
        WHERE id = $1`, messageID, content)
	if err != nil {
		return models.Message{}, fmt.Errorf("update message: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return models.Message{}, err
	}
	if count == 0 {
		return models.Message{}, ErrMessageNotFound
	}
	return r.GetMessage(ctx, messageID)
}

// Delete removes a message. Attachments cascade.
func (r *MessageRepo) Delete(ctx context.Context, messageID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// GetMessage retrieves a single message with owner snapshot and attachments.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+`
        FROM messages m
        JOIN users u ON u.id = m.owner_id
        WHERE m.id = $1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, err
	}

	one := []models.Message{msg}
	if err := r.loadAttachments(ctx, one); err != nil {
		return models.Message{}, err
	}
	return one[0], nil
}
