package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"feed-service/internal/middleware"
	"feed-service/internal/models"
	"feed-service/internal/relay"
	"feed-service/internal/repositories"
)

const maxPageLimit = 100

// MessageHandler manages the room feed endpoints.
type MessageHandler struct {
	roomRepo    repositories.RoomRepository
	messageRepo repositories.MessageRepository
	relay       *relay.Relay
	pageLimit   int
}

// NewMessageHandler builds a MessageHandler. pageLimit is the default page
// size for cursor fetches.
func NewMessageHandler(roomRepo repositories.RoomRepository, messageRepo repositories.MessageRepository, eventRelay *relay.Relay, pageLimit int) *MessageHandler {
	return &MessageHandler{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		relay:       eventRelay,
		pageLimit:   pageLimit,
	}
}

// ListMessages returns one newest-first page of the room feed.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	roomID := c.Param("room_id")

	if _, err := h.roomRepo.GetRoom(c.Request.Context(), roomID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}

	limit := h.pageLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed > maxPageLimit {
			parsed = maxPageLimit
		}
		limit = parsed
	}

	page, err := h.messageRepo.ListPage(c.Request.Context(), roomID, c.Query("cursor"), limit)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidCursor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if page.Items == nil {
		page.Items = []models.Message{}
	}

	c.JSON(http.StatusOK, page)
}

// CreateMessage stores a message and relays a message:create event after the
// write commits.
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := c.GetString(middleware.UserIDKey)

	if _, err := h.roomRepo.GetRoom(c.Request.Context(), roomID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}

	var req struct {
		Content     string              `json:"content" binding:"required,min=1,max=250"`
		Attachments []models.Attachment `json:"attachments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.Create(c.Request.Context(), roomID, userID, req.Content, req.Attachments)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.relay.Emit(c.Request.Context(), models.EventMessageCreate, msg, roomID)
	c.JSON(http.StatusCreated, msg)
}

// UpdateMessage edits a message's content. Only the owner may edit, checked
// before the store is touched.
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	roomID := c.Param("room_id")
	messageID := c.Param("message_id")
	userID := c.GetString(middleware.UserIDKey)

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.RoomID != roomID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to room"})
		return
	}
	if msg.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can edit"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=250"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.messageRepo.Update(c.Request.Context(), messageID, req.Content)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update message"})
		return
	}

	h.relay.Emit(c.Request.Context(), models.EventMessageUpdate, models.UpdatePayload{ID: messageID, Content: updated.Content}, roomID)
	c.JSON(http.StatusOK, updated)
}

// DeleteMessage removes a message. Only the owner may delete.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	roomID := c.Param("room_id")
	messageID := c.Param("message_id")
	userID := c.GetString(middleware.UserIDKey)

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.RoomID != roomID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message does not belong to room"})
		return
	}
	if msg.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can delete"})
		return
	}

	if err := h.messageRepo.Delete(c.Request.Context(), messageID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.relay.Emit(c.Request.Context(), models.EventMessageDelete, models.DeletePayload{ID: messageID}, roomID)
	c.Status(http.StatusNoContent)
}
