package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"feed-service/internal/middleware"
	"feed-service/internal/models"
	"feed-service/internal/repositories"
)

// RoomHandler manages room endpoints.
type RoomHandler struct {
	roomRepo repositories.RoomRepository
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(roomRepo repositories.RoomRepository) *RoomHandler {
	return &RoomHandler{roomRepo: roomRepo}
}

// CreateRoom creates a room owned by the caller.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,min=1,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	room, err := h.roomRepo.CreateRoom(c.Request.Context(), userID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GetRoom returns a single room.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomRepo.GetRoom(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// ListRooms returns all rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomRepo.ListRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}
