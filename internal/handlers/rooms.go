package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"live-service/internal/ws"
)

// RoomHandler exposes actor-mode room queries.
type RoomHandler struct {
	rooms *ws.RoomManager
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms *ws.RoomManager) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// OnlineCount reports a room's distinct-user online count without opening
// a socket.
func (h *RoomHandler) OnlineCount(c *gin.Context) {
	room := c.Param("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"online_count": h.rooms.OnlineCount(room)})
}
