package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"live-service/internal/repositories"
)

const maxHistoryLimit = 100

// ChatHandler exposes read-only chat history.
type ChatHandler struct {
	messages repositories.MessageRepository
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(messages repositories.MessageRepository) *ChatHandler {
	return &ChatHandler{messages: messages}
}

// RecentMessages returns the newest public chat messages.
func (h *ChatHandler) RecentMessages(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	msgs, err := h.messages.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
