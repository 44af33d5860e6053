package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"live-service/internal/auth"
	"live-service/internal/models"
	"live-service/internal/presence"
)

// PresenceHandler exposes presence queries and the presence event stream.
type PresenceHandler struct {
	tracker   *presence.Tracker
	auth      *auth.Resolver
	heartbeat time.Duration
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(tracker *presence.Tracker, resolver *auth.Resolver, heartbeat time.Duration) *PresenceHandler {
	return &PresenceHandler{tracker: tracker, auth: resolver, heartbeat: heartbeat}
}

// GetStatus returns the derived status of one user.
func (h *PresenceHandler) GetStatus(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user id"})
		return
	}
	c.JSON(http.StatusOK, h.tracker.StatusOf(userID))
}

// QueryStatuses returns statuses for a batch of user ids. The batch is
// deduplicated and capped server-side.
func (h *PresenceHandler) QueryStatuses(c *gin.Context) {
	var req struct {
		UserIDs []string `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": h.tracker.StatusesOf(req.UserIDs)})
}

// Stream pushes presence transitions to the viewer over a long-lived
// event stream. Setup replays the viewer's own status once, then only
// transitions. The listener and heartbeat timer are released when the
// client aborts the request.
func (h *PresenceHandler) Stream(c *gin.Context) {
	caller, err := h.auth.ResolveCaller(c.Request.Context(), c.Request)
	if err != nil || caller == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
		return
	}

	events := make(chan models.PresenceStatus, 16)
	unsubscribe := h.tracker.Subscribe(func(status models.PresenceStatus) {
		// Slow viewers drop transitions rather than block the tracker.
		select {
		case events <- status:
		default:
		}
	})
	defer unsubscribe()

	sseHeaders(c)
	writeSSEEvent(c, "ready", h.tracker.StatusOf(caller.ID))

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case status := <-events:
			writeSSEEvent(c, "presence", status)
		case <-ticker.C:
			writeSSEHeartbeat(c)
		}
	}
}
