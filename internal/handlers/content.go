package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"live-service/internal/livebus"
	"live-service/internal/models"
	"live-service/internal/repositories"
	"live-service/internal/sample"
)

const (
	defaultSampleLimit = 12
	maxSampleLimit     = 100
	samplePoolLimit    = 8000
)

// ContentHandler exposes the content event stream and random sample reads.
type ContentHandler struct {
	bus       *livebus.Bus
	cache     *sample.Cache
	content   repositories.ContentRepository
	heartbeat time.Duration
}

// NewContentHandler builds a ContentHandler.
func NewContentHandler(bus *livebus.Bus, cache *sample.Cache, content repositories.ContentRepository, heartbeat time.Duration) *ContentHandler {
	return &ContentHandler{bus: bus, cache: cache, content: content, heartbeat: heartbeat}
}

// Stream pushes content mutation events over a long-lived event stream.
func (h *ContentHandler) Stream(c *gin.Context) {
	events := make(chan models.LiveContentEvent, 16)
	unsubscribe := h.bus.Subscribe(func(event models.LiveContentEvent) {
		select {
		case events <- event:
		default:
		}
	})
	defer unsubscribe()

	sseHeaders(c)
	writeSSEEvent(c, "ready", gin.H{"at": time.Now().UTC()})

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case event := <-events:
			writeSSEEvent(c, "content", event)
		case <-ticker.C:
			writeSSEHeartbeat(c)
		}
	}
}

// Sample returns random eligible ids for a content kind.
func (h *ContentHandler) Sample(c *gin.Context) {
	kind := models.ContentKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown content kind"})
		return
	}

	limit := defaultSampleLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxSampleLimit {
		limit = maxSampleLimit
	}

	loader := func(ctx context.Context) ([]string, error) {
		return h.content.ListEligibleIDs(ctx, kind, samplePoolLimit)
	}
	ids, err := h.cache.SampleIDs(c.Request.Context(), kind, limit, loader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sample"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}
