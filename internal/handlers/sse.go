package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// sseHeaders prepares a text-event-stream response.
func sseHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
}

// writeSSEEvent emits one named event and flushes it through any
// intermediary buffering.
func writeSSEEvent(c *gin.Context, name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, data)
	c.Writer.Flush()
}

// writeSSEHeartbeat emits a comment-only frame to keep idle proxies from
// closing the stream.
func writeSSEHeartbeat(c *gin.Context) {
	fmt.Fprint(c.Writer, ": ping\n\n")
	c.Writer.Flush()
}
