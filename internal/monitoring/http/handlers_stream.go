package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StreamChanges streams status-store changes using Server-Sent Events (SSE).
// Each store mutation produces one event carrying the change kind and, for
// status changes, the fresh project status.
func (h *Handler) StreamChanges(c *gin.Context) {
	// Set SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	// Send initial state
	initialData, _ := json.Marshal(gin.H{"statuses": h.store.All()})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", string(initialData))
	flusher.Flush()

	changes, cancel := h.store.Subscribe()
	defer cancel()

	ctx := c.Request.Context()

	// Keep-alive pings so proxies do not drop idle streams
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case change, open := <-changes:
			if !open {
				return
			}

			payload := gin.H{"change": change}
			if change.ProjectID != "" {
				if status, ok := h.store.Get(change.ProjectID); ok {
					payload["status"] = status
				}
			}

			eventData, _ := json.Marshal(payload)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", change.Kind, string(eventData))
			flusher.Flush()
		}
	}
}
