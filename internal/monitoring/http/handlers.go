package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/repository"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
)

// Handler serves the monitoring read API on top of the status store
type Handler struct {
	store   *store.StatusStore
	history *repository.AlertHistoryRepository // nil when no archive is configured
}

// New creates a new Handler
func New(st *store.StatusStore, history *repository.AlertHistoryRepository) *Handler {
	return &Handler{store: st, history: history}
}

// ListStatuses returns every tracked project status
func (h *Handler) ListStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"statuses": h.store.All()})
}

// GetStatus returns the status of one project
func (h *Handler) GetStatus(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project ID is required"})
		return
	}

	status, ok := h.store.Get(projectID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project status not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GetAggregates returns the derived totals over all tracked projects
func (h *Handler) GetAggregates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"total_active_devices": h.store.TotalActiveDevices(),
		"total_messages_sent":  h.store.TotalMessagesSent(),
	})
}

// ListLogs returns the simulation log, optionally filtered by project
func (h *Handler) ListLogs(c *gin.Context) {
	if projectID := c.Query("project_id"); projectID != "" {
		c.JSON(http.StatusOK, gin.H{"logs": h.store.LogsFor(projectID)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": h.store.Logs()})
}

// ClearLogs empties the simulation log
func (h *Handler) ClearLogs(c *gin.Context) {
	h.store.ClearLog()
	c.JSON(http.StatusOK, gin.H{"message": "logs cleared"})
}

// ListAlertHistory returns archived alerts for one project
func (h *Handler) ListAlertHistory(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert history is not configured"})
		return
	}

	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project ID is required"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.history.ListByProject(c.Request.Context(), projectID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": records})
}
