package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/alert"
	"github.com/devsim-ops/go-dashboard-backend/internal/monitoring/store"
)

// Handler fronts the platform API for the dashboard: device/target listing
// and simulation control are passthroughs, with store bookkeeping on stop
type Handler struct {
	client  *PlatformClient
	store   *store.StatusStore
	retrier alert.DeviceRetrier
}

// New creates a new Handler
func New(client *PlatformClient, st *store.StatusStore, retrier alert.DeviceRetrier) *Handler {
	if retrier == nil {
		retrier = alert.NoopRetrier{}
	}
	return &Handler{client: client, store: st, retrier: retrier}
}

// StartSimulation starts a project's simulation
func (h *Handler) StartSimulation(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project ID is required"})
		return
	}

	if err := h.client.StartSimulation(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to start simulation: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "simulation started"})
}

// StopSimulation stops a project's simulation and drops its tracked status.
// The next tick will not include the project, so the store entry must go now
// rather than waiting for the mirror to age out.
func (h *Handler) StopSimulation(c *gin.Context) {
	projectID := c.Param("project_id")
	if projectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project ID is required"})
		return
	}

	if err := h.client.StopSimulation(c.Request.Context(), projectID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to stop simulation: " + err.Error()})
		return
	}

	h.store.Remove(projectID)
	c.JSON(http.StatusOK, gin.H{"message": "simulation stopped"})
}

// RetryDevice asks the retry collaborator to reconnect a device
func (h *Handler) RetryDevice(c *gin.Context) {
	deviceID := c.Param("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device ID is required"})
		return
	}

	if err := h.retrier.RetryDevice(c.Request.Context(), deviceID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to retry device: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "device retry requested"})
}

// ListDevices forwards the platform's device list
func (h *Handler) ListDevices(c *gin.Context) {
	body, err := h.client.ListDevices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list devices: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// ListTargets forwards the platform's target system list
func (h *Handler) ListTargets(c *gin.Context) {
	body, err := h.client.ListTargets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to list target systems: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}
