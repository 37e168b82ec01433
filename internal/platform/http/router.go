package http

import "github.com/gin-gonic/gin"

// Register registers the platform passthrough routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/simulations/:project_id/start", h.StartSimulation)
	rg.POST("/simulations/:project_id/stop", h.StopSimulation)
	rg.POST("/devices/:device_id/retry", h.RetryDevice)
	rg.GET("/devices", h.ListDevices)
	rg.GET("/target-systems", h.ListTargets)
}
