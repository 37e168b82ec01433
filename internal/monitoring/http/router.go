package http

import "github.com/gin-gonic/gin"

// Register registers the monitoring routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/statuses", h.ListStatuses)
	rg.GET("/statuses/:project_id", h.GetStatus)
	rg.GET("/aggregates", h.GetAggregates)
	rg.GET("/logs", h.ListLogs)
	rg.DELETE("/logs", h.ClearLogs)
	rg.GET("/alerts/:project_id", h.ListAlertHistory)
	rg.GET("/stream", h.StreamChanges)
}
