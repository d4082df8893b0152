package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the session API on router
func (h *Handlers) Register(router gin.IRouter) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	router.GET("/session", h.GetSession)
	router.POST("/session/new", h.NewSession)
	router.POST("/session/save", h.SaveSession)
	router.POST("/session/open", h.OpenSession)

	router.GET("/networks", h.ListNetworks)
	router.GET("/networks/:suid/summary", h.GetNetworkSummary)
	router.GET("/styles", h.ListStyles)
	router.GET("/tables", h.ListTables)

	router.GET("/metrics/json", h.MetricsJSON)
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}
