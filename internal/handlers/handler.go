package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"workorder_dashboard/internal/logger"
	"workorder_dashboard/internal/service"
)

// Handler wires the HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Browser push (HTTP upgrade) on the same port
	router.GET("/ws/workorders/:id", h.wsWorkOrder)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerStreamRoutes(api)
		h.registerWorkOrderRoutes(api)
	}
}

func (h *Handler) registerStreamRoutes(api *gin.RouterGroup) {
	// Global stream operations
	api.DELETE("/streams", h.disconnectAll)

	stream := api.Group("/workorders/:id/stream")
	{
		stream.POST("", h.connectStream)
		stream.DELETE("", h.disconnectStream)
		stream.POST("/reconnect", h.reconnectStream)
		stream.GET("/state", h.streamState)
	}
}

func (h *Handler) registerWorkOrderRoutes(api *gin.RouterGroup) {
	orders := api.Group("/workorders/:id")
	{
		orders.GET("/logs", h.getLogs)
		orders.DELETE("/logs", h.clearLogs)
		orders.GET("/progress", h.getProgress)
	}
}

// @Summary      Health check
// @Tags         meta
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
