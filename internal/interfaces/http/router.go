// Package http assembles the gin engine serving the REST surface and the
// agent WebSocket endpoint.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helios-home/helios/internal/interfaces/http/handlers"
	agenthandler "github.com/helios-home/helios/internal/interfaces/http/handlers/agent"
	"github.com/helios-home/helios/internal/interfaces/http/middleware"
	sharedconfig "github.com/helios-home/helios/internal/shared/config"
	"github.com/helios-home/helios/internal/shared/logger"
	"github.com/helios-home/helios/internal/shared/utils"
)

// Router wires handlers into the gin engine.
type Router struct {
	engine *gin.Engine

	deviceHandler          *handlers.DeviceHandler
	networkHandler         *handlers.NetworkHandler
	serviceHandler         *handlers.ServiceHandler
	serviceTemplateHandler *handlers.ServiceTemplateHandler
	agentWSHandler         *agenthandler.WSHandler

	logger logger.Interface
}

// NewRouter creates a Router with all handlers attached.
func NewRouter(
	cfg *sharedconfig.ServerConfig,
	deviceHandler *handlers.DeviceHandler,
	networkHandler *handlers.NetworkHandler,
	serviceHandler *handlers.ServiceHandler,
	serviceTemplateHandler *handlers.ServiceTemplateHandler,
	agentWSHandler *agenthandler.WSHandler,
	log logger.Interface,
) *Router {
	gin.SetMode(ginMode(cfg.Mode))
	engine := gin.New()

	r := &Router{
		engine:                 engine,
		deviceHandler:          deviceHandler,
		networkHandler:         networkHandler,
		serviceHandler:         serviceHandler,
		serviceTemplateHandler: serviceTemplateHandler,
		agentWSHandler:         agentWSHandler,
		logger:                 log,
	}
	r.setupRoutes(cfg)
	return r
}

// Engine exposes the underlying engine as an http.Handler.
func (r *Router) Engine() http.Handler {
	return r.engine
}

func (r *Router) setupRoutes(cfg *sharedconfig.ServerConfig) {
	r.engine.Use(middleware.Logger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.CORS(cfg.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/devices", r.deviceHandler.List)
		v1.GET("/network", r.networkHandler.Status)

		v1.GET("/service-templates", r.serviceTemplateHandler.List)

		v1.GET("/services", r.serviceHandler.List)
		v1.POST("/services", r.serviceHandler.Create)
		v1.GET("/services/:service_id/install-script", r.serviceHandler.InstallScript)

		v1.GET("/agents/websocket", r.agentWSHandler.Connect)
	}
}

func ginMode(mode string) string {
	switch mode {
	case "debug", "development":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	}
	return gin.ReleaseMode
}
