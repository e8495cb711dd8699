package handlers

import (
	"net/http"

	"github.com/alimgiray/teampresence/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RouterConfig holds what the router needs to serve requests
type RouterConfig struct {
	Presence       PresenceSource
	CachePolicy    middleware.CachePolicy
	MetricsHandler http.Handler
}

// NewRouter creates the gin engine with middleware and routes
func NewRouter(cfg *RouterConfig) *gin.Engine {
	router := gin.New()

	// Middleware stack
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	teamPresenceHandler := NewTeamPresenceHandler(cfg.Presence, cfg.CachePolicy)
	healthHandler := NewHealthHandler()
	notFoundHandler := NewNotFoundHandler()

	api := router.Group("/api")
	{
		api.GET("/team-github", teamPresenceHandler.GetTeamPresence)
		api.GET("/team-github/export", teamPresenceHandler.ExportTeamPresence)
	}

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	router.NoRoute(notFoundHandler.NotFound)

	return router
}
