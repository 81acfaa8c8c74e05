package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-market-sync/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Token listing (public, the caller only widens visibility)
		v1.GET("/tokens", middleware.OptionalAuth(authCfg), handler.ListTokens)

		// Token resync (admin only)
		v1.POST("/tokens/:contract_address/:token_id/resync", middleware.Auth(authCfg), middleware.RequireAdmin(), handler.ResyncToken)
	}
}
