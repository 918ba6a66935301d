// Package http provides HTTP server infrastructure including the
// Module interface that all domain modules implement for route
// registration.
package http

import (
	"agency_portal_backend/platform/config"
	"agency_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP
// routes. Each domain module implements this interface to encapsulate
// its own route setup, keeping the router decoupled from specific
// endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes using the shared
	// router context.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route
// registration, avoiding long parameter lists on RegisterRoutes.
type RouterContext struct {
	// Engine is the root Gin engine for modules needing engine-level access.
	Engine *gin.Engine
	// V1 is the public /api/v1 route group.
	V1 *gin.RouterGroup
	// Protected is the JWT-authenticated route group under /api/v1.
	Protected *gin.RouterGroup
	// Config is the JWT configuration for auth middleware.
	Config config.JWTConfig
	// PublicRateLimiter throttles unauthenticated inbound routes such
	// as the form-capture webhook.
	PublicRateLimiter *httpkit.IPRateLimiter
}
