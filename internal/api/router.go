package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/graphfeed/graphfeed/internal/domain"
	"github.com/graphfeed/graphfeed/internal/middleware"
	"github.com/graphfeed/graphfeed/internal/ws"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Hub         *ws.Hub
	Jobs        domain.JobService
	CORSOrigins []string
	Version     string
}

// maxBodySize bounds request bodies; job submissions are small JSON payloads.
const maxBodySize = 1 << 20 // 1 MB

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{JobIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
	r.Use(middleware.Prometheus())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Jobs, deps.Hub, log, deps.Version)
	jobs := NewJobHandler(deps.Jobs, log)
	graphs := NewGraphHandler(deps.Jobs)

	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	// Job submission. Each stream endpoint blocks for the duration of the
	// job and delivers rows as NDJSON.
	api.POST("/jobs/khop/stream", jobs.StreamKHop)
	api.POST("/jobs/nodes/stream", jobs.StreamNodes)
	api.POST("/jobs/relationships/stream", jobs.StreamRelationships)

	// Job lifecycle.
	api.GET("/jobs", jobs.List)
	api.GET("/jobs/:id", jobs.Get)
	api.DELETE("/jobs/:id", jobs.Cancel)

	// Catalog.
	api.GET("/graphs", graphs.List)

	// WebSocket endpoint for job lifecycle events.
	api.GET("/ws", wsHandler(ctx, log, deps.Hub, deps.CORSOrigins))
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
