package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphfeed/graphfeed/internal/domain"
	"github.com/graphfeed/graphfeed/internal/ws"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	jobs      domain.JobService
	hub       *ws.Hub
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler with the given dependencies.
func NewHealthHandler(jobs domain.JobService, hub *ws.Hub, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		jobs:      jobs,
		hub:       hub,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Graphs        int     `json:"graphs"`
	WSClients     int     `json:"ws_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		Graphs:        len(h.jobs.ListGraphs()),
		WSClients:     h.hub.ClientCount(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// Readiness handles GET /api/v1/ready. The service is ready as soon as the
// catalog is wired; an empty catalog is reported but not a failure, since
// graphs can be registered after startup.
func (h *HealthHandler) Readiness(c *gin.Context) {
	graphs := h.jobs.ListGraphs()

	checks := map[string]string{"catalog": "ok"}
	if len(graphs) == 0 {
		checks["catalog"] = "empty"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}
