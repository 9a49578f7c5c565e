package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graphfeed/graphfeed/internal/domain"
)

// GraphHandler serves catalog inspection endpoints.
type GraphHandler struct {
	jobs domain.JobService
}

// NewGraphHandler creates a GraphHandler.
func NewGraphHandler(jobs domain.JobService) *GraphHandler {
	return &GraphHandler{jobs: jobs}
}

// List handles GET /api/v1/graphs.
func (h *GraphHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"graphs": h.jobs.ListGraphs()})
}
