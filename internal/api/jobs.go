// Package api provides the HTTP surface of the sampling service.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/graphfeed/graphfeed/internal/domain"
	"github.com/graphfeed/graphfeed/internal/job"
	"github.com/graphfeed/graphfeed/internal/models"
	"github.com/graphfeed/graphfeed/internal/sample"
)

// JobHandler serves job submission, lookup, and cancellation endpoints.
type JobHandler struct {
	jobs domain.JobService
	log  *logrus.Logger
}

// NewJobHandler creates a JobHandler with the given service and logger.
func NewJobHandler(jobs domain.JobService, log *logrus.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, log: log}
}

// StreamKHop handles POST /api/v1/jobs/khop/stream.
// The response is NDJSON: a schema line, one line per subgraph row, and a
// terminal summary line. The backing job id is returned in X-Graphfeed-Job-Id.
func (h *JobHandler) StreamKHop(c *gin.Context) {
	var req models.KHopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	h.stream(c, func(consumer sample.Consumer) (job.Status, error) {
		return h.jobs.StreamKHop(c.Request.Context(), req, consumer)
	})
}

// StreamNodes handles POST /api/v1/jobs/nodes/stream.
func (h *JobHandler) StreamNodes(c *gin.Context) {
	var req models.NodeExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	h.stream(c, func(consumer sample.Consumer) (job.Status, error) {
		return h.jobs.StreamNodeExport(c.Request.Context(), req, consumer)
	})
}

// StreamRelationships handles POST /api/v1/jobs/relationships/stream.
func (h *JobHandler) StreamRelationships(c *gin.Context) {
	var req models.RelationshipExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	h.stream(c, func(consumer sample.Consumer) (job.Status, error) {
		return h.jobs.StreamRelationshipExport(c.Request.Context(), req, consumer)
	})
}

// stream runs one job against an NDJSON consumer and writes the terminal
// line. Errors raised before the first body byte map to a plain JSON error
// response; errors after that are appended as a trailer line, since the
// status code is already committed.
func (h *JobHandler) stream(c *gin.Context, run func(sample.Consumer) (job.Status, error)) {
	consumer := newNDJSONConsumer(c)

	status, err := run(consumer)
	if err != nil {
		if !consumer.started {
			respondJobError(c, err)

			return
		}

		h.log.WithFields(logrus.Fields{
			"job_id": status.ID,
			"state":  status.State,
		}).WithError(err).Warn("stream ended early")
		consumer.fail(status)

		return
	}

	consumer.finish(status)
}

// Get handles GET /api/v1/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	status, err := h.jobs.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "job not found")

			return
		}

		h.log.WithError(err).Error("looking up job")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, status)
}

// List handles GET /api/v1/jobs.
func (h *JobHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.jobs.ListJobs()})
}

// Cancel handles DELETE /api/v1/jobs/:id.
func (h *JobHandler) Cancel(c *gin.Context) {
	if err := h.jobs.CancelJob(c.Param("id")); err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "job not found")

			return
		}

		h.log.WithError(err).Error("cancelling job")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithField("job_id", c.Param("id")).Info("job cancellation requested")

	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}
