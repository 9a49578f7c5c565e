package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graphfeed/graphfeed/internal/httputil"
	"github.com/graphfeed/graphfeed/internal/metrics"
	"github.com/graphfeed/graphfeed/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternalError    = "internal_error"
	ErrCodeValidationError  = "validation_error"
	ErrCodeGraphUnavailable = "graph_unavailable"
	ErrCodeInputTooLarge    = "input_too_large"
	ErrCodeJobFailed        = "job_failed"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondJobError maps a job error to an HTTP status and error code. Only
// used when no response bytes have been streamed yet.
func respondJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrMissingDB),
		errors.Is(err, models.ErrMissingGraph),
		errors.Is(err, models.ErrInvalidHops),
		errors.Is(err, models.ErrNoProperties),
		errors.Is(err, models.ErrUnknownKey):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrGraphUnavailable):
		respondError(c, http.StatusNotFound, ErrCodeGraphUnavailable, err.Error())
	case errors.Is(err, models.ErrInputTooLarge):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeInputTooLarge, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, ErrCodeJobFailed, err.Error())
	}
}
