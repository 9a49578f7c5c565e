// Package domain defines the canonical service interfaces consumed by the
// API layer. Handlers depend on these rather than on concrete services.
package domain

import (
	"context"

	"github.com/graphfeed/graphfeed/internal/job"
	"github.com/graphfeed/graphfeed/internal/models"
	"github.com/graphfeed/graphfeed/internal/sample"
)

// JobService runs sampling jobs and answers job lookups.
type JobService interface {
	// StreamKHop runs a k-hop sampling job, delivering rows to consumer.
	// It blocks until the job finishes and returns its terminal status. The
	// error is non-nil whenever the run did not complete; a zero-value
	// status (empty ID) means the failure was detected before any job was
	// started (validation, catalog miss).
	StreamKHop(ctx context.Context, req models.KHopRequest, consumer sample.Consumer) (job.Status, error)

	// StreamNodeExport runs a node export job against consumer.
	StreamNodeExport(ctx context.Context, req models.NodeExportRequest, consumer sample.Consumer) (job.Status, error)

	// StreamRelationshipExport runs a relationship export job against consumer.
	StreamRelationshipExport(ctx context.Context, req models.RelationshipExportRequest, consumer sample.Consumer) (job.Status, error)

	// GetJob returns the status of a job by id.
	GetJob(id string) (job.Status, error)

	// ListJobs returns all known jobs, most recent first.
	ListJobs() []job.Status

	// CancelJob requests cancellation of a running job.
	CancelJob(id string) error

	// ListGraphs returns the catalog contents.
	ListGraphs() []models.GraphInfo
}
