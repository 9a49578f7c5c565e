// Package service implements the orchestration layer between the HTTP API
// and the sampling engine.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphfeed/graphfeed/internal/domain"
	"github.com/graphfeed/graphfeed/internal/graph"
	"github.com/graphfeed/graphfeed/internal/job"
	"github.com/graphfeed/graphfeed/internal/metrics"
	"github.com/graphfeed/graphfeed/internal/models"
	"github.com/graphfeed/graphfeed/internal/sample"
)

// Job kinds as reported in status payloads and metrics labels.
const (
	KindKHop               = "khop"
	KindNodeExport         = "nodes"
	KindRelationshipExport = "rels"
)

// graphCatalog is the minimal catalog interface consumed by JobService.
// Defined at the consumer (per project convention) so the graph package
// depends on no service types.
type graphCatalog interface {
	Get(db, name string) (graph.Graph, error)
	List() []models.GraphInfo
}

// eventPublisher broadcasts job lifecycle events to observers.
type eventPublisher interface {
	BroadcastEvent(eventType string, data json.RawMessage)
}

// jobObserver is optionally implemented by consumers that need the job's
// identity before any rows are delivered (e.g. to stamp response headers).
type jobObserver interface {
	JobStarted(status job.Status)
}

// Compile-time check: *JobService must satisfy domain.JobService.
var _ domain.JobService = (*JobService)(nil)

// JobService implements domain.JobService.
type JobService struct {
	catalog graphCatalog
	engine  *sample.Engine
	jobs    *job.Manager
	events  eventPublisher
	log     *logrus.Logger
}

// NewJobService creates a JobService.
func NewJobService(catalog graphCatalog, engine *sample.Engine, jobs *job.Manager, events eventPublisher, log *logrus.Logger) *JobService {
	return &JobService{
		catalog: catalog,
		engine:  engine,
		jobs:    jobs,
		events:  events,
		log:     log,
	}
}

// StreamKHop implements domain.JobService.
func (s *JobService) StreamKHop(ctx context.Context, req models.KHopRequest, consumer sample.Consumer) (job.Status, error) {
	if err := req.Validate(); err != nil {
		return job.Status{}, err
	}

	g, err := s.catalog.Get(req.DB, req.Graph)
	if err != nil {
		return job.Status{}, err
	}

	return s.run(ctx, KindKHop, consumer, func(jobCtx context.Context) (models.JobSummary, error) {
		return s.engine.RunKHop(jobCtx, g, req, consumer)
	})
}

// StreamNodeExport implements domain.JobService.
func (s *JobService) StreamNodeExport(ctx context.Context, req models.NodeExportRequest, consumer sample.Consumer) (job.Status, error) {
	if err := req.Validate(); err != nil {
		return job.Status{}, err
	}

	g, err := s.catalog.Get(req.DB, req.Graph)
	if err != nil {
		return job.Status{}, err
	}

	return s.run(ctx, KindNodeExport, consumer, func(jobCtx context.Context) (models.JobSummary, error) {
		return s.engine.RunNodeExport(jobCtx, g, req, consumer)
	})
}

// StreamRelationshipExport implements domain.JobService.
func (s *JobService) StreamRelationshipExport(ctx context.Context, req models.RelationshipExportRequest, consumer sample.Consumer) (job.Status, error) {
	if err := req.Validate(); err != nil {
		return job.Status{}, err
	}

	g, err := s.catalog.Get(req.DB, req.Graph)
	if err != nil {
		return job.Status{}, err
	}

	return s.run(ctx, KindRelationshipExport, consumer, func(jobCtx context.Context) (models.JobSummary, error) {
		return s.engine.RunRelationshipExport(jobCtx, g, req, consumer)
	})
}

// run tracks one engine invocation as a job: registers it, publishes
// lifecycle events, records metrics, and maps the engine outcome to a
// terminal state. The returned error is the engine's own; the status always
// reflects a terminal state.
func (s *JobService) run(ctx context.Context, kind string, consumer sample.Consumer, invoke func(context.Context) (models.JobSummary, error)) (job.Status, error) {
	j := s.jobs.Start(ctx, kind)
	s.publish("job.started", j.Snapshot())

	if obs, ok := consumer.(jobObserver); ok {
		obs.JobStarted(j.Snapshot())
	}

	start := time.Now()

	summary, err := invoke(j.Context())
	if err != nil {
		j.Fail(err)

		status := j.Snapshot()

		s.log.WithFields(logrus.Fields{
			"job_id": status.ID,
			"state":  status.State,
		}).WithError(err).Warn("job did not complete")

		s.finish(kind, status, start)

		return status, err
	}

	j.Complete(summary.Message)

	status := j.Snapshot()
	s.finish(kind, status, start)

	return status, nil
}

func (s *JobService) finish(kind string, status job.Status, start time.Time) {
	metrics.JobsTotal.WithLabelValues(kind, string(status.State)).Inc()
	metrics.JobDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	switch status.State {
	case job.StateCompleted:
		s.publish("job.completed", status)
	case job.StateCancelled:
		s.publish("job.cancelled", status)
	default:
		s.publish("job.failed", status)
	}
}

// publish broadcasts a job event; marshalling failures are logged, never
// propagated into the job outcome.
func (s *JobService) publish(eventType string, status job.Status) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(status)
	if err != nil {
		s.log.WithError(err).Error("marshalling job event")

		return
	}

	s.events.BroadcastEvent(eventType, data)
}

// GetJob implements domain.JobService.
func (s *JobService) GetJob(id string) (job.Status, error) {
	j, err := s.jobs.Get(id)
	if err != nil {
		return job.Status{}, err
	}

	return j.Snapshot(), nil
}

// ListJobs implements domain.JobService.
func (s *JobService) ListJobs() []job.Status {
	return s.jobs.List()
}

// CancelJob implements domain.JobService.
func (s *JobService) CancelJob(id string) error {
	return s.jobs.Cancel(id)
}

// ListGraphs implements domain.JobService.
func (s *JobService) ListGraphs() []models.GraphInfo {
	return s.catalog.List()
}
