package api_test

import (
	"context"

	"github.com/graphfeed/graphfeed/internal/job"
	"github.com/graphfeed/graphfeed/internal/models"
	"github.com/graphfeed/graphfeed/internal/sample"
)

// mockJobService implements domain.JobService for testing.
type mockJobService struct {
	khopFn   func(ctx context.Context, req models.KHopRequest, consumer sample.Consumer) (job.Status, error)
	nodesFn  func(ctx context.Context, req models.NodeExportRequest, consumer sample.Consumer) (job.Status, error)
	relsFn   func(ctx context.Context, req models.RelationshipExportRequest, consumer sample.Consumer) (job.Status, error)
	getFn    func(id string) (job.Status, error)
	listFn   func() []job.Status
	cancelFn func(id string) error
	graphsFn func() []models.GraphInfo
}

func (m *mockJobService) StreamKHop(ctx context.Context, req models.KHopRequest, consumer sample.Consumer) (job.Status, error) {
	return m.khopFn(ctx, req, consumer)
}

func (m *mockJobService) StreamNodeExport(ctx context.Context, req models.NodeExportRequest, consumer sample.Consumer) (job.Status, error) {
	return m.nodesFn(ctx, req, consumer)
}

func (m *mockJobService) StreamRelationshipExport(ctx context.Context, req models.RelationshipExportRequest, consumer sample.Consumer) (job.Status, error) {
	return m.relsFn(ctx, req, consumer)
}

func (m *mockJobService) GetJob(id string) (job.Status, error) {
	return m.getFn(id)
}

func (m *mockJobService) ListJobs() []job.Status {
	if m.listFn == nil {
		return nil
	}

	return m.listFn()
}

func (m *mockJobService) CancelJob(id string) error {
	return m.cancelFn(id)
}

func (m *mockJobService) ListGraphs() []models.GraphInfo {
	if m.graphsFn == nil {
		return nil
	}

	return m.graphsFn()
}

// notifyStarted invokes the consumer's JobStarted hook the way the real
// service does.
func notifyStarted(consumer sample.Consumer, status job.Status) {
	if obs, ok := consumer.(interface{ JobStarted(job.Status) }); ok {
		obs.JobStarted(status)
	}
}
