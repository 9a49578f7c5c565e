// Package job tracks the lifecycle of sampling jobs: running, completed,
// failed, or cancelled.
package job

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/graphfeed/graphfeed/internal/models"
)

// State is a job lifecycle state.
type State string

// Job lifecycle states. A job leaves Running exactly once.
const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Status is the externally visible snapshot of a job.
type Status struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	State      State     `json:"state"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Summary    string    `json:"summary,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Job is one tracked sampling run. Its context is cancelled when the job is
// cancelled through the manager; runners must derive their work from it.
type Job struct {
	id        string
	kind      string
	ctx       context.Context
	cancel    context.CancelFunc
	startedAt time.Time

	mu         sync.Mutex
	state      State
	finishedAt time.Time
	summary    string
	err        string
}

// ID returns the job's unique id.
func (j *Job) ID() string { return j.id }

// Context returns the context the job's work must run under.
func (j *Job) Context() context.Context { return j.ctx }

// Complete moves the job to Completed with the given summary. No-op if the
// job already left Running.
func (j *Job) Complete(summary string) {
	j.finish(StateCompleted, summary, "")
}

// Fail moves the job to Failed, or to Cancelled when the failure is the
// job's own cancellation surfacing as a context error.
func (j *Job) Fail(err error) {
	if j.ctx.Err() != nil {
		j.finish(StateCancelled, "", "cancelled by request")

		return
	}

	j.finish(StateFailed, "", err.Error())
}

func (j *Job) finish(state State, summary, errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.state != StateRunning {
		return
	}

	j.state = state
	j.summary = summary
	j.err = errMsg
	j.finishedAt = time.Now()
	j.cancel()
}

// Snapshot returns the job's current Status.
func (j *Job) Snapshot() Status {
	j.mu.Lock()
	defer j.mu.Unlock()

	return Status{
		ID:         j.id,
		Kind:       j.kind,
		State:      j.state,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
		Summary:    j.summary,
		Error:      j.err,
	}
}

// Manager registers jobs and serves status lookups and cancellation.
type Manager struct {
	log  *logrus.Logger
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewManager creates an empty Manager.
func NewManager(log *logrus.Logger) *Manager {
	return &Manager{log: log, jobs: make(map[string]*Job)}
}

// Start registers a new Running job of the given kind. The job's context is
// derived from parent, so a cancelled request also cancels the job.
func (m *Manager) Start(parent context.Context, kind string) *Job {
	ctx, cancel := context.WithCancel(parent)

	j := &Job{
		id:        uuid.New().String(),
		kind:      kind,
		ctx:       ctx,
		cancel:    cancel,
		startedAt: time.Now(),
		state:     StateRunning,
	}

	m.mu.Lock()
	m.jobs[j.id] = j
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"job_id": j.id, "kind": kind}).Info("job started")

	return j
}

// Get returns the job with the given id, or ErrJobNotFound.
func (m *Manager) Get(id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, models.ErrJobNotFound
	}

	return j, nil
}

// Cancel cancels the job with the given id. Cancelling a finished job is a
// no-op; the job keeps its terminal state.
func (m *Manager) Cancel(id string) error {
	j, err := m.Get(id)
	if err != nil {
		return err
	}

	j.mu.Lock()
	running := j.state == StateRunning
	j.mu.Unlock()

	if running {
		j.cancel()
		m.log.WithField("job_id", id).Info("job cancellation requested")
	}

	return nil
}

// List returns snapshots of all known jobs, most recent first.
func (m *Manager) List() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]Status, 0, len(m.jobs))
	for _, j := range m.jobs {
		statuses = append(statuses, j.Snapshot())
	}

	sort.Slice(statuses, func(i, k int) bool {
		return statuses[i].StartedAt.After(statuses[k].StartedAt)
	})

	return statuses
}
