package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/graphfeed/graphfeed/internal/api"
	"github.com/graphfeed/graphfeed/internal/job"
	"github.com/graphfeed/graphfeed/internal/models"
	"github.com/graphfeed/graphfeed/internal/sample"
)

func newJobRouter(svc *mockJobService) *gin.Engine {
	r := gin.New()

	h := api.NewJobHandler(svc, testLogger())
	r.POST("/jobs/khop/stream", h.StreamKHop)
	r.POST("/jobs/nodes/stream", h.StreamNodes)
	r.POST("/jobs/relationships/stream", h.StreamRelationships)
	r.GET("/jobs", h.List)
	r.GET("/jobs/:id", h.Get)
	r.DELETE("/jobs/:id", h.Cancel)

	return r
}

func runningStatus(id string) job.Status {
	return job.Status{ID: id, Kind: "khop", State: job.StateRunning, StartedAt: time.Now()}
}

func TestStreamKHopInvalidBody(t *testing.T) {
	r := newJobRouter(&mockJobService{})

	w := doRequest(r, http.MethodPost, "/jobs/khop/stream", "{not json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStreamKHopGraphUnavailable(t *testing.T) {
	svc := &mockJobService{
		khopFn: func(_ context.Context, _ models.KHopRequest, _ sample.Consumer) (job.Status, error) {
			return job.Status{}, fmt.Errorf("graph: %w", models.ErrGraphUnavailable)
		},
	}

	w := doRequest(newJobRouter(svc), http.MethodPost, "/jobs/khop/stream",
		`{"db":"d","graph":"missing","k":1}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	if resp["code"] != api.ErrCodeGraphUnavailable {
		t.Fatalf("code = %q, want %q", resp["code"], api.ErrCodeGraphUnavailable)
	}
}

func TestStreamKHopValidationMapsToBadRequest(t *testing.T) {
	svc := &mockJobService{
		khopFn: func(_ context.Context, _ models.KHopRequest, _ sample.Consumer) (job.Status, error) {
			return job.Status{}, models.ErrInvalidHops
		},
	}

	w := doRequest(newJobRouter(svc), http.MethodPost, "/jobs/khop/stream",
		`{"db":"d","graph":"g","k":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestStreamKHopInputTooLarge(t *testing.T) {
	svc := &mockJobService{
		khopFn: func(_ context.Context, _ models.KHopRequest, _ sample.Consumer) (job.Status, error) {
			return job.Status{}, models.ErrInputTooLarge
		},
	}

	w := doRequest(newJobRouter(svc), http.MethodPost, "/jobs/khop/stream",
		`{"db":"d","graph":"g","k":1}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestStreamKHopDeliversNDJSON(t *testing.T) {
	svc := &mockJobService{
		khopFn: func(_ context.Context, req models.KHopRequest, consumer sample.Consumer) (job.Status, error) {
			status := runningStatus("job-1")
			notifyStarted(consumer, status)

			if err := consumer.EstablishSchema(&models.SubgraphRecord{Target: 1, Type: "REL"}); err != nil {
				return status, err
			}

			for i := int64(0); i < 3; i++ {
				rec := &models.SubgraphRecord{Origin: 1, Source: 1, Target: 2 + i, Type: "REL"}
				if err := consumer.Consume(rec, i); err != nil {
					return status, err
				}
			}

			status.State = job.StateCompleted
			status.FinishedAt = time.Now()
			status.Summary = "streamed 3 rows"

			return status, nil
		},
	}

	w := doRequest(newJobRouter(svc), http.MethodPost, "/jobs/khop/stream",
		`{"db":"d","graph":"g","k":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if got := w.Header().Get(api.JobIDHeader); got != "job-1" {
		t.Fatalf("%s = %q, want job-1", api.JobIDHeader, got)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/x-ndjson" {
		t.Fatalf("Content-Type = %q", ct)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("body has %d lines, want 5 (schema + 3 rows + summary):\n%s", len(lines), w.Body.String())
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decoding first line: %v", err)
	}

	if _, ok := first["schema"]; !ok {
		t.Fatalf("first line is not the schema: %s", lines[0])
	}

	for i, line := range lines[1:4] {
		var row struct {
			Row    int64                 `json:"row"`
			Record models.SubgraphRecord `json:"record"`
		}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			t.Fatalf("decoding row line %d: %v", i, err)
		}

		if row.Row != int64(i) {
			t.Fatalf("row index = %d, want %d", row.Row, i)
		}
	}

	var last struct {
		Summary job.Status `json:"summary"`
	}
	if err := json.Unmarshal([]byte(lines[4]), &last); err != nil {
		t.Fatalf("decoding summary line: %v", err)
	}

	if last.Summary.State != job.StateCompleted {
		t.Fatalf("summary state = %s, want completed", last.Summary.State)
	}
}

func TestStreamKHopMidStreamFailure(t *testing.T) {
	svc := &mockJobService{
		khopFn: func(_ context.Context, _ models.KHopRequest, consumer sample.Consumer) (job.Status, error) {
			status := runningStatus("job-2")
			notifyStarted(consumer, status)

			if err := consumer.EstablishSchema(&models.SubgraphRecord{}); err != nil {
				return status, err
			}

			status.State = job.StateFailed
			status.Error = "traversal failed"

			return status, errors.New("traversal failed")
		},
	}

	w := doRequest(newJobRouter(svc), http.MethodPost, "/jobs/khop/stream",
		`{"db":"d","graph":"g","k":1}`)

	// The status code is committed once streaming starts; the failure is a
	// trailer line.
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	last := lines[len(lines)-1]

	var trailer struct {
		Error string     `json:"error"`
		Job   job.Status `json:"job"`
	}
	if err := json.Unmarshal([]byte(last), &trailer); err != nil {
		t.Fatalf("decoding trailer: %v", err)
	}

	if trailer.Error != "traversal failed" || trailer.Job.State != job.StateFailed {
		t.Fatalf("trailer = %+v", trailer)
	}
}

func TestStreamNodesInvalidBody(t *testing.T) {
	r := newJobRouter(&mockJobService{})

	w := doRequest(r, http.MethodPost, "/jobs/nodes/stream", "[]")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetJob(t *testing.T) {
	svc := &mockJobService{
		getFn: func(id string) (job.Status, error) {
			if id != "job-1" {
				return job.Status{}, models.ErrJobNotFound
			}

			return job.Status{ID: id, State: job.StateCompleted}, nil
		},
	}

	r := newJobRouter(svc)

	w := doRequest(r, http.MethodGet, "/jobs/job-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = doRequest(r, http.MethodGet, "/jobs/other", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestCancelJob(t *testing.T) {
	svc := &mockJobService{
		cancelFn: func(id string) error {
			if id != "job-1" {
				return models.ErrJobNotFound
			}

			return nil
		},
	}

	r := newJobRouter(svc)

	w := doRequest(r, http.MethodDelete, "/jobs/job-1", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}

	w = doRequest(r, http.MethodDelete, "/jobs/other", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListJobs(t *testing.T) {
	svc := &mockJobService{
		listFn: func() []job.Status {
			return []job.Status{{ID: "a"}, {ID: "b"}}
		},
	}

	w := doRequest(newJobRouter(svc), http.MethodGet, "/jobs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Jobs []job.Status `json:"jobs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	if len(resp.Jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(resp.Jobs))
	}
}
