package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/graphfeed/graphfeed/internal/job"
)

// JobIDHeader carries the id of the job backing a streamed response.
const JobIDHeader = "X-Graphfeed-Job-Id"

const ndjsonContentType = "application/x-ndjson"

// ndjsonConsumer streams job output as newline-delimited JSON: one schema
// line, one line per row, then a terminal summary or error line. It
// implements sample.Consumer; the engine serializes all calls, so no
// locking is needed here.
type ndjsonConsumer struct {
	c       *gin.Context
	enc     *json.Encoder
	started bool
}

func newNDJSONConsumer(c *gin.Context) *ndjsonConsumer {
	return &ndjsonConsumer{c: c, enc: json.NewEncoder(c.Writer)}
}

// JobStarted stamps the job id header. Called before any body bytes are
// written, so headers are still open.
func (n *ndjsonConsumer) JobStarted(status job.Status) {
	n.c.Header(JobIDHeader, status.ID)
}

// EstablishSchema writes the schema line and commits the response status.
func (n *ndjsonConsumer) EstablishSchema(record any) error {
	n.c.Header("Content-Type", ndjsonContentType)
	n.c.Status(http.StatusOK)
	n.started = true

	if err := n.enc.Encode(map[string]any{"schema": record}); err != nil {
		return fmt.Errorf("writing schema line: %w", err)
	}

	n.c.Writer.Flush()

	return nil
}

// Consume writes one data row.
func (n *ndjsonConsumer) Consume(record any, row int64) error {
	if err := n.enc.Encode(map[string]any{"row": row, "record": record}); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}

	n.c.Writer.Flush()

	return nil
}

// finish writes the terminal summary line for a completed job.
func (n *ndjsonConsumer) finish(status job.Status) {
	n.enc.Encode(map[string]any{"summary": status}) //nolint:errcheck // terminal line, nothing left to do on failure
	n.c.Writer.Flush()
}

// fail writes the terminal error line for a job that failed mid-stream.
func (n *ndjsonConsumer) fail(status job.Status) {
	n.enc.Encode(map[string]any{"error": status.Error, "job": status}) //nolint:errcheck // terminal line
	n.c.Writer.Flush()
}
