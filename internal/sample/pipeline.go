// Package sample implements the k-hop neighborhood sampling engine:
// supernode detection, adjacency pre-materialization, per-origin edge
// deduplication, and the parallel pipeline that streams result rows to a
// consumer.
package sample

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/graphfeed/graphfeed/internal/graph"
	"github.com/graphfeed/graphfeed/internal/metrics"
	"github.com/graphfeed/graphfeed/internal/models"
)

// edgeTypeMarker is the fixed relationship type stamped on subgraph rows.
const edgeTypeMarker = "REL"

// Params configures the sampling engine.
type Params struct {
	// SupernodeCutoff is the degree magnitude above which a node's
	// adjacency is pre-materialized. The default of 3 flags nodes with
	// degree >= 1000.
	SupernodeCutoff int

	// NodeIDBits is the number of bits a node id may occupy for the
	// pair-packing dedup key to be collision-free. At most 32.
	NodeIDBits uint

	// Workers bounds the parallelism of the detection, caching, and
	// expansion phases. Defaults to GOMAXPROCS.
	Workers int
}

func (p Params) withDefaults() Params {
	if p.SupernodeCutoff <= 0 {
		p.SupernodeCutoff = 3
	}

	if p.NodeIDBits == 0 || p.NodeIDBits > 32 {
		p.NodeIDBits = 32
	}

	if p.Workers <= 0 {
		p.Workers = runtime.GOMAXPROCS(0)
	}

	return p
}

func (p Params) maxNodeID() int64 {
	return int64(1)<<p.NodeIDBits - 1
}

// Consumer receives result rows. EstablishSchema is called exactly once,
// before any data, with a placeholder record that only announces the row
// shape. Consume is then called once per data row with a row index assigned
// in delivery order; calls are serialized by the engine.
type Consumer interface {
	EstablishSchema(record any) error
	Consume(record any, row int64) error
}

// Engine runs sampling and export jobs against resident graphs.
type Engine struct {
	log    *logrus.Logger
	params Params
}

// NewEngine creates an Engine with the given parameters.
func NewEngine(log *logrus.Logger, params Params) *Engine {
	return &Engine{log: log, params: params.withDefaults()}
}

// delivery serializes record handoff to the consumer and assigns row
// indices in delivery order. Concurrent origins interleave freely; the only
// guarantee is that indices are contiguous and strictly increasing in the
// order records reach the consumer.
type delivery struct {
	mu       sync.Mutex
	next     int64
	consumer Consumer
}

func (d *delivery) deliver(record any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.consumer.Consume(record, d.next); err != nil {
		return err
	}

	d.next++

	return nil
}

func (d *delivery) rows() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.next
}

// RunKHop samples the distinct k-hop edges of every origin in the graph and
// streams one SubgraphRecord per retained edge. Detection-phase failures
// (bad property key, id bound violation) surface before the schema record
// is sent; streaming-phase failures abort delivery and are returned.
func (e *Engine) RunKHop(ctx context.Context, g graph.Graph, req models.KHopRequest, consumer Consumer) (models.JobSummary, error) {
	start := time.Now()

	if consumer == nil {
		return models.JobSummary{}, models.ErrConsumerUnavailable
	}

	if req.Property != "" {
		view, err := g.WithRelationshipProperty(req.Property)
		if err != nil {
			return models.JobSummary{}, err
		}

		g = view
	}

	nodeCount := g.NodeCount()

	if nodeCount-1 > e.params.maxNodeID() {
		return models.JobSummary{}, fmt.Errorf("graph has node ids up to %d: %w",
			nodeCount-1, models.ErrInputTooLarge)
	}

	e.log.WithFields(logrus.Fields{
		"nodes": nodeCount,
		"rels":  g.RelationshipCount(),
		"k":     req.K,
	}).Info("starting k-hop sampling")

	det, err := detectSupernodes(ctx, g, e.params.SupernodeCutoff, e.params.Workers)
	if err != nil {
		return models.JobSummary{}, err
	}

	e.logHistogram(det)

	cache, err := buildAdjacencyCache(ctx, g, det.supernodes, e.params.Workers)
	if err != nil {
		return models.JobSummary{}, err
	}

	metrics.SupernodesCached.Set(float64(len(det.supernodes)))

	e.log.WithFields(logrus.Fields{
		"supernodes": len(det.supernodes),
		"edges":      cache.edgeCount(),
	}).Info("supernode adjacency cached")

	if err := consumer.EstablishSchema(&models.SubgraphRecord{Target: 1, Type: edgeTypeMarker}); err != nil {
		return models.JobSummary{}, fmt.Errorf("establishing schema: %w", err)
	}

	order := originOrder(nodeCount, len(det.supernodes) > 0)

	var cacheHits atomic.Int64

	d := &delivery{consumer: consumer}

	if err := e.expandAll(ctx, g, order, cache, &cacheHits, req.K, d); err != nil {
		return models.JobSummary{}, err
	}

	rows := d.rows()
	hits := cacheHits.Load()

	metrics.RowsStreamed.WithLabelValues("khop").Add(float64(rows))
	metrics.CacheHits.Add(float64(hits))

	summary := models.JobSummary{
		Rows:      rows,
		CacheHits: hits,
		Duration:  time.Since(start),
		DurationS: time.Since(start).Seconds(),
	}
	summary.Message = fmt.Sprintf("streamed %d rows from %d nodes in %s (%d cache hits)",
		rows, nodeCount, summary.Duration.Round(time.Millisecond), hits)

	e.log.Info(summary.Message)

	return summary, nil
}

// expandAll fans origin expansions out across the worker pool. Each worker
// holds its own graph handle; the visited-edge set is created per origin
// inside expandOrigin and never crosses goroutines.
func (e *Engine) expandAll(ctx context.Context, g graph.Graph, order []int64, cache *adjacencyCache, cacheHits *atomic.Int64, k int, d *delivery) error {
	var nextOrigin atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)

	for w := 0; w < e.params.Workers; w++ {
		eg.Go(func() error {
			h := g.ConcurrentCopy()

			exp := &expander{
				g:         h,
				cache:     cache,
				cacheHits: cacheHits,
				k:         k,
				maxNodeID: e.params.maxNodeID(),
			}

			for {
				i := nextOrigin.Add(1) - 1
				if i >= int64(len(order)) {
					return nil
				}

				if err := ctx.Err(); err != nil {
					return err
				}

				origin := order[i]

				err := exp.expandOrigin(origin, func(left, right int64) error {
					return d.deliver(&models.SubgraphRecord{
						Origin:       h.ToOriginalNodeID(origin),
						Source:       h.ToOriginalNodeID(left),
						SourceLabels: h.NodeLabels(left),
						Type:         edgeTypeMarker,
						Target:       h.ToOriginalNodeID(right),
						TargetLabels: h.NodeLabels(right),
					})
				})
				if err != nil {
					return err
				}
			}
		})
	}

	return eg.Wait()
}

// logHistogram reports the degree distribution, one line per occupied
// bucket. Diagnostic only; it never feeds back into sampling.
func (e *Engine) logHistogram(det *detection) {
	for m, count := range det.histogram {
		if count == 0 {
			continue
		}

		e.log.WithFields(logrus.Fields{
			"magnitude": m,
			"nodes":     count,
		}).Debug("degree bucket")
	}

	e.log.WithField("supernodes", len(det.supernodes)).Info("supernode scan complete")
}

// RunNodeExport streams one NodeRecord per node carrying the requested
// property keys. Unknown keys fail before any streaming starts.
func (e *Engine) RunNodeExport(ctx context.Context, g graph.Graph, req models.NodeExportRequest, consumer Consumer) (models.JobSummary, error) {
	start := time.Now()

	if consumer == nil {
		return models.JobSummary{}, models.ErrConsumerUnavailable
	}

	if err := validateKeys(req.Properties, g.NodePropertyKeys()); err != nil {
		return models.JobSummary{}, err
	}

	placeholder := &models.NodeRecord{Properties: make(map[string]float64, len(req.Properties))}
	for _, key := range req.Properties {
		placeholder.Properties[key] = 0
	}

	if err := consumer.EstablishSchema(placeholder); err != nil {
		return models.JobSummary{}, fmt.Errorf("establishing schema: %w", err)
	}

	d := &delivery{consumer: consumer}

	err := e.eachNode(ctx, g, func(h graph.Graph, id int64) error {
		props := make(map[string]float64, len(req.Properties))

		for _, key := range req.Properties {
			if v, ok := h.NodeProperty(id, key); ok {
				props[key] = v
			}
		}

		return d.deliver(&models.NodeRecord{
			ID:         h.ToOriginalNodeID(id),
			Labels:     h.NodeLabels(id),
			Properties: props,
		})
	})
	if err != nil {
		return models.JobSummary{}, err
	}

	return e.exportSummary("node export", d.rows(), start, "nodes"), nil
}

// RunRelationshipExport streams one RelationshipRecord per natural edge and
// requested property key. An empty key list exports every relationship
// property key the graph has, plus a bare topology pass when it has none.
func (e *Engine) RunRelationshipExport(ctx context.Context, g graph.Graph, req models.RelationshipExportRequest, consumer Consumer) (models.JobSummary, error) {
	start := time.Now()

	if consumer == nil {
		return models.JobSummary{}, models.ErrConsumerUnavailable
	}

	keys := req.Properties
	if len(keys) == 0 {
		keys = g.RelationshipPropertyKeys()
	} else if err := validateKeys(keys, g.RelationshipPropertyKeys()); err != nil {
		return models.JobSummary{}, err
	}

	views := make([]graph.Graph, 0, len(keys))
	viewKeys := make([]string, 0, len(keys))

	for _, key := range keys {
		view, err := g.WithRelationshipProperty(key)
		if err != nil {
			return models.JobSummary{}, err
		}

		views = append(views, view)
		viewKeys = append(viewKeys, key)
	}

	if len(views) == 0 {
		views = append(views, g)
		viewKeys = append(viewKeys, "")
	}

	if err := consumer.EstablishSchema(&models.RelationshipRecord{Target: 1, Type: edgeTypeMarker}); err != nil {
		return models.JobSummary{}, fmt.Errorf("establishing schema: %w", err)
	}

	d := &delivery{consumer: consumer}

	err := e.eachNode(ctx, g, func(h graph.Graph, id int64) error {
		for vi, view := range views {
			var streamErr error

			err := view.StreamOutgoing(id, func(target int64, property float64) bool {
				rec := &models.RelationshipRecord{
					Source:   h.ToOriginalNodeID(id),
					Target:   h.ToOriginalNodeID(target),
					Type:     edgeTypeMarker,
					Property: viewKeys[vi],
				}

				if !math.IsNaN(property) {
					v := property
					rec.Value = &v
				}

				if err := d.deliver(rec); err != nil {
					streamErr = err

					return false
				}

				return true
			})

			if streamErr != nil {
				return streamErr
			}

			if err != nil {
				return fmt.Errorf("exporting node %d: %w", id, models.ErrTraversalFailure)
			}
		}

		return nil
	})
	if err != nil {
		return models.JobSummary{}, err
	}

	return e.exportSummary("relationship export", d.rows(), start, "rels"), nil
}

// eachNode fans a per-node visit out across the worker pool, giving each
// worker its own graph handle. Cancellation is checked before every node.
func (e *Engine) eachNode(ctx context.Context, g graph.Graph, visit func(h graph.Graph, id int64) error) error {
	nodeCount := g.NodeCount()

	var next atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)

	for w := 0; w < e.params.Workers; w++ {
		eg.Go(func() error {
			h := g.ConcurrentCopy()

			for {
				id := next.Add(1) - 1
				if id >= nodeCount {
					return nil
				}

				if err := ctx.Err(); err != nil {
					return err
				}

				if err := visit(h, id); err != nil {
					return err
				}
			}
		})
	}

	return eg.Wait()
}

func (e *Engine) exportSummary(what string, rows int64, start time.Time, kind string) models.JobSummary {
	metrics.RowsStreamed.WithLabelValues(kind).Add(float64(rows))

	summary := models.JobSummary{
		Rows:      rows,
		Duration:  time.Since(start),
		DurationS: time.Since(start).Seconds(),
	}
	summary.Message = fmt.Sprintf("%s streamed %d rows in %s",
		what, rows, summary.Duration.Round(time.Millisecond))

	e.log.Info(summary.Message)

	return summary
}

// validateKeys checks every requested key against the graph's known keys.
func validateKeys(requested, known []string) error {
	for _, key := range requested {
		found := false

		for _, k := range known {
			if k == key {
				found = true

				break
			}
		}

		if !found {
			return fmt.Errorf("property %q: %w", key, models.ErrUnknownKey)
		}
	}

	return nil
}
