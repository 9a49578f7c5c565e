package sample

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/graphfeed/graphfeed/internal/graph"
	"github.com/graphfeed/graphfeed/internal/models"
)

// adjacencyCache holds the pre-materialized adjacency lists of supernodes.
// It is written only during buildAdjacencyCache; afterwards it is read-only
// and shared across all workers without locking. A missing entry means the
// node is not a supernode and must be streamed live.
type adjacencyCache struct {
	edges map[int64][]models.EdgeTuple
}

func (c *adjacencyCache) lookup(nodeID int64) ([]models.EdgeTuple, bool) {
	tuples, ok := c.edges[nodeID]

	return tuples, ok
}

// edgeCount returns the total number of cached edge tuples.
func (c *adjacencyCache) edgeCount() int64 {
	var total int64
	for _, tuples := range c.edges {
		total += int64(len(tuples))
	}

	return total
}

// buildAdjacencyCache streams each supernode's relationships exactly once
// and collects them into immutable tuple slices. This is the amortization
// that makes hub nodes affordable: a supernode visited by thousands of
// origins is read from storage only here.
func buildAdjacencyCache(ctx context.Context, g graph.Graph, supernodes []int64, workers int) (*adjacencyCache, error) {
	cache := &adjacencyCache{edges: make(map[int64][]models.EdgeTuple, len(supernodes))}

	var mu sync.Mutex

	ids := make(chan int64)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		defer close(ids)

		for _, id := range supernodes {
			select {
			case ids <- id:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		return nil
	})

	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			h := g.ConcurrentCopy()

			for id := range ids {
				tuples, err := collectTuples(h, id)
				if err != nil {
					return err
				}

				mu.Lock()
				cache.edges[id] = tuples
				mu.Unlock()
			}

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return cache, nil
}

// collectTuples materializes the full adjacency of a node as edge tuples.
func collectTuples(g graph.Graph, nodeID int64) ([]models.EdgeTuple, error) {
	tuples := make([]models.EdgeTuple, 0, g.Degree(nodeID))

	err := g.StreamRelationships(nodeID, math.NaN(), func(r graph.Relationship) bool {
		tuples = append(tuples, models.EdgeTuple{
			Source:  r.Source,
			Target:  r.Target,
			Natural: math.IsNaN(r.Property),
		})

		return true
	})
	if err != nil {
		return nil, fmt.Errorf("caching node %d: %w", nodeID, models.ErrTraversalFailure)
	}

	return tuples, nil
}
