package sample

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/graphfeed/graphfeed/internal/graph"
	"github.com/graphfeed/graphfeed/internal/models"
)

// packShift positions the left node id in the high bits of the packed key;
// the right id occupies the low 32 bits.
const packShift = 32

// packPair packs a canonical (left, right) pair into a single 64-bit dedup
// key. Both ids must fit the configured bound; a violation returns
// ErrInputTooLarge instead of silently producing a colliding key.
func packPair(left, right, maxNodeID int64) (uint64, error) {
	if left < 0 || left > maxNodeID || right < 0 || right > maxNodeID {
		return 0, fmt.Errorf("pair (%d, %d) exceeds max node id %d: %w",
			left, right, maxNodeID, models.ErrInputTooLarge)
	}

	return uint64(left)<<packShift | uint64(right)&0xFFFFFFFF, nil
}

// expander performs per-origin k-hop expansion against one worker's graph
// handle, consulting the shared supernode cache before streaming live.
type expander struct {
	g         graph.Graph
	cache     *adjacencyCache
	cacheHits *atomic.Int64
	k         int
	maxNodeID int64
}

// expandOrigin yields every distinct canonical (left, right) pair reachable
// within k hops of origin. The visited set is scoped to this call and never
// shared across origins; the whole expansion runs on the calling goroutine.
func (e *expander) expandOrigin(origin int64, emit func(left, right int64) error) error {
	seen := make(map[uint64]struct{})

	return e.walk(origin, e.k, seen, emit)
}

// walk recursively expands one node, emitting each produced edge after
// re-orientation and dedup, then follows each edge's far endpoint while hops
// remain. Duplicate edges are still followed: dedup filters output, not
// traversal, so every directed path of length up to k is explored.
func (e *expander) walk(nodeID int64, hopsLeft int, seen map[uint64]struct{}, emit func(left, right int64) error) error {
	return e.hop(nodeID, func(t models.EdgeTuple) error {
		left, right := t.Oriented()

		key, err := packPair(left, right, e.maxNodeID)
		if err != nil {
			return err
		}

		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}

			if err := emit(left, right); err != nil {
				return err
			}
		}

		if hopsLeft > 1 {
			return e.walk(t.Target, hopsLeft-1, seen, emit)
		}

		return nil
	})
}

// hop visits the adjacency of one node: from the supernode cache when
// present (counted as a cache hit), otherwise streamed live through the
// graph handle.
func (e *expander) hop(nodeID int64, visit func(models.EdgeTuple) error) error {
	if tuples, ok := e.cache.lookup(nodeID); ok {
		e.cacheHits.Add(1)

		for _, t := range tuples {
			if err := visit(t); err != nil {
				return err
			}
		}

		return nil
	}

	var visitErr error

	err := e.g.StreamRelationships(nodeID, math.NaN(), func(r graph.Relationship) bool {
		t := models.EdgeTuple{Source: r.Source, Target: r.Target, Natural: math.IsNaN(r.Property)}

		if err := visit(t); err != nil {
			visitErr = err

			return false
		}

		return true
	})

	if visitErr != nil {
		return visitErr
	}

	if err != nil {
		return fmt.Errorf("expanding node %d: %w", nodeID, models.ErrTraversalFailure)
	}

	return nil
}
