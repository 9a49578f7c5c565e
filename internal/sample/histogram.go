package sample

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/graphfeed/graphfeed/internal/graph"
)

// maxMagnitude bounds the degree histogram: an int64 degree has at most 19
// decimal digits, so magnitudes range over [0, 19].
const maxMagnitude = 19

// magnitude maps a degree to its order-of-magnitude bucket: 0 for degree 0,
// floor(log10(degree))+1 otherwise. Computed as the decimal digit count to
// avoid float rounding at bucket boundaries.
func magnitude(degree int) int {
	if degree <= 0 {
		return 0
	}

	m := 0
	for degree > 0 {
		degree /= 10
		m++
	}

	return m
}

// DegreeHistogram counts nodes per degree magnitude. Buckets partition the
// node set: the counts always sum to the number of nodes scanned.
type DegreeHistogram [maxMagnitude + 1]int64

// Total returns the number of nodes counted across all buckets.
func (h *DegreeHistogram) Total() int64 {
	var total int64
	for _, c := range h {
		total += c
	}

	return total
}

func (h *DegreeHistogram) merge(other *DegreeHistogram) {
	for i, c := range other {
		h[i] += c
	}
}

// detection is the outcome of the supernode scan.
type detection struct {
	histogram  DegreeHistogram
	supernodes []int64
}

// detectSupernodes scans every node id in [0, NodeCount), buckets degrees by
// magnitude, and collects the ids whose magnitude exceeds cutoff. The scan
// fans out across workers; the resulting supernode set is sorted so it is
// deterministic for a given graph.
func detectSupernodes(ctx context.Context, g graph.Graph, cutoff, workers int) (*detection, error) {
	nodeCount := g.NodeCount()

	var (
		mu     sync.Mutex
		result detection
	)

	eg, ctx := errgroup.WithContext(ctx)

	chunk := (nodeCount + int64(workers) - 1) / int64(workers)

	for w := 0; w < workers; w++ {
		lo := int64(w) * chunk
		hi := min(lo+chunk, nodeCount)

		if lo >= hi {
			break
		}

		eg.Go(func() error {
			h := g.ConcurrentCopy()

			var (
				local DegreeHistogram
				ids   []int64
			)

			for id := lo; id < hi; id++ {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				m := magnitude(h.Degree(id))
				local[m]++

				if m > cutoff {
					ids = append(ids, id)
				}
			}

			mu.Lock()
			result.histogram.merge(&local)
			result.supernodes = append(result.supernodes, ids...)
			mu.Unlock()

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(result.supernodes, func(i, j int) bool {
		return result.supernodes[i] < result.supernodes[j]
	})

	return &result, nil
}
