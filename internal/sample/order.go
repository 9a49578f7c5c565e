package sample

import "math/rand"

// originOrder returns the origin visitation order. When supernodes exist the
// order is a non-repeating random permutation of [0, nodeCount): sequential
// visitation clusters cache-cold bursts around hubs and skews parallel load,
// while randomization spreads contention across workers. The choice affects
// scheduling only, never output content.
func originOrder(nodeCount int64, randomize bool) []int64 {
	order := make([]int64, nodeCount)
	for i := range order {
		order[i] = int64(i)
	}

	if randomize {
		rand.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	return order
}
