package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/graphfeed/graphfeed/internal/models"
)

// rel is one stored adjacency entry. Natural and reverse entries of the same
// edge share the props map.
type rel struct {
	target  int64
	natural bool
	props   map[string]float64
}

type node struct {
	labels []string
	props  map[string]float64
}

// MemoryGraph is an immutable in-memory Graph. Build one with a Builder;
// after Build it is never mutated, so all read methods are safe for
// unsynchronized concurrent use.
type MemoryGraph struct {
	nodes       []node
	adj         [][]rel
	originalIDs []int64
	byOriginal  map[int64]int64
	relCount    int64
	nodeKeys    []string
	relKeys     []string
	boundKey    string
}

var _ Graph = (*MemoryGraph)(nil)

// NodeCount implements Graph.
func (g *MemoryGraph) NodeCount() int64 { return int64(len(g.nodes)) }

// RelationshipCount implements Graph.
func (g *MemoryGraph) RelationshipCount() int64 { return g.relCount }

// Degree implements Graph. It counts both natural and reverse entries, the
// same set StreamRelationships yields unrestricted.
func (g *MemoryGraph) Degree(nodeID int64) int {
	if nodeID < 0 || nodeID >= int64(len(g.adj)) {
		return 0
	}

	return len(g.adj[nodeID])
}

// StreamRelationships implements Graph.
func (g *MemoryGraph) StreamRelationships(nodeID int64, filter float64, yield func(Relationship) bool) error {
	if nodeID < 0 || nodeID >= int64(len(g.adj)) {
		return fmt.Errorf("node %d out of range [0, %d)", nodeID, len(g.adj))
	}

	restricted := !math.IsNaN(filter)

	for _, r := range g.adj[nodeID] {
		if restricted {
			v, ok := r.props[g.boundKey]
			if !ok || v != filter {
				continue
			}
		}

		marker := math.NaN()
		if !r.natural {
			marker = 0
			if g.boundKey != "" {
				if v, ok := r.props[g.boundKey]; ok && !math.IsNaN(v) {
					marker = v
				}
			}
		}

		if !yield(Relationship{Source: nodeID, Target: r.target, Property: marker}) {
			return nil
		}
	}

	return nil
}

// StreamOutgoing implements Graph.
func (g *MemoryGraph) StreamOutgoing(nodeID int64, yield func(target int64, property float64) bool) error {
	if nodeID < 0 || nodeID >= int64(len(g.adj)) {
		return fmt.Errorf("node %d out of range [0, %d)", nodeID, len(g.adj))
	}

	for _, r := range g.adj[nodeID] {
		if !r.natural {
			continue
		}

		value := math.NaN()
		if g.boundKey != "" {
			if v, ok := r.props[g.boundKey]; ok {
				value = v
			}
		}

		if !yield(r.target, value) {
			return nil
		}
	}

	return nil
}

// NodeLabels implements Graph.
func (g *MemoryGraph) NodeLabels(nodeID int64) []string {
	if nodeID < 0 || nodeID >= int64(len(g.nodes)) {
		return nil
	}

	return g.nodes[nodeID].labels
}

// NodeProperty implements Graph.
func (g *MemoryGraph) NodeProperty(nodeID int64, key string) (float64, bool) {
	if nodeID < 0 || nodeID >= int64(len(g.nodes)) {
		return 0, false
	}

	v, ok := g.nodes[nodeID].props[key]

	return v, ok
}

// NodePropertyKeys implements Graph.
func (g *MemoryGraph) NodePropertyKeys() []string { return g.nodeKeys }

// RelationshipPropertyKeys implements Graph.
func (g *MemoryGraph) RelationshipPropertyKeys() []string { return g.relKeys }

// WithRelationshipProperty implements Graph. The returned view shares all
// graph data and differs only in the bound key.
func (g *MemoryGraph) WithRelationshipProperty(key string) (Graph, error) {
	found := false

	for _, k := range g.relKeys {
		if k == key {
			found = true

			break
		}
	}

	if !found {
		return nil, fmt.Errorf("relationship property %q: %w", key, models.ErrUnknownKey)
	}

	view := *g
	view.boundKey = key

	return &view, nil
}

// ToOriginalNodeID implements Graph.
func (g *MemoryGraph) ToOriginalNodeID(internalID int64) int64 {
	if internalID < 0 || internalID >= int64(len(g.originalIDs)) {
		return -1
	}

	return g.originalIDs[internalID]
}

// ToInternalNodeID translates an original id back to the dense internal id.
func (g *MemoryGraph) ToInternalNodeID(originalID int64) (int64, bool) {
	id, ok := g.byOriginal[originalID]

	return id, ok
}

// ConcurrentCopy implements Graph. MemoryGraph holds no cursor state, so the
// copy is a cheap view over the same frozen data.
func (g *MemoryGraph) ConcurrentCopy() Graph {
	view := *g

	return &view
}

// builderEdge is a pending edge recorded before Build.
type builderEdge struct {
	src, dst int64 // internal ids
	props    map[string]float64
}

// Builder accumulates nodes and relationships, then freezes them into a
// MemoryGraph. Not safe for concurrent use; Build may be called once.
type Builder struct {
	nodes       []node
	originalIDs []int64
	byOriginal  map[int64]int64
	edges       []builderEdge
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byOriginal: make(map[int64]int64)}
}

// AddNode registers a node under its original id. Adding an id twice merges
// labels and properties into the first registration.
func (b *Builder) AddNode(originalID int64, labels []string, props map[string]float64) *Builder {
	id, ok := b.byOriginal[originalID]
	if !ok {
		id = int64(len(b.nodes))
		b.byOriginal[originalID] = id
		b.originalIDs = append(b.originalIDs, originalID)
		b.nodes = append(b.nodes, node{props: make(map[string]float64)})
	}

	n := &b.nodes[id]
	n.labels = append(n.labels, labels...)

	for k, v := range props {
		n.props[k] = v
	}

	return b
}

// AddRelationship records a directed edge between two original ids. Unknown
// endpoints are added implicitly with no labels.
func (b *Builder) AddRelationship(srcOriginal, dstOriginal int64, props map[string]float64) *Builder {
	b.AddNode(srcOriginal, nil, nil)
	b.AddNode(dstOriginal, nil, nil)

	b.edges = append(b.edges, builderEdge{
		src:   b.byOriginal[srcOriginal],
		dst:   b.byOriginal[dstOriginal],
		props: props,
	})

	return b
}

// Build freezes the accumulated nodes and edges into an immutable graph.
// Every edge is materialized twice: a natural entry at its source and a
// reverse entry at its target, so traversal sees both directions.
func (b *Builder) Build() *MemoryGraph {
	adj := make([][]rel, len(b.nodes))

	nodeKeySet := make(map[string]struct{})
	relKeySet := make(map[string]struct{})

	for _, n := range b.nodes {
		for k := range n.props {
			nodeKeySet[k] = struct{}{}
		}
	}

	for _, e := range b.edges {
		props := e.props
		if props == nil {
			props = map[string]float64{}
		}

		for k := range props {
			relKeySet[k] = struct{}{}
		}

		adj[e.src] = append(adj[e.src], rel{target: e.dst, natural: true, props: props})
		adj[e.dst] = append(adj[e.dst], rel{target: e.src, natural: false, props: props})
	}

	return &MemoryGraph{
		nodes:       b.nodes,
		adj:         adj,
		originalIDs: b.originalIDs,
		byOriginal:  b.byOriginal,
		relCount:    int64(len(b.edges)),
		nodeKeys:    sortedKeys(nodeKeySet),
		relKeys:     sortedKeys(relKeySet),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
