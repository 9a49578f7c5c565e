// Package graph defines the read-only handle through which the sampling
// engine sees a resident property graph, an immutable in-memory
// implementation of it, and a catalog keyed by (db, graph) name.
package graph

// Relationship is one adjacency entry yielded by StreamRelationships.
//
// Property doubles as the direction marker: NaN means the entry is the edge
// in its stored ("natural") direction; a non-NaN value means the edge is
// being offered against storage direction. Consumers that need the actual
// bound property value use StreamOutgoing.
type Relationship struct {
	Source   int64
	Target   int64
	Property float64
}

// Graph is a thread-safe, immutable read handle over a resident graph.
//
// Implementations must support any number of concurrent readers. Workers
// that iterate relationships should each obtain their own handle via
// ConcurrentCopy to avoid sharing cursor state.
type Graph interface {
	// NodeCount returns the number of nodes; internal ids are dense in
	// [0, NodeCount).
	NodeCount() int64

	// RelationshipCount returns the number of stored (natural) edges.
	RelationshipCount() int64

	// Degree returns the number of entries StreamRelationships yields for
	// the node with an unrestricted filter.
	Degree(nodeID int64) int

	// StreamRelationships yields every adjacency entry of the node, in both
	// traversal directions, until yield returns false. A NaN filter means
	// no property restriction; otherwise only edges whose bound property
	// equals the filter are yielded.
	StreamRelationships(nodeID int64, filter float64, yield func(Relationship) bool) error

	// StreamOutgoing yields only natural-direction edges with the value of
	// the bound relationship property (NaN when the edge has none).
	StreamOutgoing(nodeID int64, yield func(target int64, property float64) bool) error

	// NodeLabels returns the labels of the node.
	NodeLabels(nodeID int64) []string

	// NodeProperty returns the named node property and whether it exists.
	NodeProperty(nodeID int64, key string) (float64, bool)

	// NodePropertyKeys returns all node property keys present in the graph.
	NodePropertyKeys() []string

	// RelationshipPropertyKeys returns all relationship property keys
	// present in the graph.
	RelationshipPropertyKeys() []string

	// WithRelationshipProperty returns a view of the graph bound to the
	// given relationship property key, or models.ErrUnknownKey if no edge
	// carries it.
	WithRelationshipProperty(key string) (Graph, error)

	// ToOriginalNodeID translates a dense internal id to the original id.
	ToOriginalNodeID(internalID int64) int64

	// ConcurrentCopy returns an independent read handle for use by one
	// worker goroutine.
	ConcurrentCopy() Graph
}
