// Package models defines the record shapes, request payloads, and sentinel
// errors shared across the graphfeed engine and its API layers.
package models

// EdgeTuple is an origin-independent directed edge as produced by traversal.
// Natural reports whether the edge was traversed in its stored direction;
// re-orientation downstream depends on it.
type EdgeTuple struct {
	Source  int64
	Target  int64
	Natural bool
}

// Oriented returns the canonical (left, right) pair for the tuple: natural
// edges keep (source, target), edges traversed against storage direction are
// swapped. Orienting an already-oriented pair with the same flag is a no-op.
func (t EdgeTuple) Oriented() (left, right int64) {
	if t.Natural {
		return t.Source, t.Target
	}

	return t.Target, t.Source
}

// SubgraphRecord is one output row of a k-hop sampling job: the origin the
// edge was reached from plus both resolved endpoints, all in original id
// space.
type SubgraphRecord struct {
	Origin       int64    `json:"origin"`
	Source       int64    `json:"source"`
	SourceLabels []string `json:"source_labels"`
	Type         string   `json:"type"`
	Target       int64    `json:"target"`
	TargetLabels []string `json:"target_labels"`
}

// NodeRecord is one output row of a node export job.
type NodeRecord struct {
	ID         int64              `json:"id"`
	Labels     []string           `json:"labels"`
	Properties map[string]float64 `json:"properties"`
}

// RelationshipRecord is one output row of a relationship export job. Value
// is nil when the edge carries no value for the projected property (NaN is
// not representable in JSON).
type RelationshipRecord struct {
	Source   int64    `json:"source"`
	Target   int64    `json:"target"`
	Type     string   `json:"type"`
	Property string   `json:"property"`
	Value    *float64 `json:"value,omitempty"`
}

// GraphInfo describes one catalog entry.
type GraphInfo struct {
	DB                string `json:"db"`
	Name              string `json:"name"`
	NodeCount         int64  `json:"node_count"`
	RelationshipCount int64  `json:"relationship_count"`
}
