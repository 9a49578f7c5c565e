package models

import "time"

// KHopRequest is the payload for submitting a k-hop sampling job.
type KHopRequest struct {
	DB       string `json:"db"`
	Graph    string `json:"graph"`
	K        int    `json:"k"`
	Property string `json:"property,omitempty"`
}

// Validate checks required fields on KHopRequest.
func (r *KHopRequest) Validate() error {
	if r.DB == "" {
		return ErrMissingDB
	}

	if r.Graph == "" {
		return ErrMissingGraph
	}

	if r.K < 1 {
		return ErrInvalidHops
	}

	return nil
}

// NodeExportRequest is the payload for a node export job.
type NodeExportRequest struct {
	DB         string   `json:"db"`
	Graph      string   `json:"graph"`
	Properties []string `json:"properties"`
}

// Validate checks required fields on NodeExportRequest.
func (r *NodeExportRequest) Validate() error {
	if r.DB == "" {
		return ErrMissingDB
	}

	if r.Graph == "" {
		return ErrMissingGraph
	}

	if len(r.Properties) == 0 {
		return ErrNoProperties
	}

	return nil
}

// RelationshipExportRequest is the payload for a relationship export job.
// An empty Properties slice means "all relationship property keys".
type RelationshipExportRequest struct {
	DB         string   `json:"db"`
	Graph      string   `json:"graph"`
	Properties []string `json:"properties,omitempty"`
}

// Validate checks required fields on RelationshipExportRequest.
func (r *RelationshipExportRequest) Validate() error {
	if r.DB == "" {
		return ErrMissingDB
	}

	if r.Graph == "" {
		return ErrMissingGraph
	}

	return nil
}

// JobSummary carries the completion signal of a finished job.
type JobSummary struct {
	Rows      int64         `json:"rows"`
	CacheHits int64         `json:"cache_hits,omitempty"`
	Duration  time.Duration `json:"-"`
	DurationS float64       `json:"duration_seconds"`
	Message   string        `json:"message"`
}
