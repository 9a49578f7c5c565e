package models

import "errors"

// Sentinel errors for request validation.
var (
	ErrMissingDB    = errors.New("db is required")
	ErrMissingGraph = errors.New("graph is required")
	ErrInvalidHops  = errors.New("k must be at least 1")
	ErrNoProperties = errors.New("at least one property is required")
	ErrUnknownKey   = errors.New("unknown property key")
)

// Sentinel errors for the sampling engine.
var (
	// ErrGraphUnavailable indicates the requested graph is not in the catalog.
	ErrGraphUnavailable = errors.New("graph unavailable")

	// ErrInputTooLarge indicates a node id exceeds the bound assumed by the
	// pair-packing scheme. The job fails rather than silently dropping edges.
	ErrInputTooLarge = errors.New("node id exceeds pair-packing bound")

	// ErrConsumerUnavailable indicates no record sink could be acquired.
	ErrConsumerUnavailable = errors.New("record consumer unavailable")

	// ErrTraversalFailure indicates an unexpected error while streaming
	// relationships from the graph handle.
	ErrTraversalFailure = errors.New("relationship traversal failed")
)

// ErrJobNotFound indicates a job id lookup miss.
var ErrJobNotFound = errors.New("job not found")
