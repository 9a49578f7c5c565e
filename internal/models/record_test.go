package models_test

import (
	"testing"

	"github.com/graphfeed/graphfeed/internal/models"
)

func TestEdgeTupleOriented(t *testing.T) {
	tests := []struct {
		name                string
		tuple               models.EdgeTuple
		wantLeft, wantRight int64
	}{
		{"natural keeps direction", models.EdgeTuple{Source: 1, Target: 2, Natural: true}, 1, 2},
		{"reverse swaps endpoints", models.EdgeTuple{Source: 2, Target: 1, Natural: false}, 1, 2},
		{"self loop natural", models.EdgeTuple{Source: 7, Target: 7, Natural: true}, 7, 7},
		{"self loop reverse", models.EdgeTuple{Source: 7, Target: 7, Natural: false}, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := tt.tuple.Oriented()
			if left != tt.wantLeft || right != tt.wantRight {
				t.Fatalf("Oriented() = (%d, %d), want (%d, %d)", left, right, tt.wantLeft, tt.wantRight)
			}
		})
	}
}

// The same physical edge seen from both endpoints must orient identically:
// that is what makes the dedup key origin-independent.
func TestOrientationAgreesAcrossDirections(t *testing.T) {
	natural := models.EdgeTuple{Source: 10, Target: 20, Natural: true}
	reverse := models.EdgeTuple{Source: 20, Target: 10, Natural: false}

	nl, nr := natural.Oriented()
	rl, rr := reverse.Oriented()

	if nl != rl || nr != rr {
		t.Fatalf("natural oriented to (%d, %d) but reverse to (%d, %d)", nl, nr, rl, rr)
	}
}

func TestRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     models.KHopRequest
		wantErr error
	}{
		{"valid", models.KHopRequest{DB: "neo4j", Graph: "g", K: 2}, nil},
		{"missing db", models.KHopRequest{Graph: "g", K: 2}, models.ErrMissingDB},
		{"missing graph", models.KHopRequest{DB: "neo4j", K: 2}, models.ErrMissingGraph},
		{"zero hops", models.KHopRequest{DB: "neo4j", Graph: "g"}, models.ErrInvalidHops},
		{"negative hops", models.KHopRequest{DB: "neo4j", Graph: "g", K: -1}, models.ErrInvalidHops},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err != tt.wantErr {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNodeExportRequestValidation(t *testing.T) {
	req := models.NodeExportRequest{DB: "neo4j", Graph: "g"}
	if err := req.Validate(); err != models.ErrNoProperties {
		t.Fatalf("Validate() = %v, want ErrNoProperties", err)
	}

	req.Properties = []string{"score"}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestRelationshipExportRequestAllowsEmptyProperties(t *testing.T) {
	req := models.RelationshipExportRequest{DB: "neo4j", Graph: "g"}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
