package sample

import (
	"context"
	"testing"

	"github.com/graphfeed/graphfeed/internal/graph"
)

func TestMagnitude(t *testing.T) {
	tests := []struct {
		degree int
		want   int
	}{
		{0, 0},
		{1, 1},
		{9, 1},
		{10, 2},
		{99, 2},
		{100, 3},
		{999, 3},
		{1000, 4},
		{9999, 4},
		{10000, 5},
	}

	for _, tt := range tests {
		if got := magnitude(tt.degree); got != tt.want {
			t.Errorf("magnitude(%d) = %d, want %d", tt.degree, got, tt.want)
		}
	}
}

func TestHistogramPartitionsNodeSet(t *testing.T) {
	// Hub 0 with 15 leaves: hub degree 15 (magnitude 2), leaves degree 1,
	// plus one isolated node with degree 0.
	b := graph.NewBuilder()
	for i := int64(1); i <= 15; i++ {
		b.AddRelationship(0, i, nil)
	}
	b.AddNode(99, nil, nil)

	g := b.Build()

	det, err := detectSupernodes(context.Background(), g, 1, 4)
	if err != nil {
		t.Fatalf("detectSupernodes: %v", err)
	}

	if got := det.histogram.Total(); got != g.NodeCount() {
		t.Fatalf("histogram total = %d, want %d", got, g.NodeCount())
	}

	if det.histogram[0] != 1 {
		t.Errorf("bucket 0 = %d, want 1 (the isolated node)", det.histogram[0])
	}

	if det.histogram[1] != 15 {
		t.Errorf("bucket 1 = %d, want 15 (the leaves)", det.histogram[1])
	}

	if det.histogram[2] != 1 {
		t.Errorf("bucket 2 = %d, want 1 (the hub)", det.histogram[2])
	}
}

func TestDetectSupernodesCutoff(t *testing.T) {
	b := graph.NewBuilder()
	for i := int64(1); i <= 15; i++ {
		b.AddRelationship(0, i, nil)
	}

	g := b.Build()
	hub, _ := g.ToInternalNodeID(0)

	// Cutoff 1: only magnitude > 1 qualifies, i.e. the hub.
	det, err := detectSupernodes(context.Background(), g, 1, 4)
	if err != nil {
		t.Fatalf("detectSupernodes: %v", err)
	}

	if len(det.supernodes) != 1 || det.supernodes[0] != hub {
		t.Fatalf("supernodes = %v, want [%d]", det.supernodes, hub)
	}

	// Cutoff 2: nothing qualifies.
	det, err = detectSupernodes(context.Background(), g, 2, 4)
	if err != nil {
		t.Fatalf("detectSupernodes: %v", err)
	}

	if len(det.supernodes) != 0 {
		t.Fatalf("supernodes = %v, want none", det.supernodes)
	}
}

func TestDetectSupernodesMoreWorkersThanNodes(t *testing.T) {
	b := graph.NewBuilder()
	b.AddRelationship(0, 1, nil)

	det, err := detectSupernodes(context.Background(), b.Build(), 3, 16)
	if err != nil {
		t.Fatalf("detectSupernodes: %v", err)
	}

	if got := det.histogram.Total(); got != 2 {
		t.Fatalf("histogram total = %d, want 2", got)
	}
}
