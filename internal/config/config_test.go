package config_test

import (
	"strings"
	"testing"

	"github.com/graphfeed/graphfeed/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "3040" || cfg.ListenHost != "127.0.0.1" {
		t.Fatalf("network defaults = %s:%s", cfg.ListenHost, cfg.Port)
	}

	if cfg.SupernodeCutoff != 3 {
		t.Fatalf("SupernodeCutoff = %d, want 3", cfg.SupernodeCutoff)
	}

	if cfg.NodeIDBits != 32 {
		t.Fatalf("NodeIDBits = %d, want 32", cfg.NodeIDBits)
	}

	if cfg.Workers != 0 {
		t.Fatalf("Workers = %d, want 0 (GOMAXPROCS)", cfg.Workers)
	}

	if cfg.Addr() != "127.0.0.1:3040" {
		t.Fatalf("Addr = %s", cfg.Addr())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"bad port", "PORT", "notaport", "PORT"},
		{"port out of range", "PORT", "70000", "PORT"},
		{"non-loopback host", "LISTEN_HOST", "0.0.0.0", "LISTEN_HOST"},
		{"cutoff zero", "SUPERNODE_CUTOFF", "0", "SUPERNODE_CUTOFF"},
		{"cutoff huge", "SUPERNODE_CUTOFF", "19", "SUPERNODE_CUTOFF"},
		{"bits zero", "NODE_ID_BITS", "0", "NODE_ID_BITS"},
		{"bits too wide", "NODE_ID_BITS", "33", "NODE_ID_BITS"},
		{"negative workers", "WORKERS", "-1", "WORKERS"},
		{"cors wildcard", "CORS_ORIGINS", "*", "CORS_ORIGINS"},
		{"cors glob", "CORS_ORIGINS", "http://*.example.com", "CORS_ORIGINS"},
		{"cors no scheme", "CORS_ORIGINS", "example.com", "CORS_ORIGINS"},
		{"bad log level", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			if err == nil {
				t.Fatal("Load accepted an invalid value")
			}

			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTrimsCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.example.com, http://b.example.com")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example.com" {
		t.Fatalf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoadTuningOverrides(t *testing.T) {
	t.Setenv("SUPERNODE_CUTOFF", "2")
	t.Setenv("NODE_ID_BITS", "24")
	t.Setenv("WORKERS", "8")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SupernodeCutoff != 2 || cfg.NodeIDBits != 24 || cfg.Workers != 8 {
		t.Fatalf("tuning = %+v", cfg)
	}
}
