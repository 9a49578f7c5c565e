// Command graphfeed runs the graph neighborhood sampling service.
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/graphfeed/graphfeed/internal/api"
	"github.com/graphfeed/graphfeed/internal/config"
	"github.com/graphfeed/graphfeed/internal/graph"
	"github.com/graphfeed/graphfeed/internal/job"
	"github.com/graphfeed/graphfeed/internal/sample"
	"github.com/graphfeed/graphfeed/internal/service"
	"github.com/graphfeed/graphfeed/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("loading configuration")
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("parsing log level")
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog := graph.NewCatalog()
	if cfg.DemoGraph {
		catalog.Register("demo", "ring", demoGraph())
		log.Info("demo graph registered as demo/ring")
	}

	engine := sample.NewEngine(log, sample.Params{
		SupernodeCutoff: cfg.SupernodeCutoff,
		NodeIDBits:      uint(cfg.NodeIDBits),
		Workers:         cfg.Workers,
	})

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	jobs := service.NewJobService(catalog, engine, job.NewManager(log), hub, log)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:         log,
		Hub:         hub,
		Jobs:        jobs,
		CORSOrigins: cfg.CORSOrigins,
		Version:     config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr()).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown")
		}

		serveErr = <-errCh
	case serveErr = <-errCh:
	}

	hub.Shutdown()
	log.Info("stopped")

	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		log.WithError(serveErr).Error("server error")
		os.Exit(1)
	}
}

// demoGraph builds a small in-memory graph for local experimentation: a
// 1000-node ring with a single hub node connected to everything, so that
// supernode handling is exercised out of the box.
func demoGraph() *graph.MemoryGraph {
	b := graph.NewBuilder()

	const n = 1000

	for i := int64(0); i < n; i++ {
		b.AddNode(i, []string{"Node"}, map[string]float64{"seed": float64(i)})
	}

	for i := int64(0); i < n; i++ {
		b.AddRelationship(i, (i+1)%n, map[string]float64{"weight": rand.Float64()})
	}

	// Hub node linked to every ring node.
	b.AddNode(n, []string{"Hub"}, nil)

	for i := int64(0); i < n; i++ {
		b.AddRelationship(n, i, nil)
	}

	return b.Build()
}
