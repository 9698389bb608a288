package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ppiankov/nifrel/internal/cache"
	"github.com/ppiankov/nifrel/internal/metric"
	"github.com/ppiankov/nifrel/internal/model"
	"github.com/ppiankov/nifrel/internal/resolve"
	"github.com/ppiankov/nifrel/internal/sparql"
	"github.com/ppiankov/nifrel/internal/util"
	"github.com/ppiankov/nifrel/internal/worker"
)

// newResolveService wires cache, endpoint client, politeness and metrics together
func newResolveService(cfg *model.Config, m *metric.Metrics) (*resolve.Service, error) {
	idCache, err := cache.Open(cfg.Cache.Path,
		cache.WithAutoFlush(cfg.Cache.AutoFlush),
		cache.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	transport := util.NewTransport(cfg.Endpoint.HTTPProxy, cfg.Endpoint.HTTPSProxy, cfg.Endpoint.NoProxy)

	var robots *util.RobotsChecker
	if cfg.Endpoint.RespectRobots {
		robots = util.NewRobotsChecker(cfg.Endpoint.UserAgent, cfg.Endpoint.Timeout, transport)
	}

	client, err := sparql.NewClient(sparql.Options{
		Endpoint:   cfg.Endpoint.URL,
		Timeout:    cfg.Endpoint.Timeout,
		UserAgent:  cfg.Endpoint.UserAgent,
		MaxRetries: cfg.Endpoint.MaxRetries,
		Transport:  transport,
		Limiter:    worker.NewLimiter(cfg.Endpoint.RequestsPerSecond, cfg.Endpoint.Burst),
		Robots:     robots,
		Logger:     logger,
		Metrics:    m,
	})
	if err != nil {
		return nil, err
	}

	return resolve.NewService(idCache, client,
		resolve.WithLogger(logger),
		resolve.WithMetrics(m)), nil
}

// serveMetrics exposes m on addr until the returned stop function is called.
// An empty addr serves nothing.
func serveMetrics(addr string, m *metric.Metrics) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	fmt.Fprintf(os.Stderr, "Metrics: http://%s/metrics\n", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
