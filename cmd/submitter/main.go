package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crpt-gateway/client/submission"
	"crpt-gateway/client/submission/domain"
	"crpt-gateway/client/submission/infra"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:   "submitter",
		Usage:  "submit documents to the CRPT API through a fixed-window rate gate",
		Flags:  flags(),
		Action: run,

		// valores de header podem ter vírgula (ex: Accept: a, b)
		SliceFlagSeparator: headerSeparator,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := readConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("config error: %v", err), 2)
	}

	logger, err := newLogger(cfg.debug)
	if err != nil {
		return cli.Exit(fmt.Sprintf("logger error: %v", err), 2)
	}
	defer func() { _ = logger.Sync() }()

	docs, err := loadDocuments(cfg.documentsFile)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ctx := c.Context

	gates, err := infra.NewRegistry(cfg.limit, cfg.window, infra.WithRegistryLogger(logger))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer func() { _ = gates.Close() }()
	gates.StartJanitor(ctx)
	// no shutdown, quem ainda espera no gate volta com ErrGateClosed.
	stopClose := context.AfterFunc(ctx, func() { _ = gates.Close() })
	defer stopClose()

	memStats := infra.NewMemoryStatsStore()
	stats := infra.MultiStatsStore{memStats}
	if cfg.statsRedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.statsRedisAddr,
			Password: cfg.statsRedisPassword,
			DB:       cfg.statsRedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return cli.Exit(fmt.Sprintf("redis stats ping error: %v", err), 1)
		}
		stats = append(stats, infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
		))
	}

	var metrics *submission.Metrics
	if cfg.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = submission.NewMetrics(reg)
		srv := startMetricsServer(cfg.metricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	client, err := submission.NewClient(submission.Options{
		Target:          submission.Target{URL: cfg.url, Headers: cfg.headers},
		Gate:            gates.Gate(cfg.url),
		AcquireTimeout:  cfg.acquireTimeout,
		HTTPClient:      &http.Client{Timeout: cfg.httpTimeout},
		MaxInFlight:     cfg.maxInFlight,
		InFlightTimeout: cfg.inFlightTimeout,
		Stats:           stats,
		Metrics:         metrics,
		Logger:          logger,
	})
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	all := expand(docs, cfg.copies)
	logger.Info("submitting documents",
		zap.String("url", cfg.url),
		zap.Int("documents", len(docs)),
		zap.Int("copies", cfg.copies),
		zap.Int("limit", cfg.limit),
		zap.Duration("window", cfg.window),
		zap.Int("workers", cfg.workers),
	)

	start := time.Now()
	results := client.SubmitAll(ctx, all, cfg.workers)
	failed := submission.Failed(results)

	total := memStats.Total()
	logger.Info("submission run finished",
		zap.Int("submitted", len(results)),
		zap.Int("failed", failed),
		zap.Int64("accepted", total.Accepted),
		zap.Int64("rejected", total.Rejected),
		zap.Int64("transport_errors", total.TransportErrors),
		zap.Duration("waited_total", total.Waited),
		zap.Duration("elapsed", time.Since(start)),
	)

	if failed > 0 {
		if aborted := countAborted(results); aborted > 0 {
			logger.Warn("submissions aborted before sending", zap.Int("count", aborted))
		}
		return cli.Exit(fmt.Sprintf("%d of %d submissions failed", failed, len(results)), 1)
	}
	return nil
}

func countAborted(results []submission.Result) int {
	n := 0
	for _, r := range results {
		if errors.Is(r.Err, domain.ErrGateClosed) || errors.Is(r.Err, context.Canceled) {
			n++
		}
	}
	return n
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func startMetricsServer(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))
	return srv
}
