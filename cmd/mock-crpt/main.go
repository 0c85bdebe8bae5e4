package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// mock-crpt é um servidor local que imita o endpoint de criação de documentos,
// com cota por cliente, para validar o submitter sem tocar na API real.
func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	addr := getenvDefault("LISTEN_ADDR", ":8081")
	limit := getenvIntDefault("QUOTA_LIMIT", 5)
	window := getenvDurationDefault("QUOTA_WINDOW", time.Second)
	if limit <= 0 || window <= 0 {
		logger.Fatal("QUOTA_LIMIT and QUOTA_WINDOW must be > 0")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	q := newQuota(limit, window)
	q.startJanitor(ctx, 2*time.Minute)

	s := &server{
		quota:      q,
		logger:     logger,
		failStatus: getenvIntDefault("FAIL_STATUS", 0),
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("mock crpt listening",
		zap.String("addr", addr),
		zap.String("path", createPath),
		zap.Int("quota_limit", limit),
		zap.Duration("quota_window", window),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
