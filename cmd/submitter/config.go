package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"crpt-gateway/client/submission"

	"github.com/urfave/cli/v2"
)

type config struct {
	url             string
	headers         map[string]string
	limit           int
	window          time.Duration
	workers         int
	copies          int
	documentsFile   string
	acquireTimeout  time.Duration
	inFlightTimeout time.Duration
	httpTimeout     time.Duration
	maxInFlight     int
	debug           bool
	metricsAddr     string

	statsRedisAddr     string
	statsRedisPassword string
	statsRedisDB       int
	statsPrefix        string
	statsTTL           time.Duration
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "url", Value: submission.DefaultURL, EnvVars: []string{"CRPT_URL"}, Usage: "document creation endpoint"},
		&cli.StringSliceFlag{Name: "header", EnvVars: []string{"CRPT_HEADERS"}, Usage: "extra request header, `NAME: VALUE` (repeatable; in CRPT_HEADERS one header per line)"},
		&cli.IntFlag{Name: "limit", Value: 5, EnvVars: []string{"RATE_LIMIT"}, Usage: "max submissions per window"},
		&cli.DurationFlag{Name: "window", Value: time.Second, EnvVars: []string{"RATE_WINDOW"}, Usage: "window length"},
		&cli.IntFlag{Name: "workers", Value: 10, EnvVars: []string{"SUBMIT_WORKERS"}, Usage: "max concurrent submitters (0 = one per document)"},
		&cli.IntFlag{Name: "copies", Value: 10, EnvVars: []string{"SUBMIT_COPIES"}, Usage: "how many times each document is submitted"},
		&cli.StringFlag{Name: "file", EnvVars: []string{"DOCUMENTS_FILE"}, Usage: "YAML/JSON file with one document or a list (default: built-in sample)"},
		&cli.DurationFlag{Name: "acquire-timeout", EnvVars: []string{"ACQUIRE_TIMEOUT"}, Usage: "max wait for admission (0 = no limit)"},
		&cli.DurationFlag{Name: "in-flight-timeout", EnvVars: []string{"IN_FLIGHT_TIMEOUT"}, Usage: "max wait for an in-flight slot after admission (0 = no limit)"},
		&cli.DurationFlag{Name: "http-timeout", Value: 30 * time.Second, EnvVars: []string{"HTTP_TIMEOUT"}},
		&cli.IntFlag{Name: "max-in-flight", EnvVars: []string{"MAX_IN_FLIGHT"}, Usage: "max simultaneous HTTP calls (0 = no limit)"},
		&cli.StringFlag{Name: "metrics-addr", EnvVars: []string{"METRICS_ADDR"}, Usage: "serve Prometheus metrics on this address"},
		&cli.StringFlag{Name: "stats-redis-addr", EnvVars: []string{"STATS_REDIS_ADDR"}},
		&cli.StringFlag{Name: "stats-redis-password", EnvVars: []string{"STATS_REDIS_PASSWORD"}},
		&cli.IntFlag{Name: "stats-redis-db", EnvVars: []string{"STATS_REDIS_DB"}},
		&cli.StringFlag{Name: "stats-prefix", Value: "crpt:stats", EnvVars: []string{"STATS_PREFIX"}},
		&cli.DurationFlag{Name: "stats-ttl", Value: 24 * time.Hour, EnvVars: []string{"STATS_TTL"}},
		&cli.BoolFlag{Name: "debug", EnvVars: []string{"DEBUG"}, Usage: "debug logging (includes request bodies)"},
	}
}

func readConfig(c *cli.Context) (config, error) {
	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return config{}, err
	}
	cfg := config{
		url:                strings.TrimSpace(c.String("url")),
		headers:            headers,
		limit:              c.Int("limit"),
		window:             c.Duration("window"),
		workers:            c.Int("workers"),
		copies:             c.Int("copies"),
		documentsFile:      c.String("file"),
		acquireTimeout:     c.Duration("acquire-timeout"),
		inFlightTimeout:    c.Duration("in-flight-timeout"),
		httpTimeout:        c.Duration("http-timeout"),
		maxInFlight:        c.Int("max-in-flight"),
		debug:              c.Bool("debug"),
		metricsAddr:        c.String("metrics-addr"),
		statsRedisAddr:     c.String("stats-redis-addr"),
		statsRedisPassword: c.String("stats-redis-password"),
		statsRedisDB:       c.Int("stats-redis-db"),
		statsPrefix:        c.String("stats-prefix"),
		statsTTL:           c.Duration("stats-ttl"),
	}
	return cfg, cfg.validate()
}

func (cfg config) validate() error {
	if cfg.url == "" {
		return errors.New("CRPT_URL is required")
	}
	if u, err := url.Parse(cfg.url); err != nil || u.Host == "" {
		return fmt.Errorf("invalid CRPT_URL %q", cfg.url)
	}
	if cfg.limit <= 0 {
		return errors.New("RATE_LIMIT must be > 0")
	}
	if cfg.window <= 0 {
		return errors.New("RATE_WINDOW must be > 0")
	}
	if cfg.workers < 0 {
		return errors.New("SUBMIT_WORKERS must be >= 0")
	}
	if cfg.copies <= 0 {
		return errors.New("SUBMIT_COPIES must be > 0")
	}
	if cfg.maxInFlight < 0 {
		return errors.New("MAX_IN_FLIGHT must be >= 0")
	}
	if cfg.acquireTimeout < 0 || cfg.inFlightTimeout < 0 || cfg.httpTimeout < 0 {
		return errors.New("timeouts must be >= 0")
	}
	return nil
}

// headerSeparator separa os headers dentro de CRPT_HEADERS. Vírgula e ponto e
// vírgula aparecem em valores de header, quebra de linha não.
const headerSeparator = "\n"

// parseHeaders aceita "Nome: valor" (ou "Nome=valor").
func parseHeaders(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			name, value, ok = strings.Cut(h, "=")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("header must follow NAME: VALUE: %q", h)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
