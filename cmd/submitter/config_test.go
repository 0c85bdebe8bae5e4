package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crpt-gateway/client/submission"
	"crpt-gateway/client/submission/domain"

	"github.com/urfave/cli/v2"
)

func validConfig() config {
	return config{
		url:     "https://ismp.crpt.ru/api/v3/lk/documents/create",
		limit:   5,
		window:  time.Second,
		workers: 10,
		copies:  10,
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(*config){
		"empty url":                  func(c *config) { c.url = "" },
		"relative url":               func(c *config) { c.url = "/documents" },
		"zero limit":                 func(c *config) { c.limit = 0 },
		"zero window":                func(c *config) { c.window = 0 },
		"negative workers":           func(c *config) { c.workers = -1 },
		"zero copies":                func(c *config) { c.copies = 0 },
		"negative timeout":           func(c *config) { c.acquireTimeout = -time.Second },
		"negative in-flight timeout": func(c *config) { c.inFlightTimeout = -time.Second },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			if err := cfg.validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	got, err := parseHeaders([]string{"Authorization: Bearer abc", " X-Client=demo ", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["Authorization"] != "Bearer abc" || got["X-Client"] != "demo" || len(got) != 2 {
		t.Fatalf("unexpected headers: %v", got)
	}

	if _, err := parseHeaders([]string{"no-separator"}); err == nil {
		t.Fatalf("expected error for header without separator")
	}
	if _, err := parseHeaders([]string{": value"}); err == nil {
		t.Fatalf("expected error for header without name")
	}
}

func TestLoadDocuments_DefaultSample(t *testing.T) {
	docs, err := loadDocuments("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].DocType != "LP_INTRODUCE_GOODS" || len(docs[0].Products) != 1 {
		t.Fatalf("unexpected sample document: %+v", docs)
	}
}

func TestLoadDocuments_YAMLList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.yaml")
	content := `
- doc_id: first
  importRequest: true
  products:
    - uit_code: U1
      tnved_code: T1
- doc_id: second
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	docs, err := loadDocuments(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[0].DocID != "first" || docs[1].DocID != "second" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
	if !docs[0].ImportRequest || len(docs[0].Products) != 1 || docs[0].Products[0].UitCode != "U1" {
		t.Fatalf("unexpected first document: %+v", docs[0])
	}
}

func TestLoadDocuments_JSONSingle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	content := `{"doc_id": "json-doc", "reg_number": "R1", "products": [{"owner_inn": "123"}]}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	docs, err := loadDocuments(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].DocID != "json-doc" || docs[0].RegNumber != "R1" || docs[0].Products[0].OwnerINN != "123" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
}

func TestLoadDocuments_Errors(t *testing.T) {
	if _, err := loadDocuments(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	_ = os.WriteFile(empty, []byte("[]"), 0o600)
	if _, err := loadDocuments(empty); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

func TestExpand(t *testing.T) {
	docs, _ := loadDocuments("")
	all := expand(docs, 3)
	if len(all) != 3 {
		t.Fatalf("expected 3 submissions, got %d", len(all))
	}
	for _, d := range all {
		if d != docs[0] {
			t.Fatalf("expected copies to reuse the same document")
		}
	}
}

func TestReadConfig_HeadersFromEnvKeepCommas(t *testing.T) {
	t.Setenv("CRPT_HEADERS", "Authorization: Bearer abc\nAccept: application/json, text/plain")
	t.Setenv("IN_FLIGHT_TIMEOUT", "3s")

	var got config
	app := &cli.App{
		Name:               "submitter",
		Flags:              flags(),
		SliceFlagSeparator: headerSeparator,
		Action: func(c *cli.Context) error {
			cfg, err := readConfig(c)
			got = cfg
			return err
		},
	}
	if err := app.Run([]string{"submitter"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.headers) != 2 {
		t.Fatalf("expected 2 headers, got %v", got.headers)
	}
	if v := got.headers["Accept"]; v != "application/json, text/plain" {
		t.Fatalf("expected Accept with comma kept, got %q", v)
	}
	if v := got.headers["Authorization"]; v != "Bearer abc" {
		t.Fatalf("unexpected Authorization %q", v)
	}
	if got.inFlightTimeout != 3*time.Second || got.acquireTimeout != 0 {
		t.Fatalf("expected independent timeouts, got in-flight=%s acquire=%s", got.inFlightTimeout, got.acquireTimeout)
	}
}

func TestCountAborted(t *testing.T) {
	results := []submission.Result{
		{Index: 0},
		{Index: 1, Err: fmt.Errorf("admission: %w", domain.ErrGateClosed)},
		{Index: 2, Err: fmt.Errorf("%w: %w", submission.ErrNoSlot, context.Canceled)},
		{Index: 3, Err: fmt.Errorf("%w: %w", submission.ErrNoSlot, context.DeadlineExceeded)},
		{Index: 4, Err: &submission.RemoteRejectedError{Status: 429}},
		{Index: 5, Err: errors.New("boom")},
	}
	if got := countAborted(results); got != 2 {
		t.Fatalf("expected 2 aborted, got %d", got)
	}
}
