package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/InitWare/Neo-InitWare/internal/adminapi"
	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/restarter"
	"github.com/InitWare/Neo-InitWare/internal/scheduler"
)

// startTestServer starts a live admin API backed by a real scheduler and
// returns its base URL, mirroring the reference engine's cli_test.go.
func startTestServer(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))

	g := graph.New(logger)
	loop := reactor.New(logger)
	registry := restarter.NewRegistry(logger)
	sched := scheduler.New(g, registry, loop, scheduler.DefaultConfig(), logger)
	registry.Register(restarter.NewTargetRestarter(loop, sched, logger))

	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	g.GetOrPlaceholder("solo.target").Type = "target"

	srv := adminapi.New(g, sched, loop, nil, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestClient_GetUnitsAndPostStart(t *testing.T) {
	url := startTestServer(t)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	c := NewClient(url, logger)

	resp, err := c.Get("/api/v1/units/")
	if err != nil {
		t.Fatalf("Get units: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("status = %q, want ok", resp.Status)
	}

	resp, err = c.Post("/api/v1/units/solo.target/start", nil)
	if err != nil {
		t.Fatalf("Post start: %v", err)
	}
	var tx transactionView
	if err := json.Unmarshal(resp.Data, &tx); err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	if tx.ID == "" {
		t.Errorf("transaction id empty")
	}
}
