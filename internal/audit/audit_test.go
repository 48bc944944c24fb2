package audit

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := Open(":memory:", logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordsDispatchAndCompletion(t *testing.T) {
	s := testStore(t)
	tx := sched.NewTransaction()
	unit := sched.NewUnit("webapp.service")
	job := sched.NewJob(unit, sched.OpStart)
	job.ID = 1

	s.RecordDispatch(tx, job)
	job.State = sched.JobSuccess
	s.RecordCompletion(tx, job)

	events, err := s.RecentForUnit(context.Background(), "webapp.service", 10)
	if err != nil {
		t.Fatalf("RecentForUnit: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %v, want 2", events)
	}
	if events[0].Phase != "completion" || events[0].Outcome != "SUCCESS" {
		t.Errorf("newest event = %+v, want completion/SUCCESS", events[0])
	}
	if events[1].Phase != "dispatch" {
		t.Errorf("oldest event = %+v, want dispatch", events[1])
	}
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	s := testStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate call: %v", err)
	}
}
