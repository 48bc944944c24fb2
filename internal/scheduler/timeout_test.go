package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/restarter"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// hangingRestarter accepts every call and never reports completion itself,
// standing in for a backend that has wedged, to exercise the per-job timer
// armed in dispatch: a job that outruns its timeout is failed with
// JobTimeout, not left running forever.
type hangingRestarter struct{}

func (hangingRestarter) Type() string { return "service" }
func (hangingRestarter) Start(context.Context, sched.JobID, sched.UnitID) bool  { return true }
func (hangingRestarter) Stop(context.Context, sched.JobID, sched.UnitID) bool   { return true }
func (hangingRestarter) Reload(context.Context, sched.JobID, sched.UnitID) bool { return true }
func (hangingRestarter) Cancel(context.Context, sched.JobID, sched.UnitID) bool { return true }

// runOnLoop marshals fn onto the reactor goroutine and blocks until it has
// run, mirroring internal/adminapi's synchronization pattern for calling
// scheduler methods that must execute on the loop's own goroutine.
func runOnLoop(loop *reactor.Loop, fn func()) {
	done := make(chan struct{})
	loop.Defer(func() {
		fn()
		close(done)
	})
	<-done
}

// TestJobTimeout_MarksJobTimedOut exercises a job that outruns its
// timeout, which must land in JobTimeout rather than hanging forever.
func TestJobTimeout_MarksJobTimedOut(t *testing.T) {
	logger := slog.Default()
	g := graph.New(logger)
	loop := reactor.New(logger)
	registry := restarter.NewRegistry(logger)
	registry.Register(hangingRestarter{})

	cfg := Config{DefaultJobTimeout: 15 * time.Millisecond}
	s := New(g, registry, loop, cfg, logger)

	u := g.GetOrPlaceholder("wedged")
	u.Type = "service"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	var tx *sched.Transaction
	runOnLoop(loop, func() {
		var err error
		tx, err = s.Enqueue("wedged", sched.OpStart)
		if err != nil {
			t.Errorf("Enqueue: %v", err)
		}
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var state sched.JobState
		runOnLoop(loop, func() {
			state = tx.JobsFor(u)[0].State
		})
		if state == sched.JobTimeout {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached JobTimeout within the deadline")
}
