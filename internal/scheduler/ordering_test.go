package scheduler

import (
	"context"
	"log/slog"
	"testing"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/reactor"
	"github.com/InitWare/Neo-InitWare/internal/restarter"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// traceRestarter records the unit each Start/Stop call dispatches against,
// in dispatch order, then completes inline — letting a test assert the
// runnability test in order.go actually holds jobs back until their After
// target succeeds, so the dispatch trace stays consistent with every
// declared ordering edge.
type traceRestarter struct {
	completer restarter.Completer
	trace     *[]sched.UnitID
}

func (r *traceRestarter) Type() string { return "service" }

func (r *traceRestarter) Start(_ context.Context, job sched.JobID, unit sched.UnitID) bool {
	*r.trace = append(*r.trace, unit)
	r.completer.JobComplete(job, restarter.OutcomeSuccess)
	return true
}

func (r *traceRestarter) Stop(_ context.Context, job sched.JobID, unit sched.UnitID) bool {
	*r.trace = append(*r.trace, unit)
	r.completer.JobComplete(job, restarter.OutcomeSuccess)
	return true
}

func (r *traceRestarter) Reload(ctx context.Context, job sched.JobID, unit sched.UnitID) bool {
	return r.Start(ctx, job, unit)
}

func (r *traceRestarter) Cancel(context.Context, sched.JobID, sched.UnitID) bool { return false }

func indexOf(trace []sched.UnitID, id sched.UnitID) int {
	for i, v := range trace {
		if v == id {
			return i
		}
	}
	return -1
}

// TestDispatchOrder_HonorsAfterEdge: for x AddStart (required) + After -> y,
// y must be dispatched (and complete) strictly
// before x is dispatched, even though both jobs are Awaiting when the
// initial sweep of the transaction's jobs begins.
func TestDispatchOrder_HonorsAfterEdge(t *testing.T) {
	logger := slog.Default()
	g := graph.New(logger)
	loop := reactor.New(logger)
	registry := restarter.NewRegistry(logger)

	var trace []sched.UnitID
	tr := &traceRestarter{trace: &trace}
	registry.Register(tr)
	s := New(g, registry, loop, DefaultConfig(), logger)
	tr.completer = s

	if _, err := g.AddEdge("x", sched.RelAddStart|sched.RelAfter, "x", "y"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	g.Find("x").Type = "service"
	g.Find("y").Type = "service"

	if _, err := s.Enqueue("x", sched.OpStart); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ix, iy := indexOf(trace, "x"), indexOf(trace, "y")
	if ix == -1 || iy == -1 {
		t.Fatalf("trace missing an expected dispatch: %v", trace)
	}
	if iy >= ix {
		t.Errorf("y dispatched at %d, x at %d; want y strictly before x (x is After y)", iy, ix)
	}
}

// TestDispatchOrder_StopInvertsAfterEdge covers the other direction: when
// the jobs are Stop rather than Start (x PropagatesStopTo + After -> y), the
// After edge's wait is inverted, so the dependent (x) stops before its After
// target (y).
func TestDispatchOrder_StopInvertsAfterEdge(t *testing.T) {
	logger := slog.Default()
	g := graph.New(logger)
	loop := reactor.New(logger)
	registry := restarter.NewRegistry(logger)

	var trace []sched.UnitID
	tr := &traceRestarter{trace: &trace}
	registry.Register(tr)
	s := New(g, registry, loop, DefaultConfig(), logger)
	tr.completer = s

	if _, err := g.AddEdge("x", sched.RelPropagatesStopTo|sched.RelAfter, "x", "y"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	g.Find("x").Type = "service"
	g.Find("y").Type = "service"

	if _, err := s.Enqueue("x", sched.OpStop); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	ix, iy := indexOf(trace, "x"), indexOf(trace, "y")
	if ix == -1 || iy == -1 {
		t.Fatalf("trace missing an expected dispatch: %v", trace)
	}
	if ix >= iy {
		t.Errorf("x dispatched at %d, y at %d; want x strictly before y (Stop inverts the After edge)", ix, iy)
	}
}
