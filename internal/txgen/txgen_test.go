package txgen

import (
	"log/slog"
	"testing"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

func newTestGraph() *graph.Graph {
	return graph.New(slog.Default())
}

// TestGenerate_DependencyClosure: every unit reachable via AddStart edges
// from the requested unit ends up with a Start job in the resulting
// transaction.
func TestGenerate_DependencyClosure(t *testing.T) {
	g := newTestGraph()
	if _, err := g.AddEdge("a", sched.RelAddStart, "a", "b"); err != nil {
		t.Fatalf("AddEdge a->b: %v", err)
	}
	if _, err := g.AddEdge("b", sched.RelAddStart, "b", "c"); err != nil {
		t.Fatalf("AddEdge b->c: %v", err)
	}

	gen := New(g, slog.Default())
	a := g.Find("a")
	tx, objective := gen.Generate(a, sched.OpStart)

	for _, id := range []sched.UnitID{"a", "b", "c"} {
		u := g.Find(id)
		jobs := tx.JobsFor(u)
		if len(jobs) != 1 || jobs[0].Op != sched.OpStart {
			t.Errorf("unit %s: want exactly one Start job, got %v", id, jobs)
		}
	}
	if objective.Unit.Principal() != "a" || objective.Op != sched.OpStart {
		t.Errorf("objective = %+v, want Start(a)", objective)
	}
}

// TestGenerate_RequiredPropagation: a job whose requirement is required
// and whose parent is goal_required is itself goal_required.
func TestGenerate_RequiredPropagation(t *testing.T) {
	g := newTestGraph()
	if _, err := g.AddEdge("x", sched.RelAddStart, "x", "y"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	gen := New(g, slog.Default())
	x := g.Find("x")
	tx, objective := gen.Generate(x, sched.OpStart)

	if !objective.GoalRequired {
		t.Fatalf("objective should be goal_required")
	}
	y := g.Find("y")
	yJob := tx.JobsFor(y)[0]
	if !yJob.GoalRequired {
		t.Errorf("y's job should inherit goal_required through a required AddStart edge")
	}
	req := objective.RequirementOn(yJob)
	if req == nil || !req.Required {
		t.Fatalf("expected a required requirement from x's job onto y's job")
	}
}

// TestGenerate_NonrequiredDoesNotPropagateGoal ensures AddStartNonreq edges
// produce a job that is not itself goal_required even though its parent is.
func TestGenerate_NonrequiredDoesNotPropagateGoal(t *testing.T) {
	g := newTestGraph()
	if _, err := g.AddEdge("x", sched.RelAddStartNonreq, "x", "y"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	gen := New(g, slog.Default())
	x := g.Find("x")
	tx, _ := gen.Generate(x, sched.OpStart)

	y := g.Find("y")
	yJob := tx.JobsFor(y)[0]
	if yJob.GoalRequired {
		t.Errorf("non-required edge must not propagate goal_required")
	}
}

// TestGenerate_TerminatesOnCycle ensures a cyclic AddStart graph does not
// cause unbounded recursion: the second submission on an already-visited
// (unit, op) pair is a no-op for expansion.
func TestGenerate_TerminatesOnCycle(t *testing.T) {
	g := newTestGraph()
	if _, err := g.AddEdge("p", sched.RelAddStart, "p", "q"); err != nil {
		t.Fatalf("AddEdge p->q: %v", err)
	}
	if _, err := g.AddEdge("q", sched.RelAddStart, "q", "p"); err != nil {
		t.Fatalf("AddEdge q->p: %v", err)
	}

	gen := New(g, slog.Default())
	p := g.Find("p")

	tx, _ := gen.Generate(p, sched.OpStart)
	if len(tx.AllJobs()) != 2 {
		t.Errorf("want exactly 2 jobs (p, q), got %d", len(tx.AllJobs()))
	}
}

// TestGenerate_PropagatesRestartTo covers the Restart-family co-enqueue
// row: PropagatesRestartTo turns a Restart on the parent into a
// TryRestart on the target.
func TestGenerate_PropagatesRestartTo(t *testing.T) {
	g := newTestGraph()
	if _, err := g.AddEdge("z", sched.RelPropagatesRestartTo, "z", "w"); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	gen := New(g, slog.Default())
	z := g.Find("z")
	tx, objective := gen.Generate(z, sched.OpRestart)

	if objective.Op != sched.OpRestart {
		t.Fatalf("objective op = %s, want Restart", objective.Op)
	}
	w := g.Find("w")
	wJobs := tx.JobsFor(w)
	if len(wJobs) != 1 || wJobs[0].Op != sched.OpTryRestart {
		t.Errorf("w jobs = %v, want a single TryRestart", wJobs)
	}
}
