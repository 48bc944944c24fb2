package resolve

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/internal/txgen"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// TestResolve_BreaksCycleThroughNonGoalUnit: C After+AddStart -> B;
// B After+AddStartNonreq -> A; A After -> C. A is the only
// non-goal-required unit on the cycle, so its jobs are removed and the
// transaction becomes acyclic.
func TestResolve_BreaksCycleThroughNonGoalUnit(t *testing.T) {
	g := graph.New(slog.Default())
	mustEdge(t, g, "c", sched.RelAfter|sched.RelAddStart, "c", "b")
	mustEdge(t, g, "b", sched.RelAfter|sched.RelAddStartNonreq, "b", "a")
	mustEdge(t, g, "a", sched.RelAfter, "a", "c")

	gen := txgen.New(g, slog.Default())
	c := g.Find("c")
	tx, _ := gen.Generate(c, sched.OpStart)

	require.NoError(t, Resolve(tx))

	a := g.Find("a")
	assert.Empty(t, tx.JobsFor(a), "unit a should have been removed to break the cycle")
	b := g.Find("b")
	assert.Len(t, tx.JobsFor(b), 1, "unit b should retain its job")
}

// TestResolve_AllGoalRequiredCycleFails: a cycle where every unit is
// goal_required is unresolvable, since there is no unit safe to drop.
func TestResolve_AllGoalRequiredCycleFails(t *testing.T) {
	g := graph.New(slog.Default())
	mustEdge(t, g, "m", sched.RelAfter|sched.RelAddStart, "m", "n")
	mustEdge(t, g, "n", sched.RelAfter|sched.RelAddStart, "n", "m")

	gen := txgen.New(g, slog.Default())
	m := g.Find("m")
	tx, _ := gen.Generate(m, sched.OpStart)

	err := Resolve(tx)
	require.Error(t, err)
	assert.True(t, schederr.IsCode(err, schederr.CodeCycleUnresolvable), "got %v, want CycleUnresolvable", err)
}

// TestResolve_MergeUnresolvable: Start(U) and Stop(U) both goal_required
// cannot merge.
func TestResolve_MergeUnresolvable(t *testing.T) {
	g := graph.New(slog.Default())
	u := g.GetOrPlaceholder("u")

	tx := sched.NewTransaction()
	gen := txgen.New(g, slog.Default())
	gen.Seed(tx, u, sched.OpStart, true)
	gen.Seed(tx, u, sched.OpStop, true)

	err := Resolve(tx)
	require.Error(t, err)
	assert.True(t, schederr.IsCode(err, schederr.CodeMergeUnresolvable), "got %v, want MergeUnresolvable", err)
}

// TestMerge_IdempotentAndCommutative: merge is idempotent (merging an op
// with itself is a no-op) and commutative (order of merge doesn't matter).
func TestMerge_IdempotentAndCommutative(t *testing.T) {
	ops := []sched.JobOp{
		sched.OpStart, sched.OpVerify, sched.OpStop, sched.OpReload, sched.OpRestart,
		sched.OpTryStart, sched.OpTryRestart, sched.OpTryReload, sched.OpReloadOrStart, sched.OpRestartOrStart,
	}
	for _, op := range ops {
		got, ok := merge(op, op)
		assert.True(t, ok, "merge(%s, %s) should succeed", op, op)
		assert.Equal(t, op, got, "merge(%s, %s)", op, op)
	}
	for _, a := range ops {
		for _, b := range ops {
			ab, okAB := merge(a, b)
			ba, okBA := merge(b, a)
			assert.Equal(t, okAB, okBA, "merge ok not commutative for (%s, %s)", a, b)
			assert.Equal(t, ab, ba, "merge result not commutative for (%s, %s)", a, b)
		}
	}
}

func mustEdge(t *testing.T, g *graph.Graph, owner sched.UnitID, rel sched.Relation, from, to sched.UnitID) {
	t.Helper()
	if _, err := g.AddEdge(owner, rel, from, to); err != nil {
		t.Fatalf("AddEdge(%s -> %s): %v", from, to, err)
	}
}
