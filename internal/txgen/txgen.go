// Package txgen implements the transaction generator: expanding a
// (unit, op, is_goal) request into the closure of implied jobs under the
// dependency relation, recording requirement links as it goes.
package txgen

import (
	"log/slog"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// Generator expands requests into a Transaction by walking the object
// graph's out-edges.
type Generator struct {
	graph  *graph.Graph
	logger *slog.Logger
}

// New creates a Generator over g.
func New(g *graph.Graph, logger *slog.Logger) *Generator {
	return &Generator{graph: g, logger: logger.With("component", "txgen")}
}

// Generate expands (unit, op) as the transaction's objective and returns
// the resulting (possibly pre-merge, possibly cyclic) Transaction and its
// objective job. Cycle resolution and merge happen in a later phase
// (internal/resolve), matching the original daemon's multi-pass design —
// this function does submission only.
func (g *Generator) Generate(unit *sched.Unit, op sched.JobOp) (*sched.Transaction, *sched.Job) {
	tx := sched.NewTransaction()
	objective := g.submit(tx, unit, op, true, nil, false)
	tx.Objective = objective
	return tx, objective
}

// Seed submits (unit, op) as an additional root of tx — used by the event
// sink to graft pseudo-transaction jobs (from the post-facto relation
// bits, which this package's own Generate never produces) through the
// same expansion logic as a user-initiated request.
func (g *Generator) Seed(tx *sched.Transaction, unit *sched.Unit, op sched.JobOp, goalRequired bool) *sched.Job {
	return g.submit(tx, unit, op, goalRequired, nil, false)
}

// coEnqueueRule describes one row of the co-enqueue relation table.
type coEnqueueRule struct {
	bit      sched.Relation
	triggers []sched.JobOp
	childOp  sched.JobOp
	required bool
}

var coEnqueueRules = []coEnqueueRule{
	{sched.RelAddStart, startLike, sched.OpStart, true},
	{sched.RelAddStartNonreq, startLike, sched.OpStart, false},
	{sched.RelAddVerify, startLike, sched.OpVerify, true},
	{sched.RelAddStop, startLike, sched.OpStop, true},
	{sched.RelAddStopNonreq, startLike, sched.OpStop, false},
	{sched.RelPropagatesStopTo, []sched.JobOp{sched.OpStop}, sched.OpStop, true},
	{sched.RelPropagatesRestartTo, []sched.JobOp{sched.OpRestart, sched.OpTryRestart}, sched.OpTryRestart, true},
	{sched.RelPropagatesReloadTo, []sched.JobOp{sched.OpReload, sched.OpTryReload}, sched.OpTryReload, true},
}

var startLike = []sched.JobOp{sched.OpStart, sched.OpRestart, sched.OpTryRestart}

func opIn(op sched.JobOp, set []sched.JobOp) bool {
	for _, o := range set {
		if o == op {
			return true
		}
	}
	return false
}

// submit is the lookup-or-create step, followed by requirement recording
// and, only on first creation, out-edge traversal: a second submission for
// an already-existing job is a no-op for expansion (it only records or
// strengthens the requirement and may promote goal_required), which is
// what keeps this terminating on a cyclic graph.
func (g *Generator) submit(tx *sched.Transaction, unit *sched.Unit, op sched.JobOp, goalRequired bool, requirer *sched.Job, required bool) *sched.Job {
	existing := findJob(tx, unit, op)
	if existing != nil {
		linkRequirement(requirer, existing, required, goalRequired)
		if requirer == nil && goalRequired {
			existing.GoalRequired = true
		} else if requirer != nil && required && goalRequired {
			existing.GoalRequired = true
		}
		return existing
	}

	job := sched.NewJob(unit, op)
	tx.AddJob(job)
	if requirer == nil {
		job.GoalRequired = goalRequired
	} else {
		job.GoalRequired = goalRequired && required
		requirer.AddRequirement(job, required, goalRequired && required)
	}

	g.logger.Debug("job submitted", "unit", unit.Principal(), "op", op, "goal_required", job.GoalRequired)

	for _, edge := range unit.OutEdges {
		for _, rule := range coEnqueueRules {
			if !edge.Relation.Has(rule.bit) || !opIn(op, rule.triggers) {
				continue
			}
			childUnit := g.graph.GetOrPlaceholder(edge.To)
			g.submit(tx, childUnit, rule.childOp, job.GoalRequired, job, rule.required)
		}
	}

	return job
}

func findJob(tx *sched.Transaction, unit *sched.Unit, op sched.JobOp) *sched.Job {
	for _, j := range tx.JobsFor(unit) {
		if j.Op == op {
			return j
		}
	}
	return nil
}

// linkRequirement records (or strengthens, per the tie-break rule: required
// beats non-required, goal_required is sticky once set) a requirement from
// requirer onto target. A nil requirer means target is itself the
// transaction's direct request, not a dependency edge, so there is nothing
// to link.
func linkRequirement(requirer *sched.Job, target *sched.Job, required, goalRequired bool) {
	if requirer == nil {
		return
	}
	if req := requirer.RequirementOn(target); req != nil {
		if required && !req.Required {
			req.Required = true
		}
		if required && goalRequired {
			req.GoalRequired = true
		}
		return
	}
	requirer.AddRequirement(target, required, goalRequired && required)
}
