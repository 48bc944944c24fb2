package scheduler

import (
	"github.com/InitWare/Neo-InitWare/internal/resolve"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

// SetState is the event sink's entry point: external code (a process
// supervisor, a socket-activation watcher) reports that unit reached
// newState. successful distinguishes a graceful online→offline transition
// (triggers OnSuccess) from an unexpected one (triggers StopOnStopped) —
// the two share the same (from, to) state pair, so the reporter must say
// which one this transition was; the generic Start/Stop paths built
// through Enqueue never need this because there the outcome is a job's
// own JobState, not an externally-observed fact. See DESIGN.md for the
// reasoning behind this choice.
//
// The bit-to-op table applied here is read off the unit's own out-edges
// ("on unexpected start, start to") rather than the transitioning unit
// reacting to its own in-edges, which would have it react to its own
// edges rather than drive them.
func (s *Scheduler) SetState(id sched.UnitID, newState sched.UnitState, successful bool) error {
	unit := s.graph.GetOrPlaceholder(id)
	old := unit.State
	unit.State = newState

	var rules []bitOpRule
	switch {
	case old == sched.UnitOffline && newState == sched.UnitOnline:
		rules = []bitOpRule{
			{sched.RelStartOnStarted, sched.OpStart},
			{sched.RelTryStartOnStarted, sched.OpTryStart},
			{sched.RelStopOnStarted, sched.OpStop},
		}
	case old == sched.UnitOnline && newState == sched.UnitOffline && successful:
		rules = []bitOpRule{{sched.RelOnSuccess, sched.OpStart}}
	case old == sched.UnitOnline && newState == sched.UnitOffline && !successful:
		rules = []bitOpRule{{sched.RelStopOnStopped, sched.OpStop}}
	case newState == sched.UnitMaintenance:
		rules = []bitOpRule{{sched.RelOnFailure, sched.OpStart}}
	}
	if len(rules) == 0 {
		return nil
	}

	pseudo := sched.NewTransaction()
	seeded := false
	for _, edge := range unit.OutEdges {
		for _, rule := range rules {
			if !edge.Relation.Has(rule.bit) {
				continue
			}
			target := s.graph.GetOrPlaceholder(edge.To)
			s.gen.Seed(pseudo, target, rule.op, true)
			seeded = true
		}
	}
	if !seeded {
		return nil
	}

	return s.mergePseudoTransaction(pseudo)
}

type bitOpRule struct {
	bit sched.Relation
	op  sched.JobOp
}

// mergePseudoTransaction folds pseudo into the head of the transaction
// queue, or enqueues it as a new transaction if the queue is empty.
// Pseudo-transactions go through the same validation and merge pipeline
// as user-initiated ones.
func (s *Scheduler) mergePseudoTransaction(pseudo *sched.Transaction) error {
	if err := resolve.Resolve(pseudo); err != nil {
		return err
	}

	if len(s.queue) == 0 {
		s.queue = append(s.queue, pseudo)
		s.dispatchRunnable(pseudo)
		return nil
	}

	head := s.queue[0]
	for _, job := range pseudo.AllJobs() {
		head.AddJob(job)
	}
	if err := resolve.Resolve(head); err != nil {
		return err
	}
	s.dispatchRunnable(head)
	return nil
}
