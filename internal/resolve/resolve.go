// Package resolve implements the cycle resolver and job merger: it takes
// a freshly-generated, possibly-cyclic, possibly-multi-job-per-unit
// Transaction and reduces it to an acyclic transaction with at most one job
// per unit, or fails with a structured error.
package resolve

import (
	"fmt"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// Resolve runs the two-phase pipeline in the order the reference engine
// does: verify-and-repair acyclicity first, merge second. Merge never runs
// on a transaction that still has an unresolved cycle.
func Resolve(tx *sched.Transaction) error {
	if err := resolveCycles(tx); err != nil {
		return err
	}
	return mergeAll(tx)
}

// mergeAll collapses every unit's pending job list down to at most one job,
// per the merge matrix in merge.go and the Invalid-merge tie-break rules.
func mergeAll(tx *sched.Transaction) error {
	units := make([]*sched.Unit, 0, len(tx.Jobs))
	for u := range tx.Jobs {
		units = append(units, u)
	}

	for _, u := range units {
		if err := mergeUnit(tx, u); err != nil {
			return err
		}
	}
	return nil
}

func mergeUnit(tx *sched.Transaction, u *sched.Unit) error {
	jobs := append([]*sched.Job(nil), tx.JobsFor(u)...)
	if len(jobs) <= 1 {
		return nil
	}

	survivor := jobs[0]
	for _, j := range jobs[1:] {
		if survivor == nil {
			survivor = j
			continue
		}

		op, ok := merge(survivor.Op, j.Op)
		if ok {
			survivor.Op = op
			moveRequirements(j, survivor)
			tx.RemoveJob(j)
			continue
		}

		switch {
		case survivor.GoalRequired && j.GoalRequired:
			return schederr.MergeUnresolvable(string(u.Principal()), fmt.Sprintf("cannot merge %s and %s: both goal-required", survivor.Op, j.Op))

		case survivor.GoalRequired || j.GoalRequired:
			if j.GoalRequired {
				deleteJobAndDependents(tx, survivor)
				survivor = j
			} else {
				deleteJobAndDependents(tx, j)
			}

		default:
			toDelete, keep := j, survivor
			if survivor.Op == sched.OpStop {
				toDelete, keep = survivor, j
			}
			deleteJobAndDependents(tx, toDelete)
			survivor = keep
		}
	}
	return nil
}
