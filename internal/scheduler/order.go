package scheduler

import "github.com/InitWare/Neo-InitWare/pkg/sched"

// orderEdge is one entry of the induced ordering subgraph: from must
// (ordinarily) run after to, unless from's own job inverts the relation.
type orderEdge struct {
	from *sched.Unit
	to   *sched.Unit
}

// orderEdges builds the induced ordering subgraph over units that have jobs
// in tx, normalizing Before into the equivalent reverse After edge so the
// rest of the dispatcher only ever reasons about one relation.
func orderEdges(tx *sched.Transaction) []orderEdge {
	byID := make(map[sched.UnitID]*sched.Unit)
	for u := range tx.Jobs {
		for _, a := range u.Aliases {
			byID[a] = u
		}
	}

	var edges []orderEdge
	for u := range tx.Jobs {
		for _, e := range u.OutEdges {
			n := e.Normalized()
			if !n.Relation.Has(sched.RelAfter) {
				continue
			}
			from, ok := byID[n.From]
			if !ok {
				continue
			}
			to, ok := byID[n.To]
			if !ok {
				continue
			}
			edges = append(edges, orderEdge{from: from, to: to})
		}
	}
	return edges
}

// inverted reports whether op runs its After edges in reverse (before its
// target, not after).
func inverted(op sched.JobOp) bool {
	return op == sched.OpStop || op == sched.OpRestart
}

// firstJob returns the (post-merge, at most one) job for u in tx, or nil.
func firstJob(tx *sched.Transaction, u *sched.Unit) *sched.Job {
	jobs := tx.JobsFor(u)
	if len(jobs) == 0 {
		return nil
	}
	return jobs[0]
}

// runnable implements the runnability test: j is runnable when Awaiting
// and, for every ordering edge touching j's unit, the implied wait (direct
// if j is not Stop/Restart, reversed onto j if the other side is an
// inverted job ordered before j) is satisfied by either no job existing, a
// Successful job, or the edge simply not applying to j's direction.
func runnable(tx *sched.Transaction, j *sched.Job, edges []orderEdge) bool {
	if j.State != sched.JobAwaiting {
		return false
	}
	u := j.Unit

	for _, e := range edges {
		switch u {
		case e.from:
			if inverted(j.Op) {
				continue // j runs before e.to; not blocked by it
			}
			target := firstJob(tx, e.to)
			if target != nil && target.State != sched.JobSuccess {
				return false
			}
		case e.to:
			other := firstJob(tx, e.from)
			if other != nil && inverted(other.Op) && other.State != sched.JobSuccess {
				return false
			}
		}
	}
	return true
}
