package resolve

import (
	"fmt"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// orderGraph builds the induced ordering subgraph over the units that have
// jobs in tx: an edge u -> v exists when some edge, normalized so Before
// becomes the equivalent reverse After, carries the After bit and both
// endpoints have jobs in tx.
func orderGraph(tx *sched.Transaction) (units []*sched.Unit, adj map[*sched.Unit][]*sched.Unit) {
	byID := make(map[sched.UnitID]*sched.Unit)
	for u := range tx.Jobs {
		units = append(units, u)
		for _, a := range u.Aliases {
			byID[a] = u
		}
	}

	adj = make(map[*sched.Unit][]*sched.Unit)
	for _, u := range units {
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
			adj[from] = append(adj[from], to)
		}
	}
	return units, adj
}

// detectCycle runs DFS from every unit with a job, returning the first
// cycle found (as the path from the revisited ancestor to the current
// node, inclusive) or nil if the ordering subgraph is acyclic.
func detectCycle(units []*sched.Unit, adj map[*sched.Unit][]*sched.Unit) []*sched.Unit {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[*sched.Unit]int, len(units))
	var path []*sched.Unit
	var cycle []*sched.Unit

	var visit func(u *sched.Unit) bool
	visit = func(u *sched.Unit) bool {
		color[u] = gray
		path = append(path, u)
		for _, v := range adj[u] {
			switch color[v] {
			case gray:
				for i, p := range path {
					if p == v {
						cycle = append([]*sched.Unit(nil), path[i:]...)
						return true
					}
				}
			case white:
				if visit(v) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		color[u] = black
		return false
	}

	for _, u := range units {
		if color[u] == white {
			if visit(u) {
				return cycle
			}
		}
	}
	return nil
}

// essential reports whether any job on u is goal_required or is the
// transaction's objective — the condition that makes a unit ineligible for
// cycle-breaking deletion.
func essential(tx *sched.Transaction, u *sched.Unit) bool {
	for _, j := range tx.JobsFor(u) {
		if j.GoalRequired || j == tx.Objective {
			return true
		}
	}
	return false
}

// resolveCycles repeatedly detects and breaks ordering cycles: walk the
// cycle in reverse, delete the first non-essential unit's job set
// (and transitive required-requirers), then re-run detection. Fails with
// CycleUnresolvable if a detected cycle has no non-essential unit on it.
func resolveCycles(tx *sched.Transaction) error {
	for {
		units, adj := orderGraph(tx)
		cycle := detectCycle(units, adj)
		if cycle == nil {
			return nil
		}

		broke := false
		for i := len(cycle) - 1; i >= 0; i-- {
			u := cycle[i]
			if essential(tx, u) {
				continue
			}
			for _, j := range append([]*sched.Job(nil), tx.JobsFor(u)...) {
				deleteJobAndDependents(tx, j)
			}
			broke = true
			break
		}
		if !broke {
			names := make([]string, len(cycle))
			for i, u := range cycle {
				names[i] = string(u.Principal())
			}
			return schederr.CycleUnresolvable(fmt.Sprintf("every unit on cycle %v is goal-required", names))
		}
	}
}
