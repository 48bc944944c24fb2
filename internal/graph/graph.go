// Package graph implements the object graph: unit lookup, edge creation,
// and unit installation/replacement, plus the load queue of placeholder
// units discovered during traversal.
package graph

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/InitWare/Neo-InitWare/pkg/sched"
	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// Graph owns every unit and alias in the scheduler, plus the queue of
// aliases referenced but not yet hydrated.
type Graph struct {
	logger *slog.Logger

	units   map[*sched.Unit]struct{}
	aliases map[sched.UnitID]*sched.Unit

	// loadQueue holds aliases appended by get_or_placeholder, in
	// first-referenced order, awaiting hydration.
	loadQueue []sched.UnitID
}

// New creates an empty Graph.
func New(logger *slog.Logger) *Graph {
	return &Graph{
		logger:  logger.With("component", "graph"),
		units:   make(map[*sched.Unit]struct{}),
		aliases: make(map[sched.UnitID]*sched.Unit),
	}
}

// Find returns the unit registered under id, or nil.
func (g *Graph) Find(id sched.UnitID) *sched.Unit {
	return g.aliases[id]
}

// Units returns every unit currently in the graph (placeholder or
// hydrated), in no particular order.
func (g *Graph) Units() []*sched.Unit {
	out := make([]*sched.Unit, 0, len(g.units))
	for u := range g.units {
		out = append(out, u)
	}
	return out
}

// GetOrPlaceholder returns the unit registered under id, creating an
// UnitUninitialised placeholder (and queueing it for load) if absent.
func (g *Graph) GetOrPlaceholder(id sched.UnitID) *sched.Unit {
	if u, ok := g.aliases[id]; ok {
		return u
	}
	u := sched.NewUnit(id)
	g.units[u] = struct{}{}
	g.aliases[id] = u
	g.loadQueue = append(g.loadQueue, id)
	g.logger.Debug("unit placeholder created", "unit", id)
	return u
}

// AddEdge hydrates both endpoints as placeholders if absent, queueing their
// names for loading, then installs a new owned Edge from → to. relation
// must be a subset of sched.AllRelations or a GraphInvariant error is
// returned and the graph is left unchanged.
func (g *Graph) AddEdge(owner sched.UnitID, relation sched.Relation, from, to sched.UnitID) (*sched.Edge, error) {
	if relation&^sched.AllRelations != 0 {
		return nil, schederr.GraphInvariant(string(from), fmt.Sprintf("unknown relation bits in %#x", uint16(relation)))
	}
	fromUnit := g.GetOrPlaceholder(from)
	g.GetOrPlaceholder(to) // hydrate the target even though the edge is stored only on fromUnit

	edge := sched.NewEdge(owner, relation, from, to)
	fromUnit.OutEdges = append(fromUnit.OutEdges, edge)
	g.linkInEdge(edge)
	return edge, nil
}

// linkInEdge appends edge to every alias-resolved unit matching edge.To's
// InEdges back-reference list. Normally this is exactly one unit.
func (g *Graph) linkInEdge(edge *sched.Edge) {
	if toUnit, ok := g.aliases[edge.To]; ok {
		toUnit.InEdges = append(toUnit.InEdges, edge)
	}
}

// Load installs a unit under the given aliases, replacing any existing
// unit registered under any of them. Edges the old unit did not own are
// migrated to the new instance (re-parented); edges it did own are
// dropped along with it. The supplied out-edges are then installed as new
// owned edges of the new unit, each target being hydrated as a placeholder
// if absent and given a reverse link in its InEdges. Load takes no separate
// in-edge list.
//
// This is the Loader contract's single entry point: a loader collaborator
// calls Load exactly once per load_unit(name) invocation.
func (g *Graph) Load(aliases []sched.UnitID, outEdges []*sched.Edge, unitType string) (*sched.Unit, error) {
	if len(aliases) == 0 {
		return nil, schederr.GraphInvariant("", "Load called with no aliases")
	}

	principal := aliases[0]
	neu := &sched.Unit{Aliases: append([]sched.UnitID(nil), aliases...), State: sched.UnitOffline, Type: unitType}

	// Find any existing unit(s) under the given aliases and migrate their
	// non-owned in-edges/out-edges to neu before dropping them.
	replaced := make(map[*sched.Unit]struct{})
	for _, a := range aliases {
		if old, ok := g.aliases[a]; ok {
			replaced[old] = struct{}{}
		}
	}
	for old := range replaced {
		g.migrateNonOwned(old, neu)
		delete(g.units, old)
	}

	g.units[neu] = struct{}{}
	for _, a := range aliases {
		g.aliases[a] = neu
	}

	for _, e := range outEdges {
		e.Owner = principal
		neu.OutEdges = append(neu.OutEdges, e)
		g.GetOrPlaceholder(e.To)
		g.linkInEdge(e)
	}

	g.logger.Info("unit loaded", "unit", principal, "aliases", len(aliases), "type", unitType)
	return neu, nil
}

// migrateNonOwned re-parents edges old did not own — both outgoing (edges
// whose Owner differs from old's principal alias, i.e. another unit's
// config introduced them with old as the From node... in practice these
// arise only as in-edges pointing at old) — onto neu. Edges old owned
// outright are left to be garbage collected with old.
func (g *Graph) migrateNonOwned(old, neu *sched.Unit) {
	for _, e := range old.InEdges {
		if e.To == old.Principal() {
			e.To = neu.Principal()
		}
		neu.InEdges = append(neu.InEdges, e)
	}
	old.InEdges = nil

	for _, e := range old.OutEdges {
		if sched.UnitID(e.Owner) == old.Principal() {
			continue // owned by old; dies with it
		}
		if e.From == old.Principal() {
			e.From = neu.Principal()
		}
		neu.OutEdges = append(neu.OutEdges, e)
	}
}

// DispatchLoadQueue asks load for every queued alias in turn, in
// first-referenced order. load is the Loader collaborator's single entry
// point, expected to call g.Load exactly once per invocation (directly or
// via a goroutine that defers back onto the reactor). Re-entrant: aliases
// queued by a load call made during this pass are processed before
// DispatchLoadQueue returns.
func (g *Graph) DispatchLoadQueue(load func(id sched.UnitID) error) error {
	for len(g.loadQueue) > 0 {
		id := g.loadQueue[0]
		g.loadQueue = g.loadQueue[1:]
		if err := load(id); err != nil {
			return fmt.Errorf("load %s: %w", id, err)
		}
	}
	return nil
}

// WriteDOT renders the graph as a Graphviz DOT document for operator
// debugging, mirroring the original daemon's to_graph(ostream&) dump. This
// is unversioned debug output, not a stable wire format.
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "digraph units {"); err != nil {
		return err
	}
	for u := range g.units {
		for _, e := range u.OutEdges {
			if _, err := fmt.Fprintf(w, "\t%q -> %q [label=%q];\n", e.From, e.To, e.Relation.String()); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
