package sched

// Edge is a typed relation from one unit to another. An edge's Relation is
// not changed after creation; installing a unit sets Owner on the edges it
// supplies, and replacing a unit re-points From/To of edges it did not own
// at the new instance (see internal/graph).
type Edge struct {
	// Owner is the unit whose configuration introduced this edge. Needed
	// when reloading a unit: edges it did not own must be preserved if
	// the unit is replaced.
	Owner UnitID
	// Relation is the bitmask of flags this edge carries.
	Relation Relation
	From     UnitID
	To       UnitID
}

// NewEdge constructs an edge. Callers must validate Relation against
// AllRelations before construction; NewEdge itself does not, since it has
// no way to report a GraphInvariant error.
func NewEdge(owner UnitID, relation Relation, from, to UnitID) *Edge {
	return &Edge{Owner: owner, Relation: relation, From: from, To: to}
}

// Normalized returns this edge, or — if it carries the Before bit — the
// equivalent After edge with From and To swapped: Before(a→b) is treated
// as After(b→a). The cycle resolver calls this on every edge
// before building its ordering subgraph, rather than normalizing at graph
// construction time, so that WriteDOT and the admin API still show edges
// exactly as the unit definition declared them.
func (e *Edge) Normalized() *Edge {
	if !e.Relation.Has(RelBefore) {
		return e
	}
	rel := (e.Relation &^ RelBefore) | RelAfter
	return &Edge{Owner: e.Owner, Relation: rel, From: e.To, To: e.From}
}
