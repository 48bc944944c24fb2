package sched

// UnitID is an alias name. A unit may own several; equality is name
// equality.
type UnitID string

// Unit is a schedulable object: a node in the object graph identified by
// one or more aliases.
type Unit struct {
	// Aliases is ordered; Aliases[0] is the principal alias.
	Aliases []UnitID
	State   UnitState
	// Type names the restarter class registered to handle this unit
	// (e.g. "target", "service").
	Type string

	// OutEdges are owned by this unit: it is the From node.
	OutEdges []*Edge
	// InEdges are non-owning back-references for reverse traversal: this
	// unit is the To node of each.
	InEdges []*Edge
}

// NewUnit creates a placeholder unit with a single alias and
// UnitUninitialised state.
func NewUnit(alias UnitID) *Unit {
	return &Unit{
		Aliases: []UnitID{alias},
		State:   UnitUninitialised,
	}
}

// Principal returns the first-registered alias, or "" if the unit has none
// (which never happens for a live unit).
func (u *Unit) Principal() UnitID {
	if len(u.Aliases) == 0 {
		return ""
	}
	return u.Aliases[0]
}

// HasAlias reports whether id is one of this unit's aliases.
func (u *Unit) HasAlias(id UnitID) bool {
	for _, a := range u.Aliases {
		if a == id {
			return true
		}
	}
	return false
}

// AddAlias appends id to the unit's alias list if not already present.
func (u *Unit) AddAlias(id UnitID) {
	if !u.HasAlias(id) {
		u.Aliases = append(u.Aliases, id)
	}
}

// removeInEdge deletes edge from InEdges by identity, if present.
func (u *Unit) removeInEdge(edge *Edge) {
	for i, e := range u.InEdges {
		if e == edge {
			u.InEdges = append(u.InEdges[:i], u.InEdges[i+1:]...)
			return
		}
	}
}
