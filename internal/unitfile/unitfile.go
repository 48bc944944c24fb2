// Package unitfile implements the Loader contract as a thin YAML
// unit-definition reader: one file per unit, named after its principal
// alias. The scheduler core stays agnostic to on-disk layout and parsing;
// this is the concrete Loader that drives DispatchLoadQueue, kept
// deliberately small.
package unitfile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
	"github.com/InitWare/Neo-InitWare/pkg/schederr"
)

// edgeSpec is one edge declared by a unit file, always owned by (From) the
// declaring unit.
type edgeSpec struct {
	To       string   `yaml:"to"`
	Relation []string `yaml:"relation"`
}

// fileSpec is the on-disk shape of a unit definition.
type fileSpec struct {
	Aliases []string   `yaml:"aliases"`
	Type    string     `yaml:"type"`
	Edges   []edgeSpec `yaml:"edges"`
}

// Loader reads unit definitions from a directory of YAML files, one per
// unit, named "<principal-alias>.yaml".
type Loader struct {
	dir    string
	graph  *graph.Graph
	logger *slog.Logger
}

// New creates a Loader rooted at dir.
func New(dir string, g *graph.Graph, logger *slog.Logger) *Loader {
	return &Loader{dir: dir, graph: g, logger: logger.With("component", "unitfile")}
}

// Load implements scheduler.Loader: it reads "<id>.yaml" from the loader's
// directory and, if found, calls (*graph.Graph).Load exactly once. A
// missing file is not an error — the placeholder stays unmanaged, exactly
// as an alias referenced only as an edge target but never itself defined.
func (l *Loader) Load(id sched.UnitID) error {
	path := filepath.Join(l.dir, string(id)+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("no unit file, leaving placeholder unmanaged", "unit", id)
			return nil
		}
		return schederr.Wrap(schederr.CodeOsError, string(id), "read unit file", err)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return schederr.Wrap(schederr.CodeOsError, string(id), "parse unit file", err)
	}
	if len(spec.Aliases) == 0 {
		spec.Aliases = []string{string(id)}
	}

	aliases := make([]sched.UnitID, len(spec.Aliases))
	for i, a := range spec.Aliases {
		aliases[i] = sched.UnitID(a)
	}
	principal := aliases[0]

	edges := make([]*sched.Edge, 0, len(spec.Edges))
	for _, es := range spec.Edges {
		rel, err := parseRelation(es.Relation)
		if err != nil {
			return schederr.Wrap(schederr.CodeGraphInvariant, string(id), "unit file edge to "+es.To, err)
		}
		edges = append(edges, sched.NewEdge(principal, rel, principal, sched.UnitID(es.To)))
	}

	l.logger.Info("loading unit file", "unit", id, "path", path, "edges", len(edges))
	_, err = l.graph.Load(aliases, edges, spec.Type)
	return err
}

var relationByName = map[string]sched.Relation{
	"AddStart":            sched.RelAddStart,
	"AddStartNonreq":      sched.RelAddStartNonreq,
	"AddVerify":           sched.RelAddVerify,
	"AddStop":             sched.RelAddStop,
	"AddStopNonreq":       sched.RelAddStopNonreq,
	"PropagatesStopTo":    sched.RelPropagatesStopTo,
	"PropagatesRestartTo": sched.RelPropagatesRestartTo,
	"PropagatesReloadTo":  sched.RelPropagatesReloadTo,
	"StartOnStarted":      sched.RelStartOnStarted,
	"TryStartOnStarted":   sched.RelTryStartOnStarted,
	"StopOnStarted":       sched.RelStopOnStarted,
	"StopOnStopped":       sched.RelStopOnStopped,
	"OnSuccess":           sched.RelOnSuccess,
	"OnFailure":           sched.RelOnFailure,
	"After":               sched.RelAfter,
	"Before":              sched.RelBefore,
}

func parseRelation(names []string) (sched.Relation, error) {
	var rel sched.Relation
	for _, n := range names {
		bit, ok := relationByName[n]
		if !ok {
			return 0, fmt.Errorf("unknown relation %q", n)
		}
		rel |= bit
	}
	if rel == 0 {
		return 0, fmt.Errorf("edge declares no relation bits")
	}
	return rel, nil
}
