package unitfile

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/InitWare/Neo-InitWare/internal/graph"
	"github.com/InitWare/Neo-InitWare/pkg/sched"
)

func TestLoad_ParsesAliasesTypeAndEdges(t *testing.T) {
	dir := t.TempDir()
	def := `
aliases: [webapp.service, webapp]
type: service
edges:
  - to: network.target
    relation: [AddStart, After]
  - to: db.service
    relation: [After]
`
	if err := os.WriteFile(filepath.Join(dir, "webapp.service.yaml"), []byte(def), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	g := graph.New(slog.Default())
	l := New(dir, g, slog.Default())

	if err := l.Load("webapp.service"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	u := g.Find("webapp.service")
	if u == nil {
		t.Fatalf("unit not registered under principal alias")
	}
	if u.Type != "service" {
		t.Errorf("Type = %q, want service", u.Type)
	}
	if g.Find("webapp") != u {
		t.Errorf("secondary alias not registered")
	}
	if len(u.OutEdges) != 2 {
		t.Fatalf("OutEdges = %v, want 2", u.OutEdges)
	}
	if u.OutEdges[0].To != "network.target" || !u.OutEdges[0].Relation.Has(sched.RelAddStart|sched.RelAfter) {
		t.Errorf("first edge = %+v, want AddStart|After to network.target", u.OutEdges[0])
	}
}

func TestLoad_MissingFileLeavesUnitUnmanaged(t *testing.T) {
	dir := t.TempDir()
	g := graph.New(slog.Default())
	l := New(dir, g, slog.Default())

	if err := l.Load("ghost.service"); err != nil {
		t.Fatalf("Load of missing file should be a no-op, got %v", err)
	}
}

func TestLoad_UnknownRelationIsGraphInvariant(t *testing.T) {
	dir := t.TempDir()
	def := "aliases: [x]\ntype: service\nedges:\n  - to: y\n    relation: [Bogus]\n"
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte(def), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	g := graph.New(slog.Default())
	l := New(dir, g, slog.Default())

	if err := l.Load("x"); err == nil {
		t.Fatalf("expected error for unknown relation name")
	}
}
