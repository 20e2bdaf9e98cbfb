// Package analyzer derives the emission plan for a registry: a dependency
// graph over containers, its strongly-connected components, a deterministic
// dependencies-first order and the set of references that need indirection.
//
// Analysis is pure: it reads a format.Registry and a codegen.Config and
// allocates a fresh Plan. Nothing is cached between calls.
package analyzer

import (
	"fmt"
	"sort"

	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/errors"
	"github.com/teranos/wiregen/format"
)

// UnresolvedReferenceError reports a reference to a name that is neither a
// registry container nor an external definition.
type UnresolvedReferenceError struct {
	// Container is the registry container holding the reference.
	Container string
	// Member is the field or variant holding the reference, if any.
	Member string
	// Reference is the unknown name.
	Reference string
}

func (e *UnresolvedReferenceError) Error() string {
	at := e.Container
	if e.Member != "" {
		at += "." + e.Member
	}
	return fmt.Sprintf("unresolved reference to %s in %s", e.Reference, at)
}

func (e *UnresolvedReferenceError) Unwrap() error { return errors.ErrUnresolvedReference }

// Edge is a "From references To" relation between two registry containers.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e Edge) String() string { return e.From + " -> " + e.To }

// Graph is the container dependency graph. Nodes are the registry
// containers that are not declared external; edges to external containers
// are tracked separately since externals are leaves.
type Graph struct {
	nodes     []string
	edges     map[string][]string
	externals map[string][]string
}

// BuildGraph walks every container in canonical order and records its
// references. The first reference that resolves to nothing fails the build.
//
// A name that is both defined in the registry and declared external is
// treated as external: it is not part of the graph and is never emitted.
func BuildGraph(reg *format.Registry, cfg *codegen.Config) (*Graph, error) {
	g := &Graph{
		edges:     make(map[string][]string),
		externals: make(map[string][]string),
	}
	for _, name := range reg.Names() {
		if cfg.IsExternal(name) {
			continue
		}
		g.nodes = append(g.nodes, name)
	}

	for _, name := range g.nodes {
		targets := make(map[string]bool)
		externals := make(map[string]bool)
		for _, ref := range reg.References(name) {
			switch {
			case cfg.IsExternal(ref.Target):
				externals[ref.Target] = true
			case reg.Has(ref.Target):
				targets[ref.Target] = true
			default:
				return nil, errors.WithHintf(
					&UnresolvedReferenceError{Container: name, Member: ref.Member, Reference: ref.Target},
					"define %s in the registry or list it under external definitions", ref.Target)
			}
		}
		g.edges[name] = sortedKeys(targets)
		if len(externals) > 0 {
			g.externals[name] = sortedKeys(externals)
		}
	}
	return g, nil
}

// Nodes returns the graph nodes in canonical order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Successors returns the distinct containers name references, sorted.
func (g *Graph) Successors(name string) []string {
	return append([]string(nil), g.edges[name]...)
}

// Externals returns the distinct external containers name references, sorted.
func (g *Graph) Externals(name string) []string {
	return append([]string(nil), g.externals[name]...)
}

// Edges returns every edge, ordered by source then target.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.nodes {
		for _, to := range g.edges[from] {
			out = append(out, Edge{From: from, To: to})
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
