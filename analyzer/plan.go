package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teranos/wiregen/codegen"
	"github.com/teranos/wiregen/format"
)

// Cycle is a strongly-connected component that is self-referential or
// mutually recursive. Every edge inside it requires indirection.
type Cycle struct {
	Members []string `json:"members"`
	Edges   []Edge   `json:"edges"`
}

// Contains reports whether name is a member of the cycle.
func (c Cycle) Contains(name string) bool {
	return containsSorted(c.Members, name)
}

// Plan is the analyzed registry: containers in safe emission order plus cycle
// and indirection metadata.
type Plan struct {
	registry   *format.Registry
	order      []string
	position   map[string]int
	components [][]string
	cycles     []Cycle
	cycleOf    map[string]int
	indirect   map[Edge]bool
	graph      *Graph
}

// Analyze builds the dependency graph of reg under cfg and orders it. The
// only failure is an unresolved reference; no partial plan is returned.
func Analyze(reg *format.Registry, cfg *codegen.Config) (*Plan, error) {
	g, err := BuildGraph(reg, cfg)
	if err != nil {
		return nil, err
	}

	ordered := orderComponents(g, components(g))

	p := &Plan{
		registry:   reg,
		position:   make(map[string]int, len(g.nodes)),
		components: ordered,
		cycleOf:    make(map[string]int),
		indirect:   make(map[Edge]bool),
		graph:      g,
	}
	for _, members := range ordered {
		for _, m := range members {
			p.position[m] = len(p.order)
			p.order = append(p.order, m)
		}
		if !isCycle(g, members) {
			continue
		}
		cycle := Cycle{Members: members}
		for _, from := range members {
			for _, to := range g.edges[from] {
				if containsSorted(members, to) {
					e := Edge{From: from, To: to}
					cycle.Edges = append(cycle.Edges, e)
					p.indirect[e] = true
				}
			}
		}
		for _, m := range members {
			p.cycleOf[m] = len(p.cycles)
		}
		p.cycles = append(p.cycles, cycle)
	}
	return p, nil
}

func isCycle(g *Graph, members []string) bool {
	if len(members) > 1 {
		return true
	}
	for _, to := range g.edges[members[0]] {
		if to == members[0] {
			return true
		}
	}
	return false
}

func containsSorted(members []string, name string) bool {
	i := sort.SearchStrings(members, name)
	return i < len(members) && members[i] == name
}

// Registry returns the analyzed registry.
func (p *Plan) Registry() *format.Registry { return p.registry }

// Order returns the registry containers in emission order, dependencies
// first. External containers never appear.
func (p *Plan) Order() []string {
	return append([]string(nil), p.order...)
}

// Components returns the strongly-connected components in emission order.
func (p *Plan) Components() [][]string {
	out := make([][]string, len(p.components))
	for i, c := range p.components {
		out[i] = append([]string(nil), c...)
	}
	return out
}

// Position returns the index of name in Order, or -1.
func (p *Plan) Position(name string) int {
	if i, ok := p.position[name]; ok {
		return i
	}
	return -1
}

// Cycles returns the cycle records in emission order.
func (p *Plan) Cycles() []Cycle {
	out := make([]Cycle, len(p.cycles))
	for i, c := range p.cycles {
		out[i] = Cycle{
			Members: append([]string(nil), c.Members...),
			Edges:   append([]Edge(nil), c.Edges...),
		}
	}
	return out
}

// CycleOf returns the cycle record name belongs to.
func (p *Plan) CycleOf(name string) (Cycle, bool) {
	i, ok := p.cycleOf[name]
	if !ok {
		return Cycle{}, false
	}
	return p.Cycles()[i], true
}

// IsRecursive reports whether name belongs to a cycle.
func (p *Plan) IsRecursive(name string) bool {
	_, ok := p.cycleOf[name]
	return ok
}

// RequiresIndirection reports whether the reference from -> to closes a
// cycle and so cannot be stored by value.
func (p *Plan) RequiresIndirection(from, to string) bool {
	return p.indirect[Edge{From: from, To: to}]
}

// IndirectEdges returns every indirection-required edge, sorted.
func (p *Plan) IndirectEdges() []Edge {
	out := make([]Edge, 0, len(p.indirect))
	for e := range p.indirect {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Dependencies returns the registry containers name references, sorted.
func (p *Plan) Dependencies(name string) []string {
	return p.graph.Successors(name)
}

// ExternalReferences returns the external containers name references, sorted.
func (p *Plan) ExternalReferences(name string) []string {
	return p.graph.Externals(name)
}

// Summary is the serializable form of a Plan.
type Summary struct {
	Order         []string            `json:"order"`
	Cycles        []Cycle             `json:"cycles"`
	IndirectEdges []Edge              `json:"indirect_edges"`
	Dependencies  map[string][]string `json:"dependencies"`
	Externals     map[string][]string `json:"externals,omitempty"`
}

// Summary returns a snapshot of the plan for reporting.
func (p *Plan) Summary() Summary {
	s := Summary{
		Order:         p.Order(),
		Cycles:        p.Cycles(),
		IndirectEdges: p.IndirectEdges(),
		Dependencies:  make(map[string][]string, len(p.order)),
	}
	for _, name := range p.order {
		s.Dependencies[name] = p.Dependencies(name)
		if ext := p.ExternalReferences(name); len(ext) > 0 {
			if s.Externals == nil {
				s.Externals = make(map[string][]string)
			}
			s.Externals[name] = ext
		}
	}
	return s
}

// String renders a human-readable report of the plan.
func (p *Plan) String() string {
	var b strings.Builder

	b.WriteString("Emission Plan\n")
	fmt.Fprintf(&b, "Total Containers: %d\n\n", len(p.order))

	if len(p.cycles) > 0 {
		b.WriteString("Recursive groups:\n")
		for _, c := range p.cycles {
			edges := make([]string, len(c.Edges))
			for i, e := range c.Edges {
				edges[i] = e.String()
			}
			fmt.Fprintf(&b, "  {%s} indirect: %s\n", strings.Join(c.Members, ", "), strings.Join(edges, ", "))
		}
		b.WriteString("\n")
	}

	if len(p.order) > 0 {
		b.WriteString("Emission Order (dependencies first):\n")
		for i, name := range p.order {
			deps := append(p.Dependencies(name), p.ExternalReferences(name)...)
			if len(deps) > 0 {
				fmt.Fprintf(&b, "  %d. %s (depends on: %s)\n", i+1, name, strings.Join(deps, ", "))
			} else {
				fmt.Fprintf(&b, "  %d. %s (no dependencies)\n", i+1, name)
			}
		}
	}
	return b.String()
}
