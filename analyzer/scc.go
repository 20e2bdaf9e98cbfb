package analyzer

import "sort"

// components computes the strongly-connected components of g with Tarjan's
// algorithm. Nodes and successors are visited in canonical order, so the
// result depends only on the graph content. Members of each component are
// sorted.
func components(g *Graph) [][]string {
	t := &tarjan{
		graph:   g,
		index:   make(map[string]int, len(g.nodes)),
		lowlink: make(map[string]int, len(g.nodes)),
		onStack: make(map[string]bool, len(g.nodes)),
	}
	for _, n := range g.nodes {
		if _, seen := t.index[n]; !seen {
			t.connect(n)
		}
	}
	return t.out
}

type tarjan struct {
	graph   *Graph
	next    int
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	out     [][]string
}

func (t *tarjan) connect(v string) {
	t.index[v] = t.next
	t.lowlink[v] = t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.graph.edges[v] {
		if _, seen := t.index[w]; !seen {
			t.connect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}
	var members []string
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		members = append(members, w)
		if w == v {
			break
		}
	}
	sort.Strings(members)
	t.out = append(t.out, members)
}
