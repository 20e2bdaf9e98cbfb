package analyzer

import "container/heap"

// orderComponents sorts the condensation of g so that every component comes
// after the components it depends on. Among components that are ready at the
// same time, the one with the smallest member name goes first.
func orderComponents(g *Graph, comps [][]string) [][]string {
	compOf := make(map[string]int, len(g.nodes))
	for i, members := range comps {
		for _, m := range members {
			compOf[m] = i
		}
	}

	pending := make([]int, len(comps))
	dependents := make([][]int, len(comps))
	for i, members := range comps {
		deps := make(map[int]bool)
		for _, m := range members {
			for _, target := range g.edges[m] {
				if j := compOf[target]; j != i {
					deps[j] = true
				}
			}
		}
		pending[i] = len(deps)
		for j := range deps {
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := &componentHeap{comps: comps}
	for i := range comps {
		if pending[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([][]string, 0, len(comps))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, comps[i])
		for _, d := range dependents[i] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}
	return out
}

// componentHeap is a min-heap of component indices keyed by the first
// (smallest) member name.
type componentHeap struct {
	comps [][]string
	items []int
}

func (h *componentHeap) Len() int { return len(h.items) }

func (h *componentHeap) Less(i, j int) bool {
	return h.comps[h.items[i]][0] < h.comps[h.items[j]][0]
}

func (h *componentHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *componentHeap) Push(x any) { h.items = append(h.items, x.(int)) }

func (h *componentHeap) Pop() any {
	n := len(h.items)
	x := h.items[n-1]
	h.items = h.items[:n-1]
	return x
}
