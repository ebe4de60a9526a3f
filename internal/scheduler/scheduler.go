package scheduler

import (
	"container/heap"
	"context"

	"github.com/vk/framegraph/internal/ctxlog"
	"github.com/vk/framegraph/internal/errdefs"
	"github.com/vk/framegraph/internal/graph"
)

// Schedule is the execution order of a graph.
type Schedule struct {
	// Order holds pass insertion indices in execution order.
	Order []int
	// Step maps a pass insertion index to its position in Order.
	Step []int
	// Level maps a pass insertion index to its dependency depth.
	Level []int
	// Levels groups insertion indices by level, each group in Order order.
	Levels [][]int
}

// Len returns the number of scheduled passes.
func (s *Schedule) Len() int { return len(s.Order) }

// Build orders the passes of g using the dependency lists produced by
// Validate. It fails with ErrCyclicDependency if some passes can never
// become ready.
func Build(ctx context.Context, g *graph.Graph, deps *graph.Dependencies) (*Schedule, error) {
	logger := ctxlog.FromContext(ctx)
	n := g.Len()

	indegree := make([]int, n)
	for i, producers := range deps.Producers {
		indegree[i] = len(producers)
	}

	ready := &intMinHeap{}
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			heap.Push(ready, i)
		}
	}

	s := &Schedule{
		Order: make([]int, 0, n),
		Step:  make([]int, n),
		Level: make([]int, n),
	}
	for ready.Len() > 0 {
		u := heap.Pop(ready).(int)
		s.Step[u] = len(s.Order)
		s.Order = append(s.Order, u)

		for _, p := range deps.Producers[u] {
			if l := s.Level[p] + 1; l > s.Level[u] {
				s.Level[u] = l
			}
		}
		for _, v := range deps.Consumers[u] {
			indegree[v]--
			if indegree[v] == 0 {
				heap.Push(ready, v)
			}
		}
	}

	if len(s.Order) != n {
		return nil, errdefs.Cyclic(stuck(g, indegree)).WithMsg("%d of %d passes could not be ordered", n-len(s.Order), n)
	}

	for _, u := range s.Order {
		l := s.Level[u]
		for len(s.Levels) <= l {
			s.Levels = append(s.Levels, nil)
		}
		s.Levels[l] = append(s.Levels[l], u)
	}

	logger.Debug("Schedule built.", "graph", g.Name, "passes", n, "levels", len(s.Levels))
	return s, nil
}

// stuck names the passes left with unresolved producers.
func stuck(g *graph.Graph, indegree []int) []string {
	var names []string
	for i, d := range indegree {
		if d > 0 {
			names = append(names, g.NodeAt(i).Name)
		}
	}
	return names
}

// intMinHeap is a container/heap of pass insertion indices.
type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intMinHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *intMinHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}
