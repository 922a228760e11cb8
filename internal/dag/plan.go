package dag

import (
	"context"
	"fmt"

	"github.com/vk/gridbuild/internal/ctxlog"
)

// Plan is the executable subset of a Graph for one target: the target and
// all of its transitive prerequisites, each exactly once, linked by every
// edge that orders them.
type Plan struct {
	Target string
	graph  *Graph
	order  []string
}

// NewPlan derives the plan for target. Besides the declared prerequisite
// edges, every task reachable only from a later `sequence` stage of some
// task in the plan gets an edge from every task reachable from that task's
// earlier stages.
func NewPlan(ctx context.Context, g *Graph, target string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	if !g.HasNode(target) {
		return nil, fmt.Errorf("%w %q", ErrUnknownTask, target)
	}

	closure, err := g.Closure(target)
	if err != nil {
		return nil, err
	}

	pg := New()
	g.mutex.RLock()
	for _, id := range g.order {
		if _, ok := closure[id]; ok {
			pg.addNode(id)
		}
	}
	for id := range closure {
		for depID := range g.nodes[id].deps {
			pg.nodes[id].deps[depID] = pg.nodes[depID]
			pg.nodes[depID].dependents[id] = pg.nodes[id]
		}
	}
	stagesOf := make(map[string][][]string, len(closure))
	for id := range closure {
		stagesOf[id] = g.nodes[id].stages
	}
	g.mutex.RUnlock()

	for _, id := range pg.order {
		stages := stagesOf[id]
		if len(stages) < 2 {
			continue
		}
		earlier := make(map[string]struct{})
		for i, stage := range stages {
			current := make(map[string]struct{})
			for _, member := range stage {
				members, err := g.Closure(member)
				if err != nil {
					return nil, err
				}
				for m := range members {
					current[m] = struct{}{}
				}
			}
			if i > 0 {
				for later := range current {
					if _, ok := earlier[later]; ok {
						continue
					}
					for before := range earlier {
						if err := pg.AddEdge(before, later); err != nil {
							return nil, fmt.Errorf("ordering stage %d of task %q: %w", i, id, err)
						}
					}
				}
			}
			for m := range current {
				earlier[m] = struct{}{}
			}
		}
		logger.Debug("Plan: Sequence edges added.", "task", id, "stages", len(stages))
	}

	order, err := pg.TopologicalOrder()
	if err != nil {
		return nil, fmt.Errorf("planning %q: %w", target, err)
	}
	logger.Debug("Plan: Ready.", "target", target, "task_count", len(order))

	return &Plan{Target: target, graph: pg, order: order}, nil
}

// Tasks returns the task names of the plan in a stable topological order.
func (p *Plan) Tasks() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Len returns the number of tasks in the plan.
func (p *Plan) Len() int {
	return len(p.order)
}

// Dependencies returns the tasks that must succeed before id may start.
func (p *Plan) Dependencies(id string) []string {
	deps, _ := p.graph.Dependencies(id)
	return deps
}

// Dependents returns the tasks waiting on id.
func (p *Plan) Dependents(id string) []string {
	deps, _ := p.graph.Dependents(id)
	return deps
}

// Ordered reports whether one of the two tasks is guaranteed to finish
// before the other starts.
func (p *Plan) Ordered(a, b string) bool {
	return p.reaches(a, b) || p.reaches(b, a)
}

// reaches reports whether `to` is a transitive dependent of `from`.
func (p *Plan) reaches(from, to string) bool {
	p.graph.mutex.RLock()
	defer p.graph.mutex.RUnlock()

	start, ok := p.graph.nodes[from]
	if !ok {
		return false
	}
	seen := make(map[string]bool)
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for id, dep := range n.dependents {
			if id == to {
				return true
			}
			if !seen[id] {
				seen[id] = true
				queue = append(queue, dep)
			}
		}
	}
	return false
}
