package dag

import (
	"context"
	"fmt"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
)

// Build constructs a complete, validated task graph from a config model.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := New()

	// First pass: create all nodes in declaration order.
	for _, name := range model.Order {
		n := graph.addNode(name)
		n.stages = model.Tasks[name].Stages()
	}
	logger.Debug("Build: Node creation complete.", "node_count", graph.Len())

	// Second pass: link every prerequisite of every stage.
	for _, name := range model.Order {
		task := model.Tasks[name]
		for _, dep := range task.Prerequisites() {
			if !graph.HasNode(dep) {
				return nil, fmt.Errorf("task %q depends on %w %q", name, ErrUnknownTask, dep)
			}
			if err := graph.AddEdge(dep, name); err != nil {
				return nil, fmt.Errorf("linking task %q: %w", name, err)
			}
			logger.Debug("Linking dependency.", "from", dep, "to", name)
		}
	}
	logger.Debug("Build: Node linking complete.")

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating task graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	return graph, nil
}
