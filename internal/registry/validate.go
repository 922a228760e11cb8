package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
)

// ValidateModel checks that every step used by the model is registered.
// All problems are reported at once.
func (r *Registry) ValidateModel(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range model.Order {
		task := model.Tasks[name]
		for i, step := range task.Steps {
			if _, ok := r.steps[step.Kind]; !ok {
				errs = append(errs, fmt.Sprintf("task '%s', step #%d (%s): unknown step kind '%s'", name, i+1, step.DeclRange, step.Kind))
			}
		}
		if task.IsAggregate() && len(task.Prerequisites()) == 0 {
			logger.Debug("Task has neither steps nor prerequisites.", "task", name)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
