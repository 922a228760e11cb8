package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gridbuild/internal/config"
)

// translateTask converts the HCL-specific task schema into the agnostic model.
func translateTask(name string, declRange hcl.Range, tb *taskBlock) *config.Task {
	task := &config.Task{
		Name:        name,
		Description: tb.Description,
		DependsOn:   tb.DependsOn,
		Sequence:    tb.Sequence,
		DeclRange:   declRange,
	}
	for _, sb := range tb.Steps {
		task.Steps = append(task.Steps, &config.Step{
			Kind:      sb.Kind,
			Body:      sb.Body,
			DeclRange: sb.DeclRange,
		})
	}
	return task
}
