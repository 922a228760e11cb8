package testutil

import "github.com/vk/gridbuild/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single step kind.
type SimpleModule struct {
	Kind string
	Step *registry.RegisteredStep
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	if m.Kind != "" && m.Step != nil {
		r.RegisterStep(m.Kind, m.Step)
	}
}
