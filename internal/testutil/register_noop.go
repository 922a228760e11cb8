package testutil

import (
	"context"

	"github.com/vk/gridbuild/internal/registry"
)

// NoOpModule registers a `noop` step kind that takes no arguments and does
// nothing. It's useful for tests about graph shape rather than file output.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterStep("noop", registry.Step(func(context.Context, *registry.Scope, *struct{}) error {
		return nil
	}))
}
