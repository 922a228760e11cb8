package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
)

// Converter is the HCL-specific implementation of the config.Converter interface.
type Converter struct{}

// NewConverter creates a new HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeStep evaluates the step body against the model and populates the
// provided Go struct, which must be a non-nil pointer tagged for gohcl.
func (c *Converter) DecodeStep(ctx context.Context, model *config.Model, step *config.Step, target any) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding step body.", "kind", step.Kind, "range", step.DeclRange.String())

	if diags := gohcl.DecodeBody(step.Body, ModelEvalContext(model), target); diags.HasErrors() {
		return fmt.Errorf("step %q at %s: %w", step.Kind, step.DeclRange, diags)
	}
	return nil
}
