package config

import (
	"context"
)

// Loader is the interface for a format-specific build file loader.
type Loader interface {
	// Load reads build files from the given paths and translates them into
	// the format-agnostic model. Variable overrides take precedence over
	// values declared in the files.
	Load(ctx context.Context, overrides map[string]string, paths ...string) (*Model, error)
}

// Converter is the interface for a format-specific data binding
// implementation. It bridges the raw step bodies held by the model and the
// Go input structs used by step modules.
type Converter interface {
	// DecodeStep decodes the body of a step into the target Go struct,
	// evaluating expressions against the model's variables.
	DecodeStep(ctx context.Context, model *Model, step *Step, target any) error
}
