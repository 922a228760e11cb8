package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/hcl"
)

// LoadModel writes files to a fresh directory and loads its build.hcl,
// failing the test on any error.
func LoadModel(t *testing.T, files map[string]string) *config.Model {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, files)
	model, err := hcl.NewLoader().Load(context.Background(), nil, filepath.Join(root, "build.hcl"))
	require.NoError(t, err)
	return model
}
