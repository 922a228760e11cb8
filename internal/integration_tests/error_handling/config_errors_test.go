package error_handling

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/app"
	"github.com/vk/gridbuild/internal/testutil"
)

// Test for: Configuration problems are reported before any task runs.
func TestErrorHandling_ConfigErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		files   map[string]string
		targets []string
		wantErr string
	}{
		{
			name:    "invalid hcl",
			files:   map[string]string{"build.hcl": header + `task "build" {`},
			wantErr: "failed to parse build file",
		},
		{
			name: "missing required argument",
			files: buildFile(`
task "build" {
  step "mkdir" {}
}
`),
			wantErr: `"path"`,
		},
		{
			name: "unknown argument",
			files: buildFile(`
task "build" {
  step "mkdir" {
    path  = "out"
    color = "red"
  }
}
`),
			wantErr: "color",
		},
		{
			name: "unknown step kind",
			files: buildFile(`
task "build" {
  step "teleport" {}
}
`),
			wantErr: "teleport",
		},
		{
			name:    "unknown target",
			files:   buildFile(`task "build" {}`),
			targets: []string{"deploy"},
			wantErr: "deploy",
		},
		{
			name: "unknown dependency",
			files: buildFile(`
task "build" {
  depends_on = ["missing"]
}
`),
			wantErr: "missing",
		},
		{
			name: "cycle",
			files: buildFile(`
task "a" {
  depends_on = ["b"]
}
task "b" {
  depends_on = ["a"]
}
task "build" {
  depends_on = ["a"]
}
`),
			wantErr: "cycle",
		},
		{
			name: "missing project block",
			files: map[string]string{"build.hcl": `
directories {
  src  = "src"
  dist = "dist"
}
task "build" {}
`},
			wantErr: "missing project block",
		},
		{
			name: "undefined variable",
			files: buildFile(`
task "build" {
  step "mkdir" { path = var.nope }
}
`),
			wantErr: "nope",
		},
		{
			name: "clean outside the project",
			files: buildFile(`
task "build" {
  step "clean" { paths = ["../elsewhere"] }
}
`),
			wantErr: "elsewhere",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := testutil.RunIntegrationTest(t, testutil.Harness{
				Files:   tc.files,
				Targets: tc.targets,
			})

			require.Error(t, result.Err)
			var cfgErr *app.ConfigError
			assert.True(t, errors.As(result.Err, &cfgErr), "want *app.ConfigError, got %T: %v", result.Err, result.Err)
			assert.Contains(t, result.Err.Error(), tc.wantErr)
			assert.Empty(t, result.Reports)
			assert.NotContains(t, result.LogOutput, "Starting task")
		})
	}
}
