package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/app"
	"github.com/vk/gridbuild/internal/executor"
	"github.com/vk/gridbuild/internal/hcl"
	"github.com/vk/gridbuild/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	// Root is the project directory the files were written to.
	Root      string
	LogOutput string
	Reports   []*executor.Report
	Err       error
}

// Harness describes one integration run. Files are written below a fresh
// project directory.
type Harness struct {
	Files map[string]string

	// BuildFile is the build file or directory relative to the project
	// directory. Defaults to "build.hcl".
	BuildFile string

	Targets []string
	Vars    map[string]string
	Strict  bool
	Workers int
	// Modules are registered in addition to the core modules.
	Modules []registry.Module
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, h Harness) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, h)
}

// RunIntegrationTestWithContext runs the full application against h with a
// caller-provided context.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, h Harness) *HarnessResult {
	t.Helper()

	root := t.TempDir()
	WriteTree(t, root, h.Files)
	return RunInDir(ctx, t, root, h)
}

// RunInDir runs the application against the build file of an existing
// project directory, ignoring h.Files. It is used to run a project twice.
func RunInDir(ctx context.Context, t *testing.T, root string, h Harness) *HarnessResult {
	t.Helper()

	workers := h.Workers
	if workers == 0 {
		workers = 4
	}
	buildFile := h.BuildFile
	if buildFile == "" {
		buildFile = "build.hcl"
	}
	cfg, err := app.NewConfig(app.Config{
		BuildPath:   filepath.Join(root, buildFile),
		Targets:     h.Targets,
		Variables:   h.Vars,
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: workers,
		Strict:      h.Strict,
	})
	require.NoError(t, err)

	modules := append(append([]registry.Module{}, app.CoreModules...), h.Modules...)
	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(logBuffer, cfg, hcl.NewLoader(), hcl.NewConverter(), modules...)

	reports, runErr := testApp.Run(ctx)

	if os.Getenv("GRIDBUILD_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Root:      root,
		LogOutput: logBuffer.String(),
		Reports:   reports,
		Err:       runErr,
	}
}
