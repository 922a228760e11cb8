package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/dag"
	"github.com/vk/gridbuild/internal/executor"
	"github.com/vk/gridbuild/internal/hcl"
	"github.com/vk/gridbuild/internal/node"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

const projectHeader = `
project {
  name    = "Test Site"
  version = "1.2.3"
}

directories {
  src  = "src"
  dist = "dist"
}

variables {
  greeting = "hello"
}
`

func writeProject(t *testing.T, build string, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["build.hcl"] = projectHeader + build
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newTestApp(t *testing.T, root string, mutate func(*Config)) (*App, *syncBuffer) {
	t.Helper()
	cfg := Config{
		BuildPath:   filepath.Join(root, "build.hcl"),
		LogFormat:   "text",
		LogLevel:    "debug",
		WorkerCount: 4,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	validated, err := NewConfig(cfg)
	require.NoError(t, err)

	buf := &syncBuffer{}
	t.Cleanup(func() {
		if os.Getenv("GRIDBUILD_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return NewApp(buf, validated, hcl.NewLoader(), hcl.NewConverter()), buf
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	valid := Config{BuildPath: "build.hcl", LogFormat: "text", LogLevel: "info", WorkerCount: 4}

	_, err := NewConfig(valid)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "missing path", mutate: func(c *Config) { c.BuildPath = "" }, wantErr: "BuildPath is required"},
		{name: "bad format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "LogFormat must satisfy oneof=text json"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LogLevel must be one of debug, info, warn, error, got loud"},
		{name: "level is case sensitive", mutate: func(c *Config) { c.LogLevel = "INFO" }, wantErr: "LogLevel must be one of"},
		{name: "no workers", mutate: func(c *Config) { c.WorkerCount = 0 }, wantErr: "WorkerCount must satisfy min=1"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			_, err := NewConfig(cfg)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "task", "clean")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"task":"clean"`)

	assert.PanicsWithValue(t, `unknown log level "loud", want one of debug, info, warn, error`, func() {
		newLogger("loud", "text", &buf)
	})
}

func TestRun_DefaultTarget(t *testing.T) {
	t.Parallel()
	root := writeProject(t, `
task "copy:index.html" {
  step "src" {
    dir     = dir.src
    include = ["index.html"]
  }
  step "replace" {
    pattern = "{{GREETING}}"
    literal = true
    with    = "${var.greeting} from ${project.name} v${project.version}"
  }
  step "dest" { dir = dir.dist }
}

task "clean" {
  step "clean" { paths = [dir.dist] }
}

task "build" {
  depends_on = ["clean"]
  sequence   = [["copy:index.html"]]
}
`, map[string]string{"src/index.html": "<p>{{GREETING}}</p>", "dist/stale.txt": "old"})

	a, logs := newTestApp(t, root, func(c *Config) { c.Variables = map[string]string{"greeting": "hi"} })
	reports, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "build", reports[0].Target)
	assert.Equal(t, executor.Completed, reports[0].State)
	assert.Equal(t, 3, reports[0].Count(node.Succeeded))

	b, err := os.ReadFile(filepath.Join(root, "dist", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi from Test Site v1.2.3</p>", string(b))
	assert.NoFileExists(t, filepath.Join(root, "dist", "stale.txt"))

	assert.Contains(t, logs.String(), "run_id=")
	assert.Contains(t, logs.String(), "task=copy:index.html")
}

func TestRun_ConfigErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		build   string
		targets []string
		wantErr string
	}{
		{
			name:    "unknown target",
			build:   `task "build" {}`,
			targets: []string{"deploy"},
			wantErr: `unknown task "deploy"`,
		},
		{
			name:    "unknown step kind",
			build:   `task "build" { step "teleport" {} }`,
			wantErr: "unknown step kind 'teleport'",
		},
		{
			name:    "step body does not decode",
			build:   `task "build" { step "mkdir" { mode = "0755" } }`,
			wantErr: `task "build", step #1`,
		},
		{
			name: "missing source",
			build: `task "build" {
  step "src" {
    dir     = dir.src
    include = ["missing.html"]
  }
}`,
			wantErr: "missing.html",
		},
		{
			name: "cycle",
			build: `
task "a" { depends_on = ["b"] }
task "b" { depends_on = ["a"] }
task "build" { depends_on = ["a"] }`,
			wantErr: "cycle detected",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			root := writeProject(t, tc.build, map[string]string{"src/index.html": "x"})
			a, _ := newTestApp(t, root, func(c *Config) { c.Targets = tc.targets })

			_, err := a.Run(context.Background())
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "want *ConfigError, got %v", err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestRun_StepFailureAbortsRun(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX tools")
	}
	root := writeProject(t, `
task "broken" {
  step "src" {
    dir     = dir.src
    include = ["index.html"]
  }
  step "exec" { command = "false" }
}

task "after" {
  step "mkdir" { path = "out" }
}

task "build" {
  sequence = [["broken"], ["after"]]
}
`, map[string]string{"src/index.html": "x"})

	a, _ := newTestApp(t, root, nil)
	reports, err := a.Run(context.Background())

	require.Error(t, err)
	var cfgErr *ConfigError
	assert.False(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, executor.ErrAborted)
	assert.ErrorContains(t, err, `task "broken" failed: step "exec" #2`)

	require.Len(t, reports, 1)
	after, _ := reports[0].Task("after")
	assert.Equal(t, node.Skipped, after.State)
	assert.NoDirExists(t, filepath.Join(root, "out"))
}

func TestRun_Overlaps(t *testing.T) {
	t.Parallel()
	build := `
task "write" {
  step "src" {
    dir     = dir.src
    include = ["index.html"]
  }
  step "dest" { dir = dir.dist }
}

task "read" {
  step "src" {
    dir     = dir.dist
    include = ["*.html"]
  }
  step "minify" {}
  step "dest" { dir = "out" }
}

task "build" { depends_on = ["write", "read"] }
`

	t.Run("warns by default", func(t *testing.T) {
		root := writeProject(t, build, map[string]string{"src/index.html": "<p>x</p>"})
		a, logs := newTestApp(t, root, nil)
		_, _ = a.Run(context.Background())
		assert.Contains(t, logs.String(), "Unordered tasks touch the same path.")
		assert.Contains(t, logs.String(), "reader=read")
	})

	t.Run("fails when strict", func(t *testing.T) {
		root := writeProject(t, build, map[string]string{"src/index.html": "<p>x</p>"})
		a, _ := newTestApp(t, root, func(c *Config) { c.Strict = true })
		_, err := a.Run(context.Background())
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.ErrorContains(t, err, `task "read" reads`)
	})
}

func TestRun_MultipleTargets(t *testing.T) {
	t.Parallel()
	root := writeProject(t, `
task "one" {
  step "mkdir" { path = "one" }
}
task "two" {
  step "mkdir" { path = "two" }
}
`, map[string]string{})

	a, _ := newTestApp(t, root, func(c *Config) { c.Targets = []string{"one", "two"} })
	reports, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "one", reports[0].Target)
	assert.Equal(t, "two", reports[1].Target)
	assert.DirExists(t, filepath.Join(root, "one"))
	assert.DirExists(t, filepath.Join(root, "two"))
}

func TestRun_LaterTargetErrorRunsNothing(t *testing.T) {
	t.Parallel()
	root := writeProject(t, `
task "one" {
  step "mkdir" { path = "one" }
}
task "broken" {
  step "src" {
    dir     = dir.src
    include = ["missing.html"]
  }
}
`, map[string]string{"src/index.html": "x"})

	a, logs := newTestApp(t, root, func(c *Config) { c.Targets = []string{"one", "nosuch", "broken"} })
	reports, err := a.Run(context.Background())

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "want *ConfigError, got %v", err)
	assert.ErrorIs(t, err, dag.ErrUnknownTask)
	assert.ErrorContains(t, err, `target "nosuch"`)
	assert.ErrorContains(t, err, "missing.html")
	assert.Empty(t, reports)
	assert.NoDirExists(t, filepath.Join(root, "one"))
	assert.NotContains(t, logs.String(), "Starting task")
}

func TestList(t *testing.T) {
	t.Parallel()
	root := writeProject(t, `
task "clean" {
  description = "Remove generated files"
  step "clean" { paths = [dir.dist] }
}
task "build" {
  depends_on = ["clean"]
}
`, map[string]string{})

	cfg, err := NewConfig(Config{BuildPath: filepath.Join(root, "build.hcl"), LogFormat: "text", LogLevel: "error", WorkerCount: 1})
	require.NoError(t, err)
	var out bytes.Buffer
	a := NewApp(&out, cfg, hcl.NewLoader(), hcl.NewConverter())

	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "TASK")
	assert.Regexp(t, `clean\s+1 steps\s+Remove generated files`, out.String())
	assert.Regexp(t, `build \*\s+clean`, out.String())
}
