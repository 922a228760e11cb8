package dag_concurrency

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/node"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/testutil"
)

// Test for: A prerequisite reachable through two paths runs exactly once.
func TestDagConcurrency_DiamondRunsOnce(t *testing.T) {
	t.Parallel()
	sleeper := testutil.NewMockSleeperModule(nil, 20*time.Millisecond)

	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files: buildFile(`
task "a" {
  step "sleep" { id = "a" }
}
task "b" {
  depends_on = ["a"]
  step "sleep" { id = "b" }
}
task "c" {
  depends_on = ["a"]
  step "sleep" { id = "c" }
}
task "d" {
  depends_on = ["b", "c"]
  step "sleep" { id = "d" }
}
`),
		Targets: []string{"d"},
		Modules: []registry.Module{sleeper},
	})
	require.NoError(t, result.Err)

	require.Len(t, result.Reports, 1)
	assert.Len(t, result.Reports[0].Tasks, 4)
	assert.Equal(t, 4, result.Reports[0].Count(node.Succeeded))
	assert.Equal(t, 1, sleeper.Runs("a"))

	starts := 0
	for _, line := range strings.Split(result.LogOutput, "\n") {
		if !strings.Contains(line, "Starting task") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if field == "task=a" {
				starts++
			}
		}
	}
	assert.Equal(t, 1, starts, "task a should start once")

	a, d := sleeper.Record("a"), sleeper.Record("d")
	for _, id := range []string{"b", "c"} {
		mid := sleeper.Record(id)
		require.NotNil(t, mid)
		assert.False(t, mid.Start.Before(a.End), "%s started before a finished", id)
		assert.False(t, d.Start.Before(mid.End), "d started before %s finished", id)
	}
}
