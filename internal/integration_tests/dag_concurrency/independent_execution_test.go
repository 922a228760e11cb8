package dag_concurrency

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/registry"
	"github.com/vk/gridbuild/internal/testutil"
)

// Test for: Independent tasks of one group run concurrently.
func TestDagConcurrency_IndependentExecution(t *testing.T) {
	t.Parallel()
	const sleep = 200 * time.Millisecond
	sleeper := testutil.NewMockSleeperModule(nil, sleep)

	start := time.Now()
	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files: buildFile(`
task "a" {
  step "sleep" { id = "A" }
}
task "b" {
  step "sleep" { id = "B" }
}
task "c" {
  step "sleep" { id = "C" }
}
task "build" {
  depends_on = ["a", "b", "c"]
}
`),
		Modules: []registry.Module{sleeper},
	})
	elapsed := time.Since(start)
	require.NoError(t, result.Err)

	assert.Less(t, elapsed, 3*sleep, "three %s tasks should overlap", sleep)

	a, b := sleeper.Record("A"), sleeper.Record("B")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, a.Start.Before(b.End) && b.Start.Before(a.End), "A and B should overlap in time")
}

// Test for: A single worker still runs everything, one task at a time.
func TestDagConcurrency_SingleWorker(t *testing.T) {
	t.Parallel()
	sleeper := testutil.NewMockSleeperModule(nil, 20*time.Millisecond)

	result := testutil.RunIntegrationTest(t, testutil.Harness{
		Files: buildFile(`
task "a" {
  step "sleep" { id = "A" }
}
task "b" {
  step "sleep" { id = "B" }
}
task "build" {
  depends_on = ["a", "b"]
}
`),
		Workers: 1,
		Modules: []registry.Module{sleeper},
	})
	require.NoError(t, result.Err)

	a, b := sleeper.Record("A"), sleeper.Record("B")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, !a.End.After(b.Start) || !b.End.After(a.Start), "with one worker A and B must not overlap")
}
