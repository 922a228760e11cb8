package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbuild/internal/node"
)

// AssertTaskRan checks the log output within a HarnessResult to confirm
// that a specific task has finished.
func AssertTaskRan(t *testing.T, result *HarnessResult, task string) {
	t.Helper()
	require.True(t, taskLogged(result.LogOutput, task, "Finished task"),
		"expected log output for finished task '%s' was not found in logs", task)
}

// AssertTaskNotStarted checks that a task never started.
func AssertTaskNotStarted(t *testing.T, result *HarnessResult, task string) {
	t.Helper()
	assert.False(t, taskLogged(result.LogOutput, task, "Starting task"),
		"task '%s' was not expected to start", task)
}

// AssertTaskState checks the final state of a task in the last report.
func AssertTaskState(t *testing.T, result *HarnessResult, task string, want node.State) {
	t.Helper()
	require.NotEmpty(t, result.Reports, "no run report")
	tr, ok := result.Reports[len(result.Reports)-1].Task(task)
	require.True(t, ok, "task '%s' is not part of the run", task)
	assert.Equal(t, want, tr.State, "state of task '%s'", task)
}

func taskLogged(logs, task, msg string) bool {
	for _, line := range strings.Split(logs, "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		for _, field := range strings.Fields(line) {
			if field == "task="+task {
				return true
			}
		}
	}
	return false
}
