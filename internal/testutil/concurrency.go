package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/gridbuild/internal/registry"
)

// MockSleeperModule is a shared, self-contained module for concurrency tests.
// It registers a `sleep` step kind and records when each step ran.
type MockSleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
	completionChan chan<- string
}

// NewMockSleeperModule creates a new sleeper module for testing.
func NewMockSleeperModule(completionChan chan<- string, sleep time.Duration) *MockSleeperModule {
	return &MockSleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
		completionChan: completionChan,
	}
}

type sleeperInput struct {
	ID string `hcl:"id"`
}

// Register registers the `sleep` step kind.
func (m *MockSleeperModule) Register(r *registry.Registry) {
	r.RegisterStep("sleep", registry.Step(func(ctx context.Context, _ *registry.Scope, input *sleeperInput) error {
		startTime := time.Now()
		select {
		case <-time.After(m.sleepDuration):
		case <-ctx.Done():
			return ctx.Err()
		}
		endTime := time.Now()

		m.mu.Lock()
		runs := 1
		if prev, ok := m.ExecutionTimes[input.ID]; ok {
			runs = prev.Runs + 1
		}
		m.ExecutionTimes[input.ID] = &ExecutionRecord{ID: input.ID, Start: startTime, End: endTime, Runs: runs}
		m.mu.Unlock()

		if m.completionChan != nil {
			m.completionChan <- input.ID
		}
		return nil
	}))
}

// Record returns the execution record of the step with the given id.
func (m *MockSleeperModule) Record(id string) *ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecutionTimes[id]
}

// Runs returns how many times the step with the given id completed.
func (m *MockSleeperModule) Runs(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.ExecutionTimes[id]; ok {
		return rec.Runs
	}
	return 0
}
