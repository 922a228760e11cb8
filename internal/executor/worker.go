package executor

import (
	"context"
	"fmt"

	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/node"
)

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *node.Node, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "task", n.ID)

		if e.aborted.Load() || ctx.Err() != nil {
			cause := fmt.Errorf("skipped: run aborted before task %q started", n.ID)
			if n.Skip(cause) {
				workerLogger.Warn("Run aborted, skipping task.")
				e.wg.Done()
				e.skipDependents(ctx, n)
			}
			continue
		}

		if err := n.Start(); err != nil {
			// A node is only ever queued once; this is a scheduling bug.
			workerLogger.Error("Task could not be started.", "error", err)
			continue
		}
		workerLogger.Info("▶️ Starting task")

		err := e.runTask(ctxlog.WithLogger(ctx, workerLogger), n)
		if err != nil {
			workerLogger.Error("Task failed.", "error", err)
			_ = n.Fail(err)
			e.abort(n.ID, err)
			e.skipDependents(ctx, n)
			e.wg.Done()
			continue
		}

		_ = n.Succeed()
		workerLogger.Info("✅ Finished task", "duration", n.Duration())

		for _, dependent := range n.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent task.", "dependent", dependent.ID)
				readyChan <- dependent
			}
		}
		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runTask calls the task's runner, turning a panic into an error.
func (e *Executor) runTask(ctx context.Context, n *node.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in task %q: %v", n.ID, r)
		}
	}()
	return e.runners[n.ID].Run(ctx)
}

// skipDependents recursively marks all downstream tasks as skipped and
// decrements the WaitGroup once for each of them.
func (e *Executor) skipDependents(ctx context.Context, n *node.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.Dependents {
		cause := fmt.Errorf("skipped due to upstream failure of %q", n.ID)
		if dependent.Skip(cause) {
			logger.Warn("Skipping dependent task due to upstream failure.", "task", dependent.ID, "dependency", n.ID)
			e.wg.Done()
			e.skipDependents(ctx, dependent)
		}
	}
}
