package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vk/gridbuild/internal/config"
	"github.com/vk/gridbuild/internal/ctxlog"
	"github.com/vk/gridbuild/internal/dag"
	"github.com/vk/gridbuild/internal/executor"
	"github.com/vk/gridbuild/internal/node"
	"github.com/vk/gridbuild/internal/task"
)

// Run loads the build files, prepares every configured target and then runs
// them in order, stopping at the first target that fails. Problems found
// while preparing any target are returned as *ConfigError before the first
// target starts.
func (a *App) Run(ctx context.Context) ([]*executor.Report, error) {
	logger := a.logger.With("run_id", uuid.NewString())
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("App.Run method started.")

	model, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("Building dependency graph from config model...")
	graph, err := dag.Build(ctx, model)
	if err != nil {
		return nil, configError(fmt.Errorf("failed to build task graph: %w", err))
	}

	targets := a.config.Targets
	if len(targets) == 0 {
		targets = []string{model.Default}
	}

	prepared := make([]*preparedTarget, 0, len(targets))
	var errs []error
	for _, target := range targets {
		p, err := a.prepare(ctxlog.With(ctx, "target", target), model, graph, target)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prepared = append(prepared, p)
	}
	if len(errs) > 0 {
		return nil, configError(errors.Join(errs...))
	}

	var reports []*executor.Report
	for _, p := range prepared {
		report, err := a.runTarget(ctx, p)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, err
		}
	}
	logger.Debug("App.Run method finished.")
	return reports, nil
}

// preparedTarget is a target whose plan is built and whose tasks are
// compiled and preflighted.
type preparedTarget struct {
	target string
	plan   *dag.Plan
	tasks  map[string]*task.Task
}

// prepare plans target and compiles, preflights and checks its tasks. All
// returned errors are configuration errors.
func (a *App) prepare(ctx context.Context, model *config.Model, graph *dag.Graph, target string) (*preparedTarget, error) {
	logger := ctxlog.FromContext(ctx)

	plan, err := dag.NewPlan(ctx, graph, target)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", target, err)
	}

	tasks := make(map[string]*task.Task, plan.Len())
	var errs []error
	for _, name := range plan.Tasks() {
		t, err := task.Compile(ctx, model, a.registry, a.converter, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := t.Preflight(); err != nil {
			errs = append(errs, err)
			continue
		}
		tasks[name] = t
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if overlaps := DetectOverlaps(plan, tasks); len(overlaps) > 0 {
		msgs := make([]string, len(overlaps))
		for i, o := range overlaps {
			logger.Warn("Unordered tasks touch the same path.", "reader", o.Reader, "read_path", o.ReadPath, "writer", o.Writer, "write_path", o.WritePath)
			msgs[i] = o.String()
		}
		if a.config.Strict {
			return nil, fmt.Errorf("target %q has unordered read/write overlaps:\n- %s", target, strings.Join(msgs, "\n- "))
		}
	}
	return &preparedTarget{target: target, plan: plan, tasks: tasks}, nil
}

func (a *App) runTarget(ctx context.Context, p *preparedTarget) (*executor.Report, error) {
	ctx = ctxlog.With(ctx, "target", p.target)
	logger := ctxlog.FromContext(ctx)

	runners := make(map[string]executor.Runner, len(p.tasks))
	for name, t := range p.tasks {
		runners[name] = t
	}
	exec, err := executor.New(p.plan, runners, a.config.WorkerCount)
	if err != nil {
		return nil, err
	}

	logger.Info("🚀 Starting concurrent execution...", "tasks", p.plan.Len(), "workers", a.config.WorkerCount)
	report, err := exec.Run(ctx)
	logger.Info("🏁 Execution finished.",
		"state", report.State.String(),
		"succeeded", report.Count(node.Succeeded),
		"failed", report.Count(node.Failed),
		"skipped", report.Count(node.Skipped),
	)
	if err != nil {
		return report, fmt.Errorf("target %q: %w", p.target, err)
	}
	return report, nil
}
