package config

import (
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
)

// Model is the unified, format-agnostic representation of a build file set.
type Model struct {
	// Root is the absolute directory relative paths are resolved against.
	Root string
	// Default is the task run when no target is given.
	Default string

	Project     Project
	Directories Directories
	Variables   map[string]string
	Env         map[string]string

	Tasks map[string]*Task
	// Order keeps task names in declaration order for listing.
	Order []string
}

// Project holds the descriptive metadata of the site being built.
type Project struct {
	Name     string `validate:"required"`
	Slug     string
	Version  string `validate:"required"`
	License  string
	Homepage string
}

// Directories holds the well-known directories of a build.
type Directories struct {
	Src     string `validate:"required"`
	Dist    string `validate:"required"`
	Archive string
}

// Outputs returns the directories a build writes to. Paths under them are
// not expected to exist before a run starts.
func (d Directories) Outputs() []string {
	var out []string
	for _, dir := range []string{d.Dist, d.Archive} {
		if dir != "" {
			out = append(out, dir)
		}
	}
	return out
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Name        string
	Description string
	// DependsOn is a group of tasks that run concurrently before this one.
	DependsOn []string
	// Sequence lists further groups, each started after the previous one
	// (and DependsOn) has completed.
	Sequence  [][]string
	Steps     []*Step
	DeclRange hcl.Range
}

// Stages returns the task's prerequisite groups in execution order, with
// empty groups dropped.
func (t *Task) Stages() [][]string {
	var stages [][]string
	if len(t.DependsOn) > 0 {
		stages = append(stages, t.DependsOn)
	}
	for _, group := range t.Sequence {
		if len(group) > 0 {
			stages = append(stages, group)
		}
	}
	return stages
}

// Prerequisites returns every task name this task waits for, deduplicated.
func (t *Task) Prerequisites() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, stage := range t.Stages() {
		for _, name := range stage {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// IsAggregate reports whether the task only runs other tasks.
func (t *Task) IsAggregate() bool {
	return len(t.Steps) == 0
}

// Step is the format-agnostic representation of a `step` block.
type Step struct {
	Kind      string
	Body      hcl.Body
	DeclRange hcl.Range
}

// Path resolves p against the model root. Absolute paths are returned
// cleaned and unchanged.
func (m *Model) Path(p string) string {
	if p == "" {
		return m.Root
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Root, p)
}

// TaskNames returns all task names sorted alphabetically.
func (m *Model) TaskNames() []string {
	names := make([]string, 0, len(m.Tasks))
	for name := range m.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
