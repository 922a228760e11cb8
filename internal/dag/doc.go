// Package dag holds the task graph of a build. It turns the tasks of a
// config.Model into a directed acyclic graph of prerequisite edges and, for
// a requested target, derives a Plan: the target's prerequisite closure with
// every ordering edge made explicit, including the edges implied by a task's
// `sequence` stages.
//
// The graph is built once at startup and is read-only afterwards. Plans are
// cheap and are created per run.
package dag
