// Package executor runs a dag.Plan. Tasks become ready when all of their
// dependencies succeed and are picked up by a fixed pool of workers. The
// first failure aborts the run: nothing new is started, every task that
// has not started yet is marked skipped, and tasks already running are left
// to finish on their own.
package executor
