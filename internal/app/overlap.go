package app

import (
	"fmt"

	"github.com/vk/gridbuild/internal/dag"
	"github.com/vk/gridbuild/internal/fsutil"
	"github.com/vk/gridbuild/internal/task"
)

// Overlap is a pair of tasks of one plan that may run at the same time
// while one reads a path the other writes.
type Overlap struct {
	Reader    string
	ReadPath  string
	Writer    string
	WritePath string
}

func (o Overlap) String() string {
	return fmt.Sprintf("task %q reads %s while task %q may write %s concurrently", o.Reader, o.ReadPath, o.Writer, o.WritePath)
}

// DetectOverlaps returns every read/write overlap between tasks that the
// plan does not order. Results follow plan order.
func DetectOverlaps(plan *dag.Plan, tasks map[string]*task.Task) []Overlap {
	var out []Overlap
	names := plan.Tasks()
	for _, reader := range names {
		for _, writer := range names {
			if reader == writer || plan.Ordered(reader, writer) {
				continue
			}
			out = append(out, overlapsBetween(reader, tasks[reader], writer, tasks[writer])...)
		}
	}
	return out
}

func overlapsBetween(readerName string, reader *task.Task, writerName string, writer *task.Task) []Overlap {
	if reader == nil || writer == nil {
		return nil
	}
	var out []Overlap
	for _, r := range reader.Reads() {
		for _, w := range writer.Writes() {
			if fsutil.Overlaps(r, w) {
				out = append(out, Overlap{Reader: readerName, ReadPath: r, Writer: writerName, WritePath: w})
			}
		}
	}
	return out
}
