package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
)

// List writes the tasks of the build files in declaration order. The
// default task is marked with an asterisk.
func (a *App) List(ctx context.Context) error {
	model, err := a.Load(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.outW, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tRUNS\tDESCRIPTION")
	for _, name := range model.Order {
		t := model.Tasks[name]
		label := name
		if name == model.Default {
			label += " *"
		}
		runs := fmt.Sprintf("%d steps", len(t.Steps))
		if t.IsAggregate() {
			runs = strings.Join(t.Prerequisites(), ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", label, runs, t.Description)
	}
	return tw.Flush()
}
