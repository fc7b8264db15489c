package runner

import (
	"fmt"
	"text/tabwriter"

	"github.com/jacoelho/treepath/internal/exit"
)

// explain prints one line per compiled step followed by the canonical
// query.
func (r *Runner) explain() int {
	tw := tabwriter.NewWriter(r.payloadWriter(), 0, 4, 2, ' ', 0)
	for i, step := range r.query.Steps() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, step.Kind(), step)
	}
	if err := tw.Flush(); err != nil {
		r.logf("Error formatting steps: %v\n", err)
		return exit.CodeInput
	}

	fmt.Fprintf(r.payloadWriter(), "canonical: %s\n", r.query)
	return exit.CodeOK
}
