package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/specialistvlad/learngrid/internal/availability"
)

func printAvailability(w io.Writer, results []availability.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tLABEL\tCATEGORY\tSTATUS\tREADINESS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\n",
			r.Node.ID, r.Node.Label, r.Node.Category, r.Status, r.Readiness.Score)
	}
	return tw.Flush()
}
