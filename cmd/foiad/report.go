package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/ui"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Summarize the request portfolio",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		rep, err := foiaClient.Report(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(rep)
			return nil
		}

		fmt.Printf("Requests: %d total, %d active\n\n", rep.Total, rep.Active)

		states := make([]string, 0, len(rep.ByState))
		for st := range rep.ByState {
			states = append(states, string(st))
		}
		sort.Strings(states)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, st := range states {
			fmt.Fprintf(w, "  %s\t%d\n", st, rep.ByState[model.State(st)])
		}
		w.Flush()

		if len(rep.Overdue) > 0 {
			fmt.Println("\nOverdue:")
			for _, line := range rep.Overdue {
				fmt.Printf("  %s  %s  deadline %s\n",
					line.RequestID, line.AgencyID, ui.RenderMuted(line.Deadline.Format("2006-01-02")))
			}
		}
		if len(rep.Attention) > 0 {
			fmt.Println("\nNeeds attention:")
			for _, line := range rep.Attention {
				fmt.Printf("  %s  %s  %s\n", line.RequestID, ui.RenderState(line.State), line.Note)
			}
		}
		return nil
	},
}
