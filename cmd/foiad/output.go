package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRequestTable(reqs []*model.Request) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAGENCY\tSTATE\tDEADLINE\tSUBJECT")
	for _, r := range reqs {
		deadline := "-"
		if !r.Deadline.IsZero() {
			deadline = r.Deadline.Format("2006-01-02")
		}
		subject := ui.Truncate(strings.Join(r.Scope.Subject, ", "), 40)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.AgencyID,
			ui.RenderState(r.State),
			deadline,
			subject,
		)
	}
	w.Flush()
	fmt.Printf("\n%d requests\n", len(reqs))
}

func printRequestDetail(r *model.Request) {
	fmt.Printf("ID:          %s\n", r.ID)
	fmt.Printf("Agency:      %s\n", r.AgencyID)
	fmt.Printf("Requester:   %s\n", r.Requester)
	fmt.Printf("State:       %s\n", ui.RenderState(r.State))
	if r.Receipt != "" {
		fmt.Printf("Receipt:     %s\n", r.Receipt)
	}
	if len(r.Scope.Subject) > 0 {
		fmt.Printf("Subject:     %s\n", strings.Join(r.Scope.Subject, ", "))
	}
	if len(r.Scope.RecordTypes) > 0 {
		fmt.Printf("Types:       %s\n", strings.Join(r.Scope.RecordTypes, ", "))
	}
	if !r.Scope.DateFrom.IsZero() || !r.Scope.DateTo.IsZero() {
		fmt.Printf("Range:       %s .. %s\n",
			r.Scope.DateFrom.Format("2006-01-02"), r.Scope.DateTo.Format("2006-01-02"))
	}
	if !r.Deadline.IsZero() {
		fmt.Printf("Deadline:    %s\n", r.Deadline.Format("2006-01-02"))
	}
	if !r.NextWakeAt.IsZero() {
		fmt.Printf("Next wake:   %s\n", r.NextWakeAt.Format("2006-01-02 15:04:05"))
	}
	if r.LastError != nil {
		fmt.Printf("Last error:  %s (%s)\n", r.LastError.Message, r.LastError.At.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Created:     %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))

	if len(r.History) > 0 {
		fmt.Println("\nHistory:")
		for _, tr := range r.History {
			fmt.Printf("  %2d. %s -> %s  %s  %s\n",
				tr.Seq, tr.From, tr.To,
				ui.RenderMuted(tr.At.Format("2006-01-02 15:04")),
				tr.Reason)
		}
	}
}

func printCorrespondence(items []*model.CorrespondenceItem) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tDIR\tCLASS\tRESOLVED\tSUBJECT")
	for _, it := range items {
		resolved := ""
		if it.Resolved {
			resolved = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			it.Seq,
			it.Direction,
			it.Classification,
			resolved,
			ui.Truncate(it.Subject, 50),
		)
	}
	w.Flush()
}
