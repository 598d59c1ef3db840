package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/foiaworks/foiad/internal/client"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <request-id>",
	Short:   "Show one request with correspondence and verification",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id := args[0]

		req, err := foiaClient.GetRequest(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		items, err := foiaClient.ListCorrespondence(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		verification, err := foiaClient.GetVerification(ctx, id)
		if err != nil {
			// Requests that never reached verification have none.
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			verification = nil
		}

		if jsonOutput {
			printJSON(map[string]any{
				"request":        req,
				"correspondence": items,
				"verification":   verification,
			})
			return nil
		}

		printRequestDetail(req)
		if len(items) > 0 {
			fmt.Println("\nCorrespondence:")
			printCorrespondence(items)
		}
		if verification != nil {
			fmt.Printf("\nVerification:  %s (%d records)\n", verification.Status, verification.RecordCount)
			for _, d := range verification.Discrepancies {
				fmt.Printf("  missing %s: expected %s, observed %s\n", d.Field, d.Expected, d.Observed)
			}
			for _, o := range verification.OverDeliveries {
				fmt.Printf("  extra %s: %s\n", o.RecordRef, o.Reason)
			}
		}
		return nil
	},
}
