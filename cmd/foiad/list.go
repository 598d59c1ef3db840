package main

import (
	"context"
	"fmt"
	"os"

	"github.com/foiaworks/foiad/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List records requests",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		agencyID, _ := cmd.Flags().GetString("agency")
		state, _ := cmd.Flags().GetString("state")
		active, _ := cmd.Flags().GetBool("active")
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := foiaClient.ListRequests(context.Background(), client.ListOptions{
			Agency:     agencyID,
			State:      state,
			ActiveOnly: active,
			Limit:      limit,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Requests)
		} else {
			printRequestTable(resp.Requests)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("agency", "a", "", "filter by agency ID")
	listCmd.Flags().StringP("state", "s", "", "filter by state")
	listCmd.Flags().Bool("active", false, "only non-terminal requests")
	listCmd.Flags().Int("limit", 50, "maximum number of requests to return")
}
