package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create",
	Short:   "Draft a new records request",
	GroupID: "requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		agencyID, _ := cmd.Flags().GetString("agency")
		requester, _ := cmd.Flags().GetString("requester")
		subjects, _ := cmd.Flags().GetStringSlice("subject")
		types, _ := cmd.Flags().GetStringSlice("type")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		description, _ := cmd.Flags().GetString("description")
		override, _ := cmd.Flags().GetBool("override")

		scope := model.RequestScope{
			Subject:     subjects,
			RecordTypes: types,
			Description: description,
		}
		var err error
		if scope.DateFrom, err = parseDay(from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		if scope.DateTo, err = parseDay(to); err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		req, err := foiaClient.CreateRequest(context.Background(), orchestrator.CreateParams{
			AgencyID:  agencyID,
			Requester: requester,
			Scope:     scope,
			Override:  override,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(req)
		} else {
			fmt.Printf("Created %s (%s)\n", req.ID, req.State)
		}
		return nil
	},
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func init() {
	createCmd.Flags().StringP("agency", "a", "", "agency ID (required)")
	createCmd.Flags().StringP("requester", "r", "", "requester identity (required)")
	createCmd.Flags().StringSliceP("subject", "s", nil, "subject keyword (repeatable)")
	createCmd.Flags().StringSliceP("type", "t", nil, "record type, e.g. email, report (repeatable)")
	createCmd.Flags().String("from", "", "start of date range (YYYY-MM-DD)")
	createCmd.Flags().String("to", "", "end of date range (YYYY-MM-DD)")
	createCmd.Flags().StringP("description", "d", "", "free-text request body")
	createCmd.Flags().Bool("override", false, "create even when a duplicate request is active")
	createCmd.MarkFlagRequired("agency")
	createCmd.MarkFlagRequired("requester")
}
