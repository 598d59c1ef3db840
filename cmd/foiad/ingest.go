package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/foiaworks/foiad/internal/tracker"
	"github.com/spf13/cobra"
)

// ingestCmd pushes out-of-band correspondence (scraped mail, webhook dumps)
// into the tracker. With --stdin the message is read as JSON; otherwise it
// is assembled from flags.
var ingestCmd = &cobra.Command{
	Use:     "ingest",
	Short:   "Ingest an out-of-band agency message",
	GroupID: "requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		var msg tracker.RawMessage

		fromStdin, _ := cmd.Flags().GetBool("stdin")
		if fromStdin {
			if err := json.NewDecoder(os.Stdin).Decode(&msg); err != nil {
				return fmt.Errorf("reading message from stdin: %w", err)
			}
		} else {
			msg.AgencyID, _ = cmd.Flags().GetString("agency")
			msg.Reference, _ = cmd.Flags().GetString("reference")
			msg.Subject, _ = cmd.Flags().GetString("subject")
			msg.Body, _ = cmd.Flags().GetString("body")
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}

		item, err := foiaClient.Ingest(context.Background(), msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(item)
		} else {
			fmt.Printf("Recorded %s on %s as %s\n", item.ID, item.RequestID, item.Classification)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().Bool("stdin", false, "read the message as JSON from stdin")
	ingestCmd.Flags().StringP("agency", "a", "", "agency the message came from")
	ingestCmd.Flags().String("reference", "", "portal reference number")
	ingestCmd.Flags().String("subject", "", "message subject")
	ingestCmd.Flags().String("body", "", "message body")
}
