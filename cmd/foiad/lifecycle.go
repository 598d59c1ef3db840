package main

import (
	"context"
	"fmt"
	"os"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/spf13/cobra"
)

var withdrawCmd = &cobra.Command{
	Use:     "withdraw <request-id>",
	Short:   "Withdraw a request",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := foiaClient.Withdraw(context.Background(), args[0], actor)
		return printLifecycle(req, err)
	},
}

var closeCmd = &cobra.Command{
	Use:     "close <request-id>",
	Short:   "Close a verified or partially satisfied request",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := foiaClient.CloseRequest(context.Background(), args[0], actor)
		return printLifecycle(req, err)
	},
}

var escalateCmd = &cobra.Command{
	Use:     "escalate <request-id>",
	Short:   "Escalate a request to an operator",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		req, err := foiaClient.Escalate(context.Background(), args[0], reason, actor)
		return printLifecycle(req, err)
	},
}

var resumeCmd = &cobra.Command{
	Use:     "resume <request-id>",
	Short:   "Resume an escalated request",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := foiaClient.Resume(context.Background(), args[0], actor)
		return printLifecycle(req, err)
	},
}

var replyCmd = &cobra.Command{
	Use:     "reply <request-id>",
	Short:   "Send an outbound message on a request's thread",
	GroupID: "requests",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		body, _ := cmd.Flags().GetString("body")
		if body == "" {
			return fmt.Errorf("--body is required")
		}

		item, err := foiaClient.Reply(context.Background(), args[0], subject, body, actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(item)
		} else {
			fmt.Printf("Sent reply %s (seq %d)\n", item.ID, item.Seq)
		}
		return nil
	},
}

func printLifecycle(req *model.Request, err error) error {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if jsonOutput {
		printJSON(req)
	} else {
		fmt.Printf("%s is now %s\n", req.ID, req.State)
	}
	return nil
}

func init() {
	escalateCmd.Flags().String("reason", "", "why the request needs attention")
	replyCmd.Flags().String("subject", "", "message subject")
	replyCmd.Flags().String("body", "", "message body (required)")
}
