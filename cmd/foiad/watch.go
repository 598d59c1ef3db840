package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/foiaworks/foiad/internal/events"
	"github.com/spf13/cobra"
)

// watchCmd streams lifecycle events from the NATS bus. Useful while
// operating a portfolio: leave it running in a terminal and watch
// escalations arrive.
var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Stream lifecycle events from the event bus",
	GroupID: "views",
	// Talks to NATS directly, not to the HTTP server.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		topic, _ := cmd.Flags().GetString("topic")

		sub, err := events.NewNATSSubscriber(natsURL)
		if err != nil {
			return fmt.Errorf("connecting to event bus: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return err
		}
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		fmt.Fprintf(os.Stderr, "watching %s on %s\n", topic, natsURL)
		for {
			select {
			case data, ok := <-ch:
				if !ok {
					return nil
				}
				printEvent(data)
			case <-sigCh:
				return nil
			}
		}
	},
}

func printEvent(data []byte) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		fmt.Println(string(data))
		return
	}
	line := ""
	if id, ok := payload["request_id"].(string); ok {
		line = id
	}
	if reason, ok := payload["reason"].(string); ok && reason != "" {
		line += "  " + reason
	}
	if line == "" {
		line = string(data)
	}
	fmt.Println(line)
}

func defaultNATSURL() string {
	if s := os.Getenv("FOIAD_NATS_URL"); s != "" {
		return s
	}
	return "nats://localhost:4222"
}

func init() {
	watchCmd.Flags().String("nats-url", defaultNATSURL(), "NATS server URL")
	watchCmd.Flags().String("topic", "foia.>", "subject filter (NATS wildcards allowed)")
}
