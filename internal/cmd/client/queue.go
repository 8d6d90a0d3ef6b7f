package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// NewQueueCommand constructs the `queue` command group.
func NewQueueCommand(baseURL BaseURLFunc) *cobra.Command {
	queueCmd := &cobra.Command{Use: "queue", Short: "Queue operations"}
	queueCmd.AddCommand(
		newQueueStatusCommand(baseURL),
		newQueueResetCommand(baseURL),
		newQueueCleanupCommand(baseURL),
	)
	return queueCmd
}

func newQueueStatusCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counters and active leases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var status json.RawMessage
			if _, err := doJSON(httpClient(), http.MethodGet, baseURL()+"/v1/queue/status", nil, &status); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
}

func newQueueResetCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Return stuck leases to the pending state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			timeoutMs, _ := cmd.Flags().GetInt64("timeout-ms")
			var out map[string]int
			if _, err := doJSON(httpClient(), http.MethodPost, baseURL()+"/v1/queue/reset",
				map[string]int64{"timeoutMs": timeoutMs}, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d\n", out["reset"])
			return nil
		},
	}
	cmd.Flags().Int64("timeout-ms", 5*60*1000, "Lease age in ms before an item counts as stuck")
	return cmd
}

func newQueueCleanupCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Purge old completed items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			maxAgeMs, _ := cmd.Flags().GetInt64("max-age-ms")
			var out map[string]int
			if _, err := doJSON(httpClient(), http.MethodPost, baseURL()+"/v1/queue/cleanup",
				map[string]int64{"maxAgeMs": maxAgeMs}, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d\n", out["purged"])
			return nil
		},
	}
	cmd.Flags().Int64("max-age-ms", 7*24*60*60*1000, "Completed-item age in ms before purge")
	return cmd
}

// NewPollCommand constructs the `poll` command, a manual poll trigger.
func NewPollCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Trigger one Reddit poll cycle on the server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]int
			if _, err := doJSON(httpClient(), http.MethodPost, baseURL()+"/v1/poll", nil, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "enqueued %d\n", out["enqueued"])
			return nil
		},
	}
}
