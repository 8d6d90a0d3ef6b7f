package client

import (
	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the redscout client.
// It registers the keyword, queue, poll, and worker command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "redscout",
		Short: "Redscout client commands",
	}
	root.AddCommand(NewKeywordCommand(baseURL))
	root.AddCommand(NewQueueCommand(baseURL))
	root.AddCommand(NewPollCommand(baseURL))
	root.AddCommand(NewWorkerCommand(baseURL))
	return root
}
