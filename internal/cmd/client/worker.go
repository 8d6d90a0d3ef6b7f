package client

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/redscout/redscout/internal/classify"
	"github.com/redscout/redscout/internal/queue"
	"github.com/redscout/redscout/internal/worker"
	logpkg "github.com/redscout/redscout/pkg/log"
)

// queueTransport drives the server's dispatcher contract over HTTP, so
// an external worker process behaves exactly like an in-process one.
type queueTransport struct {
	baseURL string
	http    *http.Client
}

func newQueueTransport(baseURL string) *queueTransport {
	return &queueTransport{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

func (t *queueTransport) ClaimNext(ctx context.Context, workerID string) (*queue.Item, error) {
	var item queue.Item
	status, err := doJSON(t.http, http.MethodPost, t.baseURL+"/v1/queue/next",
		map[string]string{"workerId": workerID}, &item)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	return &item, nil
}

func (t *queueTransport) SubmitResult(ctx context.Context, key string, res queue.Result, workerID string) (*queue.Item, error) {
	req := map[string]any{"key": key, "workerId": workerID, "result": res}
	var item queue.Item
	status, err := doJSON(t.http, http.MethodPost, t.baseURL+"/v1/queue/result", req, &item)
	if err != nil {
		switch status {
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", queue.ErrNotFound, key)
		case http.StatusConflict:
			return nil, fmt.Errorf("%w: %s", queue.ErrLeaseConflict, key)
		}
		return nil, err
	}
	return &item, nil
}

// NewWorkerCommand constructs the `worker` command group.
func NewWorkerCommand(baseURL BaseURLFunc) *cobra.Command {
	workerCmd := &cobra.Command{Use: "worker", Short: "Worker operations"}
	workerCmd.AddCommand(newWorkerStartCommand(baseURL))
	return workerCmd
}

func newWorkerStartCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run a classification worker against a redscout server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			classifierURL, _ := cmd.Flags().GetString("classifier-url")
			model, _ := cmd.Flags().GetString("model")
			pollMs, _ := cmd.Flags().GetInt("poll-interval-ms")
			if classifierURL == "" {
				classifierURL = os.Getenv("REDSCOUT_CLASSIFIER_URL")
			}
			if classifierURL == "" {
				return fmt.Errorf("--classifier-url or REDSCOUT_CLASSIFIER_URL required")
			}

			classifier, err := classify.NewClient(classify.Options{
				BaseURL: classifierURL,
				APIKey:  os.Getenv("REDSCOUT_CLASSIFIER_API_KEY"),
				Model:   model,
			})
			if err != nil {
				return err
			}

			level := logpkg.InfoLevel
			if l, err := logpkg.ParseLevel(os.Getenv("REDSCOUT_LOG_LEVEL")); err == nil {
				level = l
			}
			logger := logpkg.NewLogger(logpkg.WithLevel(level))

			w := worker.New(newQueueTransport(baseURL()), classifier, logger, worker.Options{
				ID:           id,
				PollInterval: time.Duration(pollMs) * time.Millisecond,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "worker %s started against %s\n", w.ID(), baseURL())
			w.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().String("id", "", "Worker identity (default: random uuid)")
	cmd.Flags().String("classifier-url", "", "OpenAI-compatible API base URL")
	cmd.Flags().String("model", "", "Classifier model name (default gpt-4o-mini)")
	cmd.Flags().Int("poll-interval-ms", 5000, "Sleep in ms when the queue is empty")
	return cmd
}
