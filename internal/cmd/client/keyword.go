package client

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func httpClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// NewKeywordCommand constructs the `keyword` command group.
func NewKeywordCommand(baseURL BaseURLFunc) *cobra.Command {
	keywordCmd := &cobra.Command{Use: "keyword", Short: "Keyword operations"}
	keywordCmd.AddCommand(
		newKeywordAddCommand(baseURL),
		newKeywordListCommand(baseURL),
		newKeywordRemoveCommand(baseURL),
	)
	return keywordCmd
}

func newKeywordAddCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a keyword to monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			var kw struct {
				Name        string `json:"name"`
				CreatedAtMs int64  `json:"createdAtMs"`
			}
			if _, err := doJSON(httpClient(), http.MethodPost, baseURL()+"/v1/keywords",
				map[string]string{"name": name}, &kw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", kw.Name)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Keyword to monitor")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newKeywordListCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List monitored keywords",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var list []struct {
				Name        string `json:"name"`
				CreatedAtMs int64  `json:"createdAtMs"`
			}
			if _, err := doJSON(httpClient(), http.MethodGet, baseURL()+"/v1/keywords", nil, &list); err != nil {
				return err
			}
			for _, kw := range list {
				fmt.Fprintln(cmd.OutOrStdout(), kw.Name)
			}
			return nil
		},
	}
}

func newKeywordRemoveCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Stop monitoring a keyword",
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			endpoint := baseURL() + "/v1/keywords?name=" + url.QueryEscape(name)
			if _, err := doJSON(httpClient(), http.MethodDelete, endpoint, nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
			return nil
		},
	}
	cmd.Flags().String("name", "", "Keyword to remove")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
