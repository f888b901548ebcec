package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
)

func newWaitCmd() *cobra.Command {
	var url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Block until the backend health endpoint answers",
		Example: `
  noetctl wait --url http://localhost:3001 --timeout 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			healthURL := strings.TrimRight(url, "/") + "/api/health"
			if err := waitHealthy(cmd.Context(), healthURL, timeout); err != nil {
				return fmt.Errorf("backend not healthy after %s: %w", timeout, err)
			}
			color.Green("Backend is healthy at %s", healthURL)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&url, "url", "http://localhost:3001", "backend base URL")
	f.DurationVar(&timeout, "timeout", 30*time.Second, "give up after this long")
	return cmd
}

// waitHealthy polls healthURL with exponential backoff until it returns 200.
func waitHealthy(ctx context.Context, healthURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 5 * time.Second}

	backoff := retry.NewExponential(100 * time.Millisecond)
	backoff = retry.WithCappedDuration(2*time.Second, backoff)
	backoff = retry.WithMaxDuration(timeout, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("health returned %s", resp.Status))
		}
		return nil
	})
}
