//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "http://localhost:3000"
	defaultTimeout = 30 * time.Second
)

// TestConfig holds configuration for e2e tests
type TestConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewTestConfig creates a new TestConfig with defaults or env overrides
func NewTestConfig() *TestConfig {
	baseURL := os.Getenv("SIMPLE_MCP_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	config := &TestConfig{
		BaseURL: baseURL,
		Timeout: defaultTimeout,
	}
	fmt.Printf("Test config: url=%s, timeout=%v\n", config.BaseURL, config.Timeout)
	return config
}

// WaitReady polls the status endpoint until the server answers or the timeout elapses
func (c *TestConfig) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	client := &http.Client{Timeout: 2 * time.Second}
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not ready: %w", c.BaseURL, ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
	}
}
