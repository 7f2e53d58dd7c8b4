// Package github holds the GitHub-backed implementations of the two external
// collaborators: the contents-API document store used for snapshot
// persistence, and the issues-API source of operator directives.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/polyscout/polyscout/internal/domain"
)

// Client is a thin authenticated GitHub REST API client shared by the
// contents store and the issues source.
type Client struct {
	apiHost    string
	token      string
	httpClient *http.Client
}

// ClientConfig holds Client construction parameters.
type ClientConfig struct {
	// APIHost is the REST API root, e.g. "https://api.github.com".
	APIHost string
	// Token is a PAT or installation token. Required for writes; reads of
	// public repositories work without it.
	Token   string
	Timeout time.Duration
}

// NewClient creates a GitHub REST client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		apiHost:    cfg.APIHost,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// do issues a request against the API host and returns the response body.
// 404 maps to domain.ErrNotFound so callers can treat missing paths as an
// empty result rather than a failure.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.apiHost+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, method, path)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, string(respBody))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, string(respBody))
	default:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}
}
