// Package algolia is a minimal client for the Algolia multi-query search
// endpoint, used as the primary identifier-resolution backend. Each Client
// talks to exactly one mirror host; the resolver chain holds one Client per
// host so dead mirrors can be skipped independently.
package algolia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/polyscout/polyscout/internal/domain"
)

// Client queries a single Algolia host.
type Client struct {
	host       string // e.g. "https://p6o7n0849h.algolia.net"
	appID      string
	apiKey     string
	index      string
	httpClient *http.Client
}

// Config holds the Client construction parameters.
type Config struct {
	Host    string
	AppID   string
	APIKey  string
	Index   string
	Timeout time.Duration
}

// New creates a Client for one mirror host.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2500 * time.Millisecond
	}
	return &Client{
		host:       cfg.Host,
		appID:      cfg.AppID,
		apiKey:     cfg.APIKey,
		index:      cfg.Index,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Host returns the mirror host this client queries.
func (c *Client) Host() string {
	return c.host
}

// multiQueryRequest is the body of the multi-query endpoint.
type multiQueryRequest struct {
	Requests []indexQuery `json:"requests"`
}

type indexQuery struct {
	IndexName string `json:"indexName"`
	Params    string `json:"params"`
}

// multiQueryResponse is the subset of the response we consume.
type multiQueryResponse struct {
	Results []struct {
		Hits []struct {
			Slug  string `json:"slug"`
			Title string `json:"title"`
		} `json:"hits"`
	} `json:"results"`
}

// SearchTop returns the slug of the single top-ranked hit for the query.
// Returns domain.ErrNoMatch when the index answered with no hit.
func (c *Client) SearchTop(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("hitsPerPage", "1")

	reqBody, err := json.Marshal(multiQueryRequest{
		Requests: []indexQuery{{IndexName: c.index, Params: params.Encode()}},
	})
	if err != nil {
		return "", fmt.Errorf("algolia: marshal request: %w", err)
	}

	endpoint := c.host + "/1/indexes/*/queries"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("algolia: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-algolia-application-id", c.appID)
	req.Header.Set("x-algolia-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("algolia: %s: %w", c.host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("algolia: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("algolia: %s: HTTP %d: %s", c.host, resp.StatusCode, string(body))
	}

	var decoded multiQueryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("algolia: decode response: %w", err)
	}

	for _, res := range decoded.Results {
		for _, hit := range res.Hits {
			if hit.Slug != "" {
				return hit.Slug, nil
			}
		}
	}
	return "", domain.ErrNoMatch
}
