// Package polymarket is the REST client layer for the Polymarket Gamma API,
// which provides market discovery, metadata, and public search.
package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/polyscout/polyscout/internal/domain"
)

// GammaClient is the REST client for the Polymarket Gamma API. All calls are
// throttled by a client-side rate limiter; the upstream limits are not
// published, so runs stay sequential and polite.
type GammaClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// GammaConfig holds the GammaClient construction parameters.
type GammaConfig struct {
	BaseURL      string // e.g. "https://gamma-api.polymarket.com"
	UserAgent    string
	RateLimitRPS float64
	Timeout      time.Duration
}

// NewGammaClient creates a new Gamma API client.
func NewGammaClient(cfg GammaConfig) *GammaClient {
	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 4
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GammaClient{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// EventBySlug returns the event for the given canonical identifier.
// Returns domain.ErrNotFound when no event exists for the slug.
func (g *GammaClient) EventBySlug(ctx context.Context, slug string) (domain.Event, error) {
	params := url.Values{}
	params.Set("slug", slug)

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return domain.Event{}, fmt.Errorf("polymarket/gamma: get event by slug %s: %w", slug, err)
	}

	var events []APIEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return domain.Event{}, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}
	if len(events) == 0 {
		return domain.Event{}, fmt.Errorf("polymarket/gamma: %w: slug=%s", domain.ErrNotFound, slug)
	}

	return events[0].ToDomainEvent(), nil
}

// TopEvents returns up to limit currently active, open events ordered by 24h
// volume descending. This is the Scanner's platform-wide sweep.
func (g *GammaClient) TopEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("active", "true")
	params.Set("closed", "false")
	params.Set("order", "volume24hr")
	params.Set("ascending", "false")

	body, err := g.doGet(ctx, "/events?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("polymarket/gamma: top events: %w", err)
	}

	var apiEvents []APIEvent
	if err := json.Unmarshal(body, &apiEvents); err != nil {
		return nil, fmt.Errorf("polymarket/gamma: decode events: %w", err)
	}

	events := make([]domain.Event, 0, len(apiEvents))
	for i := range apiEvents {
		events = append(events, apiEvents[i].ToDomainEvent())
	}
	return events, nil
}

// searchHit is one result row from the public-search endpoint. Only the slug
// is consumed.
type searchHit struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// PublicSearch returns the slug of the first-ranked event matching the
// query on the public keyword-search endpoint. Returns domain.ErrNoMatch
// when the search succeeded but found nothing.
func (g *GammaClient) PublicSearch(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := g.doGet(ctx, "/public-search?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("polymarket/gamma: public search: %w", err)
	}

	// The endpoint has been observed returning both a bare array of hits and
	// an object wrapping an "events" array.
	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		var wrapped struct {
			Events []searchHit `json:"events"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return "", fmt.Errorf("polymarket/gamma: decode search results: %w", err)
		}
		hits = wrapped.Events
	}

	for _, h := range hits {
		if h.Slug != "" {
			return h.Slug, nil
		}
	}
	return "", domain.ErrNoMatch
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doGet sends an unauthenticated GET request to the Gamma API.
func (g *GammaClient) doGet(ctx context.Context, path string) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Referer", "https://polymarket.com/")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx responses to sentinel errors where a caller
// can usefully distinguish them.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
