// Package api is the HTTP client for the Yatter server.
//
// All requests carry a client User-Agent and a fresh X-Request-Id, and
// are paced by a token-bucket limiter shared by the client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/Mr-Dark-debug/yatter/internal/model"
	"github.com/Mr-Dark-debug/yatter/pkg/jsonutil"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	userAgent = "Yatter-TUI/1.0"

	// maxResponseBytes bounds JSON responses.
	maxResponseBytes = 4 << 20
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yatter API returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps well-known statuses onto model sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ErrUnauthorized
	case http.StatusNotFound:
		return model.ErrNotFound
	}
	return nil
}

// Client talks to a single Yatter server.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    metrics.Recorder
	logger     *slog.Logger
}

// Options configures a Client.
type Options struct {
	HTTPClient        *http.Client
	RequestsPerSecond float64
	Burst             int
	Metrics           metrics.Recorder
	Logger            *slog.Logger
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server URL %q: %w", baseURL, err)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		baseURL:    u,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(limit, opts.Burst),
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}, nil
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := loginRequest{Username: username, Password: password}
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// PublicTimeline fetches the public timeline, newest first.
func (c *Client) PublicTimeline(ctx context.Context, q model.TimelineQuery) ([]model.Status, error) {
	params := url.Values{}
	if q.OnlyMedia {
		params.Set("only_media", "true")
	}
	if q.MaxID != "" {
		params.Set("max_id", q.MaxID)
	}
	if q.SinceID != "" {
		params.Set("since_id", q.SinceID)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	start := time.Now()
	var wire []statusJSON
	err := c.do(ctx, http.MethodGet, "/v1/timelines/public", params, nil, &wire)
	c.metrics.RecordTimelineFetch(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("fetching public timeline: %w", err)
	}

	statuses := make([]model.Status, 0, len(wire))
	for _, s := range wire {
		statuses = append(statuses, s.toModel())
	}
	return statuses, nil
}

// do performs a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("yatter request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("yatter returned an error status",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("request_id", requestID),
			slog.Int("http_status", resp.StatusCode),
		)
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       jsonutil.TruncateString(jsonutil.CompactJSON(string(raw)), 200),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
