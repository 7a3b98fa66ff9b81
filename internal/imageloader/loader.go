// Package imageloader fetches avatars and media over HTTP and renders them
// as terminal drawables.
//
// A load never fails from the caller's point of view: an empty URL yields
// the request's Fallback drawable and any fetch or decode error yields its
// Error drawable. The error is still reported in Result for logging.
package imageloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/yatter/internal/metrics"
	"github.com/doyensec/safeurl"
	_ "golang.org/x/image/webp"
)

// DefaultMaxBytes caps a single image response.
const DefaultMaxBytes = 5 << 20

// ErrTooLarge is returned when an image exceeds the configured size cap.
var ErrTooLarge = errors.New("image exceeds size limit")

// Request describes one image load.
type Request struct {
	URL string

	// Placeholder is shown while the load is in flight.
	Placeholder Drawable
	// Error is shown when the load fails.
	Error Drawable
	// Fallback is shown when URL is empty.
	Fallback Drawable

	Headers http.Header
}

// Result is the outcome of a load. Drawable is always set to something
// renderable; Err is informational.
type Result struct {
	URL      string
	Drawable Drawable
	Err      error
}

// Loader loads images.
type Loader interface {
	Load(ctx context.Context, req Request) Result
}

// Options configures an HTTPLoader.
type Options struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	MaxBytes   int64
	// Strict routes every fetch through an SSRF-safe client that refuses
	// private, loopback and link-local addresses.
	Strict  bool
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// HTTPLoader is a Loader backed by net/http.
type HTTPLoader struct {
	client   *http.Client
	maxBytes int64
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewHTTPLoader creates an HTTPLoader.
func NewHTTPLoader(opts Options) *HTTPLoader {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := opts.HTTPClient
	switch {
	case opts.Strict:
		config := safeurl.GetConfigBuilder().
			SetTimeout(opts.Timeout).
			SetAllowedSchemes("http", "https").
			SetAllowedPorts(80, 443).
			Build()
		client = safeurl.Client(config).Client
	case client == nil:
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &HTTPLoader{
		client:   client,
		maxBytes: opts.MaxBytes,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
	}
}

// Load fetches and decodes req.URL.
func (l *HTTPLoader) Load(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.URL) == "" {
		l.metrics.RecordImageLoad(metrics.ImageFallback)
		return Result{URL: req.URL, Drawable: req.Fallback}
	}

	img, err := l.fetch(ctx, req)
	if err != nil {
		l.metrics.RecordImageLoad(metrics.ImageFailed)
		l.logger.Debug("image load failed",
			slog.String("url", req.URL),
			slog.String("error", err.Error()),
		)
		return Result{URL: req.URL, Drawable: req.Error, Err: err}
	}

	l.metrics.RecordImageLoad(metrics.ImageLoaded)
	return Result{URL: req.URL, Drawable: NewBitmap(img)}
}

func (l *HTTPLoader) fetch(ctx context.Context, req Request) (image.Image, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}
