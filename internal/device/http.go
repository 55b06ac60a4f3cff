// Package device talks to the printer that owns the destination card: it asks
// the printer firmware to release the card, over HTTP when the card is
// exported by a printer host, or over the printer's serial line otherwise.
package device

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/joe/sync-onboard/pkg/clock"
)

// HTTP release constants.
const (
	APIKeyHeader         = "X-Api-Key"
	DefaultHTTPTimeout   = 5 * time.Second
	DefaultRetryInterval = time.Second
)

//nolint:gochecknoglobals // Fixed request body
var releaseBody = []byte(`{"command":"release"}`)

// HTTPReleaser posts the release command to a printer host's SD card endpoint.
type HTTPReleaser struct {
	client        *http.Client
	apiKey        string
	clock         clock.Clock
	logger        *slog.Logger
	retryInterval time.Duration
}

// HTTPOption configures an HTTPReleaser.
type HTTPOption func(*HTTPReleaser)

// WithHTTPClient replaces the default client (5 s timeout).
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(r *HTTPReleaser) { r.client = client }
}

// WithClock replaces the real clock used between non-204 polls.
func WithClock(c clock.Clock) HTTPOption {
	return func(r *HTTPReleaser) { r.clock = c }
}

// WithRetryInterval sets the pause between non-204 polls.
func WithRetryInterval(d time.Duration) HTTPOption {
	return func(r *HTTPReleaser) { r.retryInterval = d }
}

// NewHTTPReleaser creates a releaser that authenticates with apiKey.
func NewHTTPReleaser(apiKey string, logger *slog.Logger, opts ...HTTPOption) *HTTPReleaser {
	releaser := &HTTPReleaser{
		client:        &http.Client{Timeout: DefaultHTTPTimeout},
		apiKey:        apiKey,
		clock:         clock.Real{},
		logger:        logger,
		retryInterval: DefaultRetryInterval,
	}

	for _, opt := range opts {
		opt(releaser)
	}

	return releaser
}

// Release POSTs {"command":"release"} to endpoint until the printer answers
// 204 No Content. Other status codes are logged and polled again; a transport
// failure or timeout is returned to the caller.
func (r *HTTPReleaser) Release(ctx context.Context, endpoint string) error {
	for {
		status, err := r.post(ctx, endpoint)
		if err != nil {
			return err
		}

		if status == http.StatusNoContent {
			r.logger.Info("printer released card", "endpoint", endpoint)
			return nil
		}

		r.logger.Warn("printer refused release", "endpoint", endpoint, "status", status)

		if err := r.clock.Sleep(ctx, r.retryInterval); err != nil {
			return fmt.Errorf("release %s: %w", endpoint, err)
		}
	}
}

func (r *HTTPReleaser) post(ctx context.Context, endpoint string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(releaseBody))
	if err != nil {
		return 0, fmt.Errorf("build release request for %s: %w", endpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("release %s: %w", endpoint, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return resp.StatusCode, nil
}
