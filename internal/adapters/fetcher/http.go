// Package fetcher provides DocumentFetcher implementations for HTTP endpoints,
// local files and go-getter sources.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/NextDoc4j/nextdoc4j-ui/internal/domain"
)

const maxPayloadBytes = 64 << 20

// HTTPFetcher GETs JSON documents, retrying transient failures.
type HTTPFetcher struct {
	client   *http.Client
	base     string
	attempts uint
	delay    time.Duration
	maxBytes int64
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = c
	}
}

// WithRetry sets the number of attempts and the initial back-off delay.
func WithRetry(attempts uint, delay time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if attempts == 0 {
			attempts = 1
		}
		f.attempts = attempts
		f.delay = delay
	}
}

// WithMaxPayload sets the largest accepted response body in bytes.
func WithMaxPayload(n int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// NewHTTPFetcher creates a fetcher that resolves relative locations against baseURL.
// baseURL may be empty, in which case only absolute URLs can be fetched.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
		}
	}
	f := &HTTPFetcher{
		client:   &http.Client{},
		base:     strings.TrimRight(baseURL, "/"),
		attempts: 3,
		delay:    200 * time.Millisecond,
		maxBytes: maxPayloadBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Resolve turns a location into an absolute URL.
func (f *HTTPFetcher) Resolve(location string) (string, error) {
	if isHTTP(location) {
		return location, nil
	}
	if f.base == "" {
		return "", fmt.Errorf("relative location %q without base URL", location)
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return f.base + location, nil
}

// Fetch returns the body of a successful GET. Network errors and 5xx responses
// are retried; 4xx responses fail immediately.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	target, err := f.Resolve(location)
	if err != nil {
		return nil, err
	}

	var body []byte
	err = retry.Do(
		func() error {
			b, err := f.get(ctx, target)
			if err != nil {
				return err
			}
			body = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &domain.FetchError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &domain.FetchError{URL: target, Err: err}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &domain.FetchError{URL: target, Err: domain.ErrPayloadTooLarge}
	}
	return body, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrPayloadTooLarge) {
		return false
	}
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	return fe.StatusCode == 0 || fe.StatusCode >= http.StatusInternalServerError
}

func isHTTP(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
