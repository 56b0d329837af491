// Package httpclient builds the outbound HTTP clients used for upstream
// providers: request id propagation plus one log line per call.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"roast-board/cmd/api/trace"
	"roast-board/logger"
)

type Config struct {
	Timeout time.Duration
}

// loggingRoundTripper sets X-Request-Id / X-Span-Id and logs every
// outbound call.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())
	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	resp, err := l.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"query":      req.URL.RawQuery,
		"duration":   time.Since(start).String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.WarnWithFields("httpclient upstream error", fields)
	} else {
		logger.DebugWithFields("httpclient request success", fields)
	}
	return resp, nil
}

// BaseClient pairs an http.Client with the base URL of one upstream.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
}

func NewBaseClient(baseURL string, cfg Config) *BaseClient {
	return &BaseClient{
		HTTPClient: New(cfg),
		BaseURL:    baseURL,
	}
}

// NewRequest joins relPath onto the base URL. Query parameters must be given
// through query; a '?' in relPath is rejected because path.Join would
// mangle it.
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values) (*http.Request, error) {
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain a query string: %s", relPath)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	if relPath != "" {
		base.Path = path.Join(base.Path, relPath)
	}
	if query != nil {
		base.RawQuery = query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, base.String(), nil)
}

func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	return c.HTTPClient.Do(req)
}

// New builds an http.Client with the logging transport. A zero Timeout
// means 10s.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport},
	}
}
