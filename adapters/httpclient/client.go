// Package httpclient implements ports.Transport over net/http with
// connection pooling, a base URL, default headers, and request tracing.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/artpar/fieldmap/adapters/idgen"
	"github.com/artpar/fieldmap/domain/payload"
	"github.com/artpar/fieldmap/ports"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMaxIdleConns    = 100
	defaultIdleConnTimeout = 90 * time.Second

	// maxResponseBytes caps how much of an upstream body is read.
	maxResponseBytes = 50 << 20 // 50 MB
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the default upstream base; a request's own BaseURL
	// overrides it per call.
	BaseURL string

	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration

	// Headers are sent on every request unless the request sets the
	// same header itself.
	Headers map[string]string

	// MaxIdleConns caps the connection pool. Defaults to 100.
	MaxIdleConns int

	// IdleConnTimeout is how long idle connections are kept.
	// Defaults to 90s.
	IdleConnTimeout time.Duration

	// IDs generates trace IDs for requests that carry none.
	// Defaults to UUIDs.
	IDs ports.IDGenerator

	Logger zerolog.Logger
}

// Client calls upstream HTTP services.
type Client struct {
	client  *http.Client
	baseURL *url.URL
	headers map[string]string
	ids     ports.IDGenerator
	logger  zerolog.Logger
}

// New creates an HTTP client from config.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = defaultIdleConnTimeout
	}
	if cfg.IDs == nil {
		cfg.IDs = idgen.UUID{}
	}

	var base *url.URL
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		base = u
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	return &Client{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		baseURL: base,
		headers: cfg.Headers,
		ids:     cfg.IDs,
		logger:  cfg.Logger,
	}, nil
}

// Do sends the request and returns the upstream's response. JSON
// bodies are decoded into Response.Data; other content types leave
// Data nil.
func (c *Client) Do(ctx context.Context, req payload.Request) (payload.Response, error) {
	target, err := c.resolveURL(req)
	if err != nil {
		return payload.Response{}, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return payload.Response{}, fmt.Errorf("build request: %w", err)
	}

	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	traceID := req.TraceID
	if traceID == "" {
		traceID = c.ids.New()
	}
	httpReq.Header.Set("X-Request-ID", traceID)

	start := time.Now()
	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return payload.Response{}, fmt.Errorf("%s %s: %w", req.Method, target.String(), err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return payload.Response{}, fmt.Errorf("read response body: %w", err)
	}

	resp := payload.Response{
		Status:    httpResp.StatusCode,
		Headers:   responseHeaders(httpResp.Header),
		Body:      raw,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if isJSON(httpResp.Header.Get("Content-Type")) && len(raw) > 0 {
		var data any
		if err := json.Unmarshal(raw, &data); err == nil {
			resp.Data = data
		}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("url", target.String()).
		Str("trace_id", traceID).
		Int("status", resp.Status).
		Int64("latency_ms", resp.LatencyMs).
		Msg("upstream call")

	return resp, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

func (c *Client) resolveURL(req payload.Request) (*url.URL, error) {
	base := c.baseURL
	if req.BaseURL != "" {
		u, err := url.Parse(req.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse request base URL: %w", err)
		}
		base = u
	}
	if base == nil {
		return nil, fmt.Errorf("no base URL for %s %s", req.Method, req.Path)
	}
	return base.ResolveReference(&url.URL{Path: req.Path, RawQuery: req.Query}), nil
}

// hopByHop lists connection-scoped headers that must not be copied
// out of the upstream response.
var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

func responseHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if hopByHop[strings.ToLower(k)] || len(vs) == 0 {
			continue
		}
		out[k] = vs[0]
	}
	return out
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "application/json") || strings.Contains(ct, "+json")
}

// Ensure interface compliance.
var _ ports.Transport = (*Client)(nil)
