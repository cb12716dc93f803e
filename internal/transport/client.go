// Package transport wraps the HTTP exchange with the Binga API: default
// headers, basic auth, form/query encoding, response buffering, and decoding
// of JSON or XML bodies into a generic payload.
package transport

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Format is a response format the gateway can be asked for via the Accept
// header.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONP Format = "jsonp"
	FormatXML   Format = "xml"
)

// MIME returns the Accept header value for the format. Unknown formats fall
// back to JSON, the gateway default.
func (f Format) MIME() string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatJSONP:
		return "application/javascript"
	default:
		return "application/json"
	}
}

// RequestSpec describes one API call. A fresh spec is built per call and
// never mutated after submission, so one Client can be shared across
// goroutines.
type RequestSpec struct {
	Method  string
	Path    string
	Accept  Format
	Query   url.Values
	Form    url.Values
	Headers http.Header
}

// RawResponse is the buffered result of one HTTP exchange, whatever the
// status code. Classification of error statuses happens above this layer.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Options carries optional Client collaborators.
type Options struct {
	// HTTPClient performs the actual exchanges. Callers needing timeouts,
	// proxies or TLS settings configure it here. Nil gets a client with a
	// 30s timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Bearer, when non-empty, sends "Bearer <token>" instead of the Basic
	// credentials.
	Bearer string
}

// Client executes RequestSpecs against one base endpoint with Basic auth
// default headers. Its configuration is set once at construction and read
// only afterwards; per-call state lives in the RequestSpec.
type Client struct {
	baseURL       string
	authorization string
	httpClient    *http.Client
	logger        *slog.Logger

	mu               sync.Mutex
	lastTransferTime time.Duration
	lastEffectiveURL string
}

// NewClient builds a transport client for the given endpoint. username and
// password form the Basic Authorization header sent on every call.
func NewClient(baseURL, username, password string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	authorization := "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
	if opts.Bearer != "" {
		authorization = "Bearer " + opts.Bearer
	}
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		authorization: authorization,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// Execute performs one exchange. It returns a TransportError only when the
// exchange could not complete (request construction, network failure,
// context cancellation); any HTTP status, including 4xx and 5xx, yields a
// RawResponse for the caller to classify.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (*RawResponse, error) {
	target := c.baseURL + spec.Path
	if len(spec.Query) > 0 {
		target += "?" + spec.Query.Encode()
	}

	var body io.Reader
	if len(spec.Form) > 0 {
		body = strings.NewReader(spec.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return nil, &TransportError{Op: spec.Method + " " + spec.Path, Err: err}
	}

	req.Header.Set("Accept", spec.Accept.MIME())
	req.Header.Set("Authorization", c.authorization)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for key, values := range spec.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: spec.Method + " " + spec.Path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: spec.Method + " " + spec.Path, Err: err}
	}

	c.recordStats(time.Since(start), resp)

	c.logger.Debug("binga api call",
		"method", spec.Method,
		"path", spec.Path,
		"status", resp.StatusCode,
		"bytes", len(raw),
	)

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

// recordStats keeps the last transfer duration and final effective URL
// (after redirects) for observability. Not required for correctness.
func (c *Client) recordStats(elapsed time.Duration, resp *http.Response) {
	effective := ""
	if resp.Request != nil && resp.Request.URL != nil {
		effective = resp.Request.URL.String()
	}
	c.mu.Lock()
	c.lastTransferTime = elapsed
	c.lastEffectiveURL = effective
	c.mu.Unlock()
}

// LastTransferTime reports the duration of the most recent exchange.
func (c *Client) LastTransferTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTransferTime
}

// LastEffectiveURL reports the final URL of the most recent exchange.
func (c *Client) LastEffectiveURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastEffectiveURL
}
