// Package openrouter is a minimal client for OpenRouter's chat-completion
// endpoint: build a request, POST it with a bearer token, and pull the
// completion text out of the reply.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIURL is the chat-completion endpoint.
const APIURL = "https://openrouter.ai/api/v1/chat/completions"

// Logger receives optional diagnostics. *logging.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
}

// Client sends chat-completion requests. It is immutable once built and
// safe for concurrent use.
type Client struct {
	apiKey   string
	endpoint string
	referer  string
	title    string
	http     *http.Client
	log      Logger
	metrics  *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport handle.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithEndpoint overrides APIURL.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithReferer sets the HTTP-Referer attribution header.
func WithReferer(referer string) Option {
	return func(c *Client) {
		c.referer = referer
	}
}

// WithTitle sets the X-Title attribution header.
func WithTitle(title string) Option {
	return func(c *Client) {
		c.title = title
	}
}

// WithLogger enables debug diagnostics, including a dump of every decoded
// reply.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithMetrics records call outcomes and latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New returns a Client authenticating with apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		endpoint: APIURL,
		http:     &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// apiError is the error object OpenRouter returns on failed requests.
type apiError struct {
	Error *struct {
		Message string `json:"message"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// ComplexCall sends params as-is and returns the decoded reply.
func (c *Client) ComplexCall(ctx context.Context, params Params) (*Response, error) {
	start := time.Now()
	resp, outcome, err := c.do(ctx, params)
	c.metrics.observe(outcome, time.Since(start))
	return resp, err
}

// Call wraps prompt into a single user message and sends it with model.
// A nil opts sends no temperature or response schema.
func (c *Client) Call(ctx context.Context, model, prompt string, opts *SimpleParams) (*Response, error) {
	return c.ComplexCall(ctx, PromptParams(model, prompt, opts))
}

func (c *Client) do(ctx context.Context, params Params) (*Response, string, error) {
	if err := params.Validate(); err != nil {
		return nil, OutcomeEncodeError, err
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, OutcomeEncodeError, &SerializationError{Op: OpEncode, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, OutcomeTransportError, &TransportError{Op: "build", URL: c.endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, OutcomeTransportError, &TransportError{Op: "do", URL: c.endpoint, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, OutcomeTransportError, &TransportError{Op: "read", URL: c.endpoint, StatusCode: res.StatusCode, Err: err}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		te := &TransportError{
			Op:         "status",
			URL:        c.endpoint,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("%s: %s", http.StatusText(res.StatusCode), string(body)),
		}
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error != nil {
			te.Message = ae.Error.Message
		}
		return nil, OutcomeHTTPError, te
	}

	var envelope map[string]any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, OutcomeDecodeError, &SerializationError{Op: OpDecode, Err: err}
	}
	if envelope == nil {
		return nil, OutcomeDecodeError, &SerializationError{Op: OpDecode, Err: errors.New("reply is not a JSON object")}
	}

	if c.log != nil {
		c.log.Debug("chat completion reply", "endpoint", c.endpoint, "status", res.StatusCode, "envelope", envelope)
	}
	return &Response{envelope: envelope, log: c.log}, OutcomeOK, nil
}
