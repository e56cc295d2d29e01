// Package http is a small retry-aware client for outgoing calls such as
// Slack webhooks.
//
//	resp, err := http.Post(ctx, webhookURL).
//	    Body(map[string]any{"text": "Low stock: 3 products"}).
//	    Timeout(5 * time.Second).
//	    Retry(3, time.Second).
//	    Send()
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"
	"time"

	"github.com/shashiranjanraj/shopease/pkg/logger"
)

var defaultTransport = &gohttp.Transport{
	Proxy:               gohttp.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 20,
	IdleConnTimeout:     90 * time.Second,
}

// DefaultClient is shared by every outgoing request. Tests may swap its
// Transport and restore it with ResetTransport.
var DefaultClient = &gohttp.Client{Transport: defaultTransport}

func ResetTransport() { DefaultClient.Transport = defaultTransport }

// Request is a fluent request builder.
type Request struct {
	ctx       context.Context
	method    string
	url       string
	headers   map[string]string
	body      interface{}
	timeout   time.Duration
	attempts  int
	retryWait time.Duration
}

func Get(ctx context.Context, url string) *Request  { return newRequest(ctx, gohttp.MethodGet, url) }
func Post(ctx context.Context, url string) *Request { return newRequest(ctx, gohttp.MethodPost, url) }

func newRequest(ctx context.Context, method, url string) *Request {
	return &Request{
		ctx:       ctx,
		method:    method,
		url:       url,
		headers:   map[string]string{"Accept": "application/json"},
		timeout:   10 * time.Second,
		attempts:  1,
		retryWait: 500 * time.Millisecond,
	}
}

func (r *Request) Header(key, value string) *Request {
	r.headers[key] = value
	return r
}

// Body sets the payload. Strings and byte slices are sent raw; anything else
// is JSON-encoded.
func (r *Request) Body(v interface{}) *Request {
	r.body = v
	return r
}

// Timeout bounds each attempt.
func (r *Request) Timeout(d time.Duration) *Request {
	r.timeout = d
	return r
}

// Retry sets the total number of attempts and the first backoff, which
// doubles after every failure. Transport errors and 5xx/429 responses are
// retried; other statuses are returned as-is.
func (r *Request) Retry(attempts int, wait time.Duration) *Request {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.retryWait = wait
	return r
}

// Send executes the request.
func (r *Request) Send() (*Response, error) {
	payload, contentType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	var lastErr error
	wait := r.retryWait
	for attempt := 1; attempt <= r.attempts; attempt++ {
		resp, err := r.do(payload, contentType)
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}
		if err == nil {
			err = fmt.Errorf("status %d", resp.StatusCode)
		}
		lastErr = err

		if attempt == r.attempts {
			break
		}
		logger.WithCtx(r.ctx).Warn("http: request failed, retrying",
			"url", r.url, "attempt", attempt, "backoff", wait, "error", err)

		select {
		case <-r.ctx.Done():
			return nil, r.ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return nil, fmt.Errorf("http: %s %s failed after %d attempts: %w", r.method, r.url, r.attempts, lastErr)
}

func retryable(status int) bool {
	return status >= 500 || status == gohttp.StatusTooManyRequests
}

func (r *Request) do(payload []byte, contentType string) (*Response, error) {
	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := gohttp.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("http: build request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: send: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("http: read body: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Raw: raw}, nil
}

func (r *Request) encodeBody() ([]byte, string, error) {
	switch v := r.body.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(v), "text/plain; charset=utf-8", nil
	case []byte:
		return v, "application/octet-stream", nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("http: marshal body: %w", err)
		}
		return b, "application/json", nil
	}
}

// Response holds a fully read response.
type Response struct {
	StatusCode int
	Headers    gohttp.Header
	Raw        []byte
}

func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

func (r *Response) JSON(dest interface{}) error {
	if err := json.Unmarshal(r.Raw, dest); err != nil {
		return fmt.Errorf("http: decode JSON: %w", err)
	}
	return nil
}

// Throw converts a non-2xx response into an error.
func (r *Response) Throw() error {
	if !r.OK() {
		return fmt.Errorf("http: request failed with status %d: %s", r.StatusCode, string(r.Raw))
	}
	return nil
}
