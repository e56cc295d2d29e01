// Package testkit drives an http.Handler end to end from tests and decodes
// the response envelope.
//
//	api := testkit.New(t, r.Handler())
//	res := api.As(token).Post("/api/orders", body)
//	res.AssertStatus(http.StatusCreated)
//	var order models.Order
//	res.Data(&order)
package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Client issues requests against a handler without a network listener.
type Client struct {
	t       *testing.T
	h       http.Handler
	token   string
	cookies []*http.Cookie
	headers http.Header
}

func New(t *testing.T, h http.Handler) *Client {
	return &Client{t: t, h: h, headers: http.Header{}}
}

// As returns a copy of c that sends token as a Bearer credential.
func (c *Client) As(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// WithHeader returns a copy of c that sends an extra header.
func (c *Client) WithHeader(key, value string) *Client {
	cp := *c
	cp.headers = c.headers.Clone()
	cp.headers.Set(key, value)
	return &cp
}

// WithCookies returns a copy of c that replays cookies, typically the
// session cookie from an earlier Result.
func (c *Client) WithCookies(cookies []*http.Cookie) *Client {
	cp := *c
	cp.cookies = cookies
	return &cp
}

func (c *Client) Get(path string) *Result            { return c.Do(http.MethodGet, path, nil) }
func (c *Client) Post(path string, body any) *Result  { return c.Do(http.MethodPost, path, body) }
func (c *Client) Put(path string, body any) *Result   { return c.Do(http.MethodPut, path, body) }
func (c *Client) Patch(path string, body any) *Result { return c.Do(http.MethodPatch, path, body) }
func (c *Client) Delete(path string) *Result         { return c.Do(http.MethodDelete, path, nil) }

// Do sends body as JSON. A string or []byte body is sent verbatim.
func (c *Client) Do(method, path string, body any) *Result {
	c.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err, "testkit: marshal request body")
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, r)
	if r != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return &Result{t: c.t, Rec: rec}
}

// Envelope mirrors the JSON body every API response is wrapped in.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Result is a recorded response.
type Result struct {
	t   *testing.T
	Rec *httptest.ResponseRecorder
	env *Envelope
}

func (r *Result) Code() int { return r.Rec.Code }

func (r *Result) Body() string { return r.Rec.Body.String() }

func (r *Result) Cookies() []*http.Cookie { return r.Rec.Result().Cookies() }

// Envelope decodes the body once and caches it.
func (r *Result) Envelope() *Envelope {
	r.t.Helper()
	if r.env == nil {
		var env Envelope
		require.NoError(r.t, json.Unmarshal(r.Rec.Body.Bytes(), &env), "testkit: body is not an envelope: %s", r.Body())
		r.env = &env
	}
	return r.env
}

// Data decodes the envelope's data field into dest.
func (r *Result) Data(dest any) *Result {
	r.t.Helper()
	require.NoError(r.t, json.Unmarshal(r.Envelope().Data, dest), "testkit: decode data: %s", r.Body())
	return r
}

// AssertStatus fails the test (and stops it) on an unexpected status code.
func (r *Result) AssertStatus(want int) *Result {
	r.t.Helper()
	require.Equal(r.t, want, r.Rec.Code, "unexpected status, body: %s", r.Body())
	return r
}

// AssertMessage checks the envelope message.
func (r *Result) AssertMessage(want string) *Result {
	r.t.Helper()
	assert.Equal(r.t, want, r.Envelope().Message)
	return r
}

// AssertFieldError checks that validation reported an error for field.
func (r *Result) AssertFieldError(field string) *Result {
	r.t.Helper()
	assert.Contains(r.t, r.Envelope().Errors, field, "body: %s", r.Body())
	return r
}

// AssertJSON compares the whole body with expected, ignoring key order.
func (r *Result) AssertJSON(expected string) *Result {
	r.t.Helper()
	assert.JSONEq(r.t, expected, r.Body())
	return r
}
