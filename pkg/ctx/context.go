// Package ctx provides a request context for handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context with helper methods:
//
//	func (ctl *ProductController) Show(c *ctx.Context) {
//	    p, err := ctl.products.Get(c.Context(), c.Param("id"))
//	    ...
//	    c.Success(p)
//	}
//
//	r.Get("/products/{id}", "products.show", ctx.Wrap(ctl.Show))
package ctx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/shopease/pkg/auth"
	"github.com/shashiranjanraj/shopease/pkg/bind"
	"github.com/shashiranjanraj/shopease/pkg/middleware"
	"github.com/shashiranjanraj/shopease/pkg/orm"
	"github.com/shashiranjanraj/shopease/pkg/response"
	"github.com/shashiranjanraj/shopease/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// ─── Context ──────────────────────────────────────────────────────────────────

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int // written status code (0 = not written yet)
}

// pool recycles Context objects to reduce GC pressure.
var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	for k := range c.store {
		delete(c.store, k)
	}
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter (e.g. "/orders/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a trimmed query-string value, "" if not present.
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// QueryError reports a malformed query parameter.
type QueryError struct {
	Key   string
	Value string
	Kind  string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query parameter %s must be %s, got %q", e.Key, e.Kind, e.Value)
}

// QueryInt parses an integer parameter; absent parameters yield def.
func (c *Context) QueryInt(key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &QueryError{Key: key, Value: raw, Kind: "an integer"}
	}
	return n, nil
}

// QueryFloat parses an optional number parameter; nil when absent.
func (c *Context) QueryFloat(key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &QueryError{Key: key, Value: raw, Kind: "a number"}
	}
	return &f, nil
}

// QueryBool parses a boolean parameter; absent parameters are false.
func (c *Context) QueryBool(key string) (bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &QueryError{Key: key, Value: raw, Kind: "true or false"}
	}
	return b, nil
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the real client IP, respecting X-Forwarded-For.
func (c *Context) ClientIP() string {
	return middleware.ClientIP(c.R)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// ─── Identity ─────────────────────────────────────────────────────────────────

// UserID is the authenticated caller's id, "" for guests.
func (c *Context) UserID() string {
	id, _ := middleware.UserIDFromCtx(c.R)
	return id
}

// IsAdmin reports whether the caller authenticated as an administrator.
func (c *Context) IsAdmin() bool {
	role, _ := middleware.RoleFromCtx(c.R)
	return role == auth.RoleAdmin
}

// ─── Per-request store ────────────────────────────────────────────────────────

// Set stores a value in the per-request key-value store.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

// Get retrieves a value from the per-request store.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// GetString returns a string value from the store, or "" if absent/wrong type.
func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// On validation failure it sends a 422 and returns false; on a decode error
// it sends a 400 and returns false.
//
//	var input PlaceOrderInput
//	if !c.BindJSON(&input) {
//	    return // response already sent
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// BindOptionalJSON is BindJSON for endpoints whose body may be omitted.
func (c *Context) BindOptionalJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if errors.Is(err, bind.ErrEmptyBody) {
		errs, err = validate.Struct(dest), nil
	}
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ─── Response helpers ─────────────────────────────────────────────────────────

// SetHeader sets a response header.
func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// JSON writes an envelope with the given status code.
func (c *Context) JSON(code int, body response.Envelope) {
	c.status = code
	response.JSON(c.W, code, body)
}

// Success sends a 200 envelope with data.
func (c *Context) Success(data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Data: data})
}

// Created sends a 201 envelope with a message and data.
func (c *Context) Created(message string, data any) {
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Message: message, Data: data})
}

// Message sends a 200 envelope carrying both a message and data.
func (c *Context) Message(message string, data any) {
	c.JSON(http.StatusOK, response.Envelope{Status: http.StatusOK, Message: message, Data: data})
}

// Paginated sends {items, pagination}.
func (c *Context) Paginated(items any, p orm.Pagination) {
	c.Success(response.Page{Items: items, Pagination: p})
}

// Error sends an error envelope with the given status and message.
func (c *Context) Error(code int, message string) {
	c.JSON(code, response.Envelope{Status: code, Message: message})
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, response.Envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Unauthorized sends a 401.
func (c *Context) Unauthorized(message ...string) {
	c.Error(http.StatusUnauthorized, first(message, "Unauthorized"))
}

// Forbidden sends a 403.
func (c *Context) Forbidden(message ...string) {
	c.Error(http.StatusForbidden, first(message, "Forbidden"))
}

// NotFound sends a 404.
func (c *Context) NotFound(message ...string) {
	c.Error(http.StatusNotFound, first(message, "Not found"))
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }

func first(msgs []string, def string) string {
	if len(msgs) > 0 && msgs[0] != "" {
		return msgs[0]
	}
	return def
}
