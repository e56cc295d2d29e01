// Package session provides cookie-identified sessions backed by the cache.
// The cookie carries only the encrypted session id; values live in the cache
// under "session:<id>".
//
// Usage (middleware):
//
//	r.Use(session.Middleware(session.DefaultOptions()))
//
// Usage (handler):
//
//	sess := session.FromCtx(r)
//	sess.Set("last_seen", time.Now().Unix())
//	sess.Save(w)
//
// The guest cart keys itself on sess.ID(); calling Save for a fresh session
// issues the cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/cache"
	"github.com/shashiranjanraj/shopease/pkg/crypt"
)

// Options configures session behaviour.
type Options struct {
	CookieName string
	TTL        time.Duration
	HTTPOnly   bool
	Secure     bool
	SameSite   http.SameSite
	Path       string
}

// DefaultOptions ties the session lifetime to the cart lifetime.
func DefaultOptions() Options {
	return Options{
		CookieName: "shopease_session",
		TTL:        config.CartTTL(),
		HTTPOnly:   true,
		Secure:     config.IsProduction(),
		SameSite:   http.SameSiteLaxMode,
		Path:       "/",
	}
}

type ctxKey struct{}

// Session is an in-request session handle.
type Session struct {
	mu      sync.Mutex
	id      string
	oldID   string
	data    map[string]interface{}
	opts    Options
	isNew   bool
	changed bool
}

func newID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func key(id string) string { return "session:" + id }

// Middleware loads the session named by the cookie, or starts a fresh one.
// A fresh session sets no cookie until Save is called.
func Middleware(opts Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := start(r, opts)
			if err != nil {
				http.Error(w, "session error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
		})
	}
}

func start(r *http.Request, opts Options) (*Session, error) {
	if c, err := r.Cookie(opts.CookieName); err == nil && c.Value != "" {
		if id, err := crypt.Decrypt(c.Value); err == nil {
			data := map[string]interface{}{}
			cache.Get(r.Context(), key(id), &data)
			return &Session{id: id, data: data, opts: opts}, nil
		}
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	return &Session{id: id, data: map[string]interface{}{}, opts: opts, isNew: true}, nil
}

// FromCtx returns the request's session, or nil outside the middleware.
func FromCtx(r *http.Request) *Session {
	s, _ := r.Context().Value(ctxKey{}).(*Session)
	return s
}

// ID is the stable identifier of this session.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// IsNew reports whether the request arrived without a valid session cookie.
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNew
}

func (s *Session) Get(k string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[k]
	return v, ok
}

func (s *Session) GetString(k string) string {
	v, _ := s.Get(k)
	str, _ := v.(string)
	return str
}

func (s *Session) Set(k string, v interface{}) {
	s.mu.Lock()
	s.data[k] = v
	s.changed = true
	s.mu.Unlock()
}

func (s *Session) Delete(k string) {
	s.mu.Lock()
	delete(s.data, k)
	s.changed = true
	s.mu.Unlock()
}

// Regenerate moves the session to a new id, used after login. The old cache
// entry is removed on the next Save.
func (s *Session) Regenerate() error {
	id, err := newID()
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.oldID == "" {
		s.oldID = s.id
	}
	s.id = id
	s.isNew = true
	s.changed = true
	s.mu.Unlock()
	return nil
}

// Save persists changed data and (re)issues the cookie when the session is
// new. Unchanged existing sessions are a no-op.
func (s *Session) Save(ctx context.Context, w http.ResponseWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.oldID != "" {
		_ = cache.Del(ctx, key(s.oldID))
		s.oldID = ""
	}
	if s.changed {
		if err := cache.Set(ctx, key(s.id), s.data, s.opts.TTL); err != nil {
			return fmt.Errorf("session: save: %w", err)
		}
		s.changed = false
	}
	if !s.isNew {
		return nil
	}

	sealed, err := crypt.Encrypt(s.id)
	if err != nil {
		return fmt.Errorf("session: seal id: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    sealed,
		Path:     s.opts.Path,
		MaxAge:   int(s.opts.TTL.Seconds()),
		HttpOnly: s.opts.HTTPOnly,
		Secure:   s.opts.Secure,
		SameSite: s.opts.SameSite,
	})
	s.isNew = false
	return nil
}

// Destroy deletes the session data and expires the cookie.
func (s *Session) Destroy(ctx context.Context, w http.ResponseWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = map[string]interface{}{}
	s.changed = false
	http.SetCookie(w, &http.Cookie{Name: s.opts.CookieName, Value: "", Path: s.opts.Path, MaxAge: -1})
	return cache.Del(ctx, key(s.id))
}
