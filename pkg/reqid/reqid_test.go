package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopease/pkg/reqid"
)

func serve(header string) (string, string) {
	var seen string
	h := reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(reqid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec.Header().Get(reqid.Header)
}

func TestMiddleware_GeneratesID(t *testing.T) {
	seen, echoed := serve("")
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, echoed)
}

func TestMiddleware_ReusesUpstreamID(t *testing.T) {
	seen, echoed := serve("gateway-42")
	assert.Equal(t, "gateway-42", seen)
	assert.Equal(t, "gateway-42", echoed)
}

func TestMiddleware_RejectsOversizedID(t *testing.T) {
	seen, _ := serve(strings.Repeat("x", 500))
	assert.Len(t, seen, 32)
}
