// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/shopease/config"
	"github.com/shashiranjanraj/shopease/pkg/validate"
)

const defaultMaxBody = 4 << 20 // 4 MB

// ErrEmptyBody is returned when a JSON body was expected but none was sent.
var ErrEmptyBody = errors.New("request body is empty")

// MaxBodyBytes returns the configured request body size limit.
func MaxBodyBytes() int64 {
	n := config.Int("MAX_BODY_BYTES", defaultMaxBody)
	if n <= 0 {
		return defaultMaxBody
	}
	return int64(n)
}

// JSON decodes r.Body as JSON into dest and runs validation.
// The body is capped at MAX_BODY_BYTES to prevent memory exhaustion.
// Returns (errs, nil) when there are validation failures.
// Returns (nil, err) when the body is empty, malformed or too large.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodyBytes())

	if err = json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return nil, ErrEmptyBody
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}

	return nil, nil
}
