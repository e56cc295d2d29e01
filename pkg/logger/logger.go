// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: it returns the logger that the
// request middleware stored in the context, already tagged with request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order", order.OrderNumber)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order=ORD-9F2C11AB
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/shopease/config"
)

var (
	L    *slog.Logger
	base slog.Handler
)

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	if config.IsProduction() {
		opts.Level = slog.LevelInfo
		base = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	} else {
		base = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	L = slog.New(base).With("app", config.AppName())
	slog.SetDefault(L)
}

// EnableMongo tees every record into a MongoDB collection in addition to
// stdout. The returned func flushes pending records and disconnects.
func EnableMongo(uri, db, collection string) (func(), error) {
	mh, err := NewMongoHandler(uri, db, collection)
	if err != nil {
		return func() {}, fmt.Errorf("logger: %w", err)
	}

	L = slog.New(NewMultiHandler(base, mh)).With("app", config.AppName())
	slog.SetDefault(L)
	return mh.Close, nil
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the per-request logger stored by the Logger middleware, or
// the base logger when ctx carries none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }

// LevelFor maps an HTTP status to the level its access-log line uses.
func LevelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
