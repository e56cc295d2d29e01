// Package grpc runs the gRPC side-port. It serves the standard health
// service (grpc.health.v1.Health), reporting SERVING only while the
// configured store answers a ping, plus reflection for grpcurl.
//
//	srv, err := grpc.Start(config.GRPCPort(), database.PingStore)
//	defer grpc.Stop(srv)
package grpc

import (
	"context"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/shashiranjanraj/shopease/pkg/logger"
	"github.com/shashiranjanraj/shopease/pkg/metrics"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// ─── Interceptors ─────────────────────────────────────────────────────────────

func recoveryInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("grpc: panic recovered", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}

// observeInterceptor logs each call and feeds the gRPC metrics.
func observeInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	dur := time.Since(start)
	code := status.Code(err)

	metrics.GRPCRequests.WithLabelValues(info.FullMethod, code.String()).Inc()
	metrics.GRPCDuration.WithLabelValues(info.FullMethod).Observe(dur.Seconds())
	logger.Debug("grpc: request", "method", info.FullMethod, "duration_ms", dur.Milliseconds(), "code", code.String())
	return resp, err
}

// ─── Health ───────────────────────────────────────────────────────────────────

type healthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	check    Checker
	interval time.Duration
}

func (h *healthServer) status(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.check(ctx); err != nil {
		logger.Warn("grpc: health check failing", "error", err)
		return grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	return grpc_health_v1.HealthCheckResponse_SERVING
}

func (h *healthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if req.GetService() != "" {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	return &grpc_health_v1.HealthCheckResponse{Status: h.status(ctx)}, nil
}

// Watch sends the current status, then a new message whenever it changes.
func (h *healthServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	ctx := stream.Context()
	last := grpc_health_v1.HealthCheckResponse_UNKNOWN
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		if cur := h.status(ctx); cur != last {
			if err := stream.Send(&grpc_health_v1.HealthCheckResponse{Status: cur}); err != nil {
				return err
			}
			last = cur
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// ─── Server ───────────────────────────────────────────────────────────────────

// NewServer builds the server without listening.
func NewServer(check Checker) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(recoveryInterceptor, observeInterceptor),
		grpc.MaxRecvMsgSize(4*1024*1024),
		grpc.MaxSendMsgSize(4*1024*1024),
	)
	grpc_health_v1.RegisterHealthServer(srv, &healthServer{check: check, interval: 5 * time.Second})
	reflection.Register(srv)
	return srv
}

// Start listens on port and serves in the background.
func Start(port string, check Checker) (*grpc.Server, error) {
	addr := ":" + port
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc: listen on %s: %w", addr, err)
	}

	srv := NewServer(check)
	logger.Info("grpc: listening", "addr", addr)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc: serve error", "error", err)
		}
	}()
	return srv, nil
}

// Stop drains in-flight RPCs, giving up after timeout.
func Stop(srv *grpc.Server, timeout time.Duration) {
	if srv == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		srv.Stop()
		<-done
	}
}
