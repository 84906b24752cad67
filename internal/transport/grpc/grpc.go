// Package grpc implements parley's gRPC listener.
//
// The listener serves the standard grpc.health.v1 service and server
// reflection so orchestrators and grpcurl can probe the process. The serving
// status follows a readiness probe that is re-evaluated on an interval.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the server-wide "".
const ServiceName = "parley.Translator"

// Readiness reports nil when the process can serve requests.
type Readiness interface {
	Ready(ctx context.Context) error
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port      int
	readiness Readiness
	interval  time.Duration
	server    *grpc.Server
	health    *health.Server
}

// New creates a new gRPC transport on the given port.
func New(port int, readiness Readiness) *Transport {
	return &Transport{port: port, readiness: readiness, interval: 10 * time.Second}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server. It blocks until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener) error {
	t.server = grpc.NewServer()
	t.health = health.NewServer()
	healthpb.RegisterHealthServer(t.server, t.health)
	reflection.Register(t.server)

	t.refresh(ctx)

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("grpc transport shutting down")
				t.health.Shutdown()
				t.server.GracefulStop()
				return
			case <-ticker.C:
				t.refresh(ctx)
			}
		}
	}()

	if err := t.server.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

func (t *Transport) refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := t.readiness.Ready(ctx); err != nil {
		slog.Debug("grpc health not serving", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	t.health.SetServingStatus("", status)
	t.health.SetServingStatus(ServiceName, status)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}
