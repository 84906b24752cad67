package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

type switchReadiness struct{ down atomic.Bool }

func (r *switchReadiness) Ready(context.Context) error {
	if r.down.Load() {
		return errors.New("cache unreachable")
	}
	return nil
}

func TestHealthFollowsReadiness(t *testing.T) {
	t.Parallel()

	ready := &switchReadiness{}
	tr := New(0, ready)
	tr.interval = 10 * time.Millisecond

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Serve: %v", err)
		}
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	waitStatus := func(want healthpb.HealthCheckResponse_ServingStatus) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for {
			resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
			if err == nil && resp.GetStatus() == want {
				return
			}
			if time.Now().After(deadline) {
				t.Fatalf("status never became %v (last %v, err %v)", want, resp.GetStatus(), err)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitStatus(healthpb.HealthCheckResponse_SERVING)
	ready.down.Store(true)
	waitStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	ready.down.Store(false)
	waitStatus(healthpb.HealthCheckResponse_SERVING)
}
