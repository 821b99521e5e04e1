package handler

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/rl1809/cake-orders/internal/port"
)

// DraftService is the health service name reported for the draft store.
const DraftService = "cakeorders.Drafts"

// HealthReporter publishes grpc.health.v1 status from draft store pings.
type HealthReporter struct {
	server *health.Server
	store  port.DraftStore
	every  time.Duration
}

func NewHealthReporter(store port.DraftStore, every time.Duration) *HealthReporter {
	if every <= 0 {
		every = 10 * time.Second
	}
	return &HealthReporter{server: health.NewServer(), store: store, every: every}
}

// Register attaches the health service and reflection to s.
func (h *HealthReporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.server)
	reflection.Register(s)
}

// Check pings the store once and publishes the result.
func (h *HealthReporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		log.Printf("health: draft store ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(DraftService, status)
	return status
}

// Run checks on every tick until ctx is done, then marks everything NOT_SERVING.
func (h *HealthReporter) Run(ctx context.Context, clock port.Clock) {
	h.Check(ctx)
	ticker := clock.NewTicker(h.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			return
		case <-ticker.Chan():
			h.Check(ctx)
		}
	}
}
