package web

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the gRPC health service name reported for the session.
const ServiceName = "netraptor.Session"

// Health serves the standard gRPC health protocol. It reports SERVING
// while the session is active and NOT_SERVING once it is torn down.
type Health struct {
	logger *slog.Logger
	health *health.Server
	srv    *grpc.Server
}

func NewHealth(logger *slog.Logger) *Health {
	h := &Health{
		logger: logger,
		health: health.NewServer(),
		srv:    grpc.NewServer(),
	}
	healthpb.RegisterHealthServer(h.srv, h.health)
	h.SetServing(true)
	return h
}

// SetServing sets both the overall and the session service status.
func (h *Health) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Check answers a health probe in-process.
func (h *Health) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// Serve blocks until ctx is done.
func (h *Health) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		h.srv.GracefulStop()
	}()
	h.logger.Info("grpc health listening", "addr", ln.Addr().String())
	return h.srv.Serve(ln)
}
