package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fe/internal/logging"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the name probes may pass in HealthCheckRequest.Service.
// The empty name means the server as a whole and is answered the same way.
const ServiceName = "fe.Messages"

const pingTimeout = 2 * time.Second

// HealthServer answers grpc.health.v1.Health/Check by pinging the database.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	db     Pinger
	logger logging.Logger
}

func NewHealthServer(db Pinger, l logging.Logger) *HealthServer {
	return &HealthServer{db: db, logger: l}
}

func (h *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.db.PingContext(pingCtx); err != nil {
		h.logger.Warn(ctx, "database ping failed", "error", err)
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
