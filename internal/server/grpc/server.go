// Package grpc serves the standard gRPC health protocol for Fe so
// orchestrators can probe the service and its database.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/fe/internal/logging"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Pinger reports whether the backing store is reachable. *sql.DB fits.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type GRPCServer struct {
	address string
	logger  logging.Logger
	health  *HealthServer
}

func NewGRPCServer(a string, l logging.Logger, db Pinger) *GRPCServer {
	logger := l.With("module", "grpc_server")
	return &GRPCServer{
		address: a,
		logger:  logger,
		health:  NewHealthServer(db, logger),
	}
}

// register attaches every service this server exposes.
func (s *GRPCServer) register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, s.health)
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	s.register(srv)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
