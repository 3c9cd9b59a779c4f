package health

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/caretapps-developer/gb2-terminal-monorepo/internal/monitor"
)

// GRPCServer mirrors the engine status onto the standard gRPC health-v1
// service so transport-bridge peers can probe it without parsing JSON.
type GRPCServer struct {
	mon    *monitor.Monitor
	server *grpc.Server
	hs     *grpchealth.Server
	port   int
}

// NewGRPCServer creates the gRPC health surface.
func NewGRPCServer(mon *monitor.Monitor, port int) *GRPCServer {
	server := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	return &GRPCServer{mon: mon, server: server, hs: hs, port: port}
}

// Start serves gRPC and keeps the reported status fresh until the context is
// done.
func (s *GRPCServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port %d: %w", s.port, err)
	}

	go s.refreshLoop(ctx)

	if err := s.server.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve failed: %w", err)
	}
	return nil
}

// Stop drains and stops the gRPC server.
func (s *GRPCServer) Stop() {
	s.hs.Shutdown()
	s.server.GracefulStop()
}

func (s *GRPCServer) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := healthpb.HealthCheckResponse_SERVING
			if StatusOf(s.mon.Status()) == StatusCritical {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			s.hs.SetServingStatus("", status)
			s.hs.SetServingStatus("terminal.health", status)
		}
	}
}
