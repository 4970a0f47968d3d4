package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/antifraud/msgrisk/pkg/auth"
	"github.com/antifraud/msgrisk/pkg/tlsutil"
)

// ServerOptions configures the gRPC server.
type ServerOptions struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server wraps the gRPC server with message risk handlers.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *slog.Logger
	address    string
}

// NewServer creates the gRPC server. A nil jwtService disables authentication.
func NewServer(handler *MessageRiskHandler, opts ServerOptions, jwtService *auth.JWTService, logger *slog.Logger) (*Server, error) {
	var serverOpts []grpc.ServerOption

	if jwtService != nil {
		serverOpts = append(serverOpts, grpc.UnaryInterceptor(auth.UnaryAuthInterceptor(jwtService,
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		)))
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	if opts.TLSCertFile != "" && opts.TLSKeyFile != "" {
		tlsCfg, err := tlsutil.ServerConfig(opts.TLSCertFile, opts.TLSKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load gRPC TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(tlsutil.GRPCCredentials(tlsCfg)))
		logger.Info("gRPC TLS enabled", "cert", opts.TLSCertFile)
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	RegisterMessageRiskServiceServer(grpcServer, handler)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
		address:    opts.Address,
	}, nil
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Stop marks the service as not serving and drains in-flight calls.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
