// Package server serves a project store over gRPC for kindlingd.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"

	"github.com/kindling-io/kindling/internal/store"
)

// Server is the daemon's gRPC server.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener
	port       int
	store      store.Store
	logger     *slog.Logger
}

// New creates a server for st listening on the given host and port.
// Pass port 0 for dynamic allocation.
func New(host string, port int, st store.Store, logger *slog.Logger) (*Server, error) {
	listener, err := (&net.ListenConfig{}).Listen(context.TODO(), "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	return NewWithListener(listener, st, logger), nil
}

// NewWithListener creates a server on an existing listener.
func NewWithListener(listener net.Listener, st store.Store, logger *slog.Logger) *Server {
	srv := &Server{
		listener: listener,
		store:    st,
		logger:   logger,
	}
	if addr, ok := listener.Addr().(*net.TCPAddr); ok {
		srv.port = addr.Port
	}

	srv.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(srv.logCalls))
	store.RegisterService(srv.grpcServer, st)
	return srv
}

// Port returns the port the server is listening on, or 0 for non-TCP listeners.
func (s *Server) Port() int {
	return s.port
}

// Serve starts serving requests. This blocks until Stop is called.
func (s *Server) Serve() error {
	return s.grpcServer.Serve(s.listener)
}

// Stop gracefully stops the server and closes the store.
func (s *Server) Stop() {
	s.grpcServer.GracefulStop()
	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
}

func (s *Server) logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	attrs := []any{"method", info.FullMethod, "duration", time.Since(start)}
	if err != nil {
		s.logger.Warn("request failed", append(attrs, "error", err)...)
	} else {
		s.logger.Debug("request", attrs...)
	}
	return resp, err
}
