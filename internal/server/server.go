package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

/*
Server serves the local status API of a running docbase command:
- /api/v1/status reports whether a task is being polled
- /api/v1/result returns (GET) or dismisses (DELETE) the last document base
- /metrics exposes the prometheus metrics
*/
type Server struct {
	addr       string
	handler    http.Handler
	restServer *http.Server
	listener   net.Listener
}

func NewServer(addr string, state TaskState, conn ConnectionReporter) *Server {
	return &Server{
		addr:    addr,
		handler: NewRouter(state, conn),
	}
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.restServer = &http.Server{Handler: s.handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		zap.S().Named("server").Infow("serving local api", "address", l.Addr().String())
		if err := s.restServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Named("server").Errorw("server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.restServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.restServer.Shutdown(shutdownCtx); err != nil {
		zap.S().Named("server").Errorf("failed to graceful shutdown the server: %s", err)
		return err
	}
	return nil
}
