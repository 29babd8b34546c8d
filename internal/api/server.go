package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxPortAttempts is how many consecutive ports Start tries before giving up.
const MaxPortAttempts = 10

type Server struct {
	httpServer *http.Server
	logger     *logrus.Logger
	port       int
	listener   net.Listener
}

func NewServer(port int, handler http.Handler, logger *logrus.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
		port:   port,
	}
}

// Listen binds the preferred port, moving on to the next one while the port is in use.
func (s *Server) Listen() (int, error) {
	ln, port, err := listenWithFallback(s.port, MaxPortAttempts, s.logger)
	if err != nil {
		return 0, err
	}
	s.listener = ln
	s.httpServer.Addr = ln.Addr().String()
	return port, nil
}

// Start serves until Stop is called. Listen is invoked first if it has not been.
func (s *Server) Start() error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}
	s.logger.WithField("address", s.httpServer.Addr).Info("Starting REST API server")
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server")
	return s.httpServer.Shutdown(ctx)
}

func listenWithFallback(port, attempts int, logger *logrus.Logger) (net.Listener, int, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		candidate := port + i
		ln, err := net.Listen("tcp", ":"+strconv.Itoa(candidate))
		if err == nil {
			return ln, candidate, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, 0, fmt.Errorf("failed to listen on port %d: %w", candidate, err)
		}
		logger.WithField("port", candidate).Warnf("Port in use; retrying on %d", candidate+1)
		lastErr = err
	}
	return nil, 0, fmt.Errorf("no free port in %d-%d: %w", port, port+attempts-1, lastErr)
}
