package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MKhiriev/go-offline-keeper/internal/config"
	"github.com/MKhiriev/go-offline-keeper/internal/logger"
	"github.com/MKhiriev/go-offline-keeper/internal/workers"
)

type server struct {
	httpServer *httpServer
	workers    *workers.Workers

	shutdownOnce sync.Once

	logger *logger.Logger
}

// NewServer returns a runner for the local API and the workers. router may
// be nil when cfg has no HTTP address; workers may be nil as well, but not
// both.
func NewServer(router http.Handler, cfg config.Server, w *workers.Workers, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	s := &server{workers: w, logger: logger}

	if cfg.HTTPAddress != "" && router != nil {
		s.httpServer = newHTTPServer(router, cfg.HTTPAddress, logger)
	}

	if s.httpServer == nil && s.workers == nil {
		return nil, errNothingToRun
	}

	return s, nil
}

func (s *server) Addr() net.Addr {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.addr()
}

func (s *server) Shutdown() {
	s.shutdownOnce.Do(func() {
		// finish HTTP server before the workers
		if s.httpServer != nil {
			s.httpServer.Shutdown()
		}

		if s.workers != nil {
			s.workers.Stop()
		}
	})
}

func (s *server) RunServer(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(
		ctx,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	if s.httpServer != nil {
		if err := s.httpServer.listen(); err != nil {
			return fmt.Errorf("listen on %s: %w", s.httpServer.server.Addr, err)
		}
	}

	if s.workers != nil {
		s.logger.Info().Msg("starting workers")
		s.workers.Start(ctx)
	}

	serveErr := make(chan error, 1)
	if s.httpServer != nil {
		s.logger.Info().Str("address", s.Addr().String()).Msg("launching HTTP server")
		go func() {
			serveErr <- s.httpServer.RunServer()
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if err != nil {
			s.logger.Err(err).Str("func", "*server.RunServer").Msg("HTTP server stopped unexpectedly")
		}
	}

	s.Shutdown()
	s.logger.Info().Msg("server shut down gracefully")

	return err
}
