package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Astemirdum/bookhub/gateway/config"
)

type Server struct {
	srv *http.Server
}

// NewServer builds the gateway's http.Server. WriteTimeout stays zero unless
// configured, since the event stream holds its response open.
func NewServer(cfg config.HTTPServer, h http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
			Handler:           h,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
		},
	}
}

func (s *Server) Addr() string {
	return s.srv.Addr
}

// Run blocks until the server stops. A graceful Stop is not an error.
func (s *Server) Run() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
