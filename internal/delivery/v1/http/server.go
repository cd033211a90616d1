package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
)

const readHeaderTimeout = 2 * time.Second

// Server — HTTP-поверхность инструментов. Run и Serve возвращают nil после Stop.
type Server struct {
	httpServer *http.Server
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: min(readHeaderTimeout, cfg.ReadTimeout),
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
	}
}

func (s *Server) Run() error {
	return ignoreClosed(s.httpServer.ListenAndServe())
}

// Serve обслуживает уже открытый listener.
func (s *Server) Serve(lis net.Listener) error {
	return ignoreClosed(s.httpServer.Serve(lis))
}

// Stop дожидается завершения активных запросов в пределах ctx.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
