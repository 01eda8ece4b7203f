// Package server exposes the duel engine over websocket: an HTTP listener
// that upgrades each connection and runs a session for it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tlau/rpsduel/internal/arena"
	"github.com/tlau/rpsduel/internal/config"
)

// Server accepts websocket connections and hands each one to the arena.
type Server struct {
	cfg      *config.Config
	arena    *arena.Arena
	upgrader websocket.Upgrader
	logger   *log.Logger
}

// New builds a server.
func New(cfg *config.Config, a *arena.Arena, logger *log.Logger) *Server {
	return &Server{
		cfg:   cfg,
		arena: a,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are standalone programs, not browsers; there is
			// no origin to check.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.WithPrefix("server"),
	}
}

// Handler returns the HTTP handler: websocket upgrades at the root and a
// health probe. Sessions run under ctx, which outlives any one request.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebsocket(ctx, w, r)
	})
	return mux
}

// Run serves until ctx is cancelled, with TLS when configured.
func (s *Server) Run(ctx context.Context) error {
	tlsConf, err := s.cfg.TLSConfig()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:      s.cfg.Addr(),
		Handler:   s.Handler(ctx),
		TLSConfig: tlsConf,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr, "tls", tlsConf != nil)
		if tlsConf != nil {
			errCh <- srv.ListenAndServeTLS("", "")
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		_ = srv.Close()
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleWebsocket upgrades the connection and runs the session inline; the
// handler returns when the session is over.
func (s *Server) handleWebsocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.logger.Info("client connected", "remote", r.RemoteAddr)

	conn := NewConn(ws, s.logger.With("remote", r.RemoteAddr))
	s.arena.NewSession(conn).Run(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}
