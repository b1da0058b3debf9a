// Package web exposes a read-only status surface for a running session:
// JSON snapshots, Prometheus metrics, a websocket progress stream and a
// gRPC health endpoint.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lcalzada-xor/netraptor/internal/core/domain"
)

// SessionView is the read side of a session.
type SessionView interface {
	Report(scanTimeout int) domain.Report
	WPS() []domain.WPSRecord
	Handshakes() []domain.CaptureArtifact
}

// History lists stored sessions.
type History interface {
	Sessions(ctx context.Context) ([]domain.ScanInfo, error)
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr        string
	ScanTimeout int

	// History backs /api/history; nil answers 404.
	History History

	view   SessionView
	hub    *Hub
	logger *slog.Logger
	srv    *http.Server
}

func NewServer(addr string, view SessionView, hub *Hub, logger *slog.Logger) *Server {
	return &Server{Addr: addr, view: view, hub: hub, logger: logger}
}

// Handler builds the instrumented router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.HandleWebSocket)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(jsonContent)
	api.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	api.HandleFunc("/networks", s.handleNetworks).Methods(http.MethodGet)
	api.HandleFunc("/networks/{bssid}", s.handleNetwork).Methods(http.MethodGet)
	api.HandleFunc("/wps", s.handleWPS).Methods(http.MethodGet)
	api.HandleFunc("/handshakes", s.handleHandshakes).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	return otelhttp.NewHandler(r, "netraptor-status")
}

// Run listens on Addr and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve starts the hub and serves on ln, shutting down gracefully when ctx
// is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("status server shutdown error", "error", err)
		}
	}()

	s.logger.Info("status server listening", "addr", ln.Addr().String())
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func jsonContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("status response write failed", "error", err)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	rep := s.view.Report(s.ScanTimeout)
	s.writeJSON(w, map[string]any{
		"scan_info": rep.ScanInfo,
		"summary":   rep.Summary,
		"errors":    rep.Errors,
	})
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.view.Report(s.ScanTimeout).Networks)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	bssid, err := domain.NormalizeBSSID(mux.Vars(r)["bssid"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.writeJSON(w, map[string]string{"error": "invalid bssid"})
		return
	}
	for _, n := range s.view.Report(s.ScanTimeout).Networks {
		if n.BSSID == bssid {
			s.writeJSON(w, n)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	s.writeJSON(w, map[string]string{"error": "not found"})
}

func (s *Server) handleWPS(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.view.WPS())
}

func (s *Server) handleHandshakes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.view.Handshakes())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		w.WriteHeader(http.StatusNotFound)
		s.writeJSON(w, map[string]string{"error": "session history disabled"})
		return
	}
	sessions, err := s.History.Sessions(r.Context())
	if err != nil {
		s.logger.Warn("history lookup failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		s.writeJSON(w, map[string]string{"error": "history unavailable"})
		return
	}
	s.writeJSON(w, sessions)
}
