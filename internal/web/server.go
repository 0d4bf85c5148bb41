// Package web serves the widget data contract over HTTP: batch payloads,
// period-scoped histories and statistics, rendered graph PNGs, tooltip
// hit-tests, detail sessions and a websocket payload push.
package web

import (
	"context"
	"log"
	"net/http"

	"pingboard/internal/config"
	"pingboard/internal/models"
	"pingboard/internal/widget"
)

// Server handles web requests
type Server struct {
	cfg      config.Config
	source   models.DataSource
	manager  *widget.Manager
	hub      *widget.Hub
	sessions *widget.Registry
	srv      *http.Server
}

// New creates a new web server
func New(cfg config.Config, source models.DataSource, manager *widget.Manager, hub *widget.Hub, sessions *widget.Registry) *Server {
	return &Server{
		cfg:      cfg,
		source:   source,
		manager:  manager,
		hub:      hub,
		sessions: sessions,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/widgets", s.handleWidgets)
	mux.HandleFunc("/api/widget-data", s.handleWidgetData)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/statistics", s.handleStatistics)
	mux.HandleFunc("/api/graph/compact", s.handleCompactGraph)
	mux.HandleFunc("/api/graph/detailed", s.handleDetailedGraph)
	mux.HandleFunc("/api/graph/tooltip", s.handleGraphTooltip)
	mux.HandleFunc("/api/detail/open", s.handleDetailOpen)
	mux.HandleFunc("/api/detail/data", s.handleDetailData)
	mux.HandleFunc("/api/detail/period", s.handleDetailPeriod)
	mux.HandleFunc("/api/detail/graph", s.handleDetailGraph)
	mux.HandleFunc("/api/detail/tooltip", s.handleDetailTooltip)
	mux.HandleFunc("/api/detail/close", s.handleDetailClose)
	mux.HandleFunc("/ws/widget", s.handleWidgetWS)
	mux.HandleFunc("/health", s.handleHealth)

	return mux
}

// Start runs the server until Shutdown is called
func (s *Server) Start() error {
	s.srv = &http.Server{Addr: s.cfg.Listen, Handler: s.routes()}

	log.Printf("Web server listening on %s", s.cfg.Listen)
	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
