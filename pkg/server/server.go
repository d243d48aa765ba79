// Package server exposes the knowledge base and the ingestion pipeline
// over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AlexOliinyk1/careerintel/pkg/ingest"
	"github.com/AlexOliinyk1/careerintel/pkg/knowledge"
	"github.com/AlexOliinyk1/careerintel/pkg/question"
)

// Options configures a Server.
type Options struct {
	// Port to listen on. Defaults to 8080.
	Port   int
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.Port == 0 {
		o.Port = 8080
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Server provides the HTTP API.
type Server struct {
	knowledge *knowledge.Service
	pipeline  *ingest.Pipeline
	port      int
	logger    *slog.Logger
}

// New creates a new HTTP server.
func New(svc *knowledge.Service, pipeline *ingest.Pipeline, opts Options) *Server {
	opts.defaults()
	return &Server{
		knowledge: svc,
		pipeline:  pipeline,
		port:      opts.Port,
		logger:    opts.Logger,
	}
}

// Handler returns the routed handler, separate from ListenAndServe so
// tests can mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/topics", s.handleTopics)
	mux.HandleFunc("/api/v1/trending", s.handleTrending)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/ingest", s.handleIngest)
	return mux
}

// ListenAndServe starts the HTTP server and blocks.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("http server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	topics := s.knowledge.KnowledgeBase()
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  topics,
		"count": len(topics),
	})
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	windowDays := 30
	if days := r.URL.Query().Get("days"); days != "" {
		if d, err := strconv.Atoi(days); err == nil && d > 0 {
			windowDays = d
		}
	}

	trending := s.knowledge.TrendingTopics(windowDays)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       trending,
		"count":      len(trending),
		"windowDays": windowDays,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	writeJSON(w, http.StatusOK, s.knowledge.Stats())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var raws []question.Raw
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("parse request: %v", err)})
		return
	}

	result, err := s.pipeline.Ingest(r.Context(), raws)
	if err != nil {
		s.logger.Error("ingest request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
