package server

import (
	"encoding/json"
	"net/http"

	"github.com/zeusync/behave/internal/core/observability/log"
)

// Handler returns the HTTP routes of the server:
//
//	/ws            websocket frame stream
//	/healthz       liveness and client stats
//	/frames/latest the last broadcast frame
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", tokenAuth(s.config.Token, http.HandlerFunc(s.handleWebSocket)))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/frames/latest", tokenAuth(s.config.Token, http.HandlerFunc(s.handleLatest)))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.GetStats()); err != nil {
		s.logger.Warn("Failed to write health response", log.Error(err))
	}
}

func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	latest := s.latest.Load()
	if latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(*latest)
}
