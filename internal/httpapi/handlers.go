// Package httpapi hosts the one external interface spec.md §6 describes: a
// POST route accepting a cleaned ledger and returning the rendered
// analysis payload. Authentication and CORS are treated as an external
// collaborator's concern per spec.md §1 and are not handled here.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/aegisshield/fraud-graph-engine/internal/engine"
	"github.com/aegisshield/fraud-graph-engine/internal/events"
	"github.com/aegisshield/fraud-graph-engine/internal/ingest"
)

// CompletionPublisher is notified once per finished analysis run. It is
// satisfied by *events.Producer; kept as an interface here so the HTTP
// layer is still testable without a live Kafka connection.
type CompletionPublisher interface {
	Publish(event events.AnalysisCompleted) error
}

// Server wires the FraudEngine to an HTTP router.
type Server struct {
	engine    *engine.FraudEngine
	logger    *slog.Logger
	router    *mux.Router
	publisher CompletionPublisher
}

// NewServer builds a Server and registers its routes. publisher may be nil,
// in which case no completion event is published.
func NewServer(fe *engine.FraudEngine, logger *slog.Logger, publisher CompletionPublisher) *Server {
	s := &Server{engine: fe, logger: logger, router: mux.NewRouter(), publisher: publisher}
	s.routes()
	return s
}

// Router returns the underlying http.Handler for cmd/server to serve.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/analyze", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleAnalyze accepts a CSV-encoded cleaned ledger and returns the JSON
// analysis payload (spec.md §4.9/§6).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ledger, err := ingest.ReadLedger(r.Body)
	if err != nil {
		s.logger.Warn("failed to parse request ledger", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.engine.RunAnalysis(ledger)
	if err != nil {
		if engine.IsPrecondition(err) {
			s.logger.Warn("analysis rejected on precondition", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("analysis failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode analysis result", "error", err)
	}

	if s.publisher != nil {
		event := events.AnalysisCompleted{
			RunID:                 uuid.NewString(),
			CompletedAt:           time.Now(),
			FraudRingsEmitted:     len(result.FraudRings),
			FlaggedEntities:       result.Analytics.FlaggedEntities,
			FreezeRecommendations: result.Analytics.FreezeRecommendations,
		}
		if err := s.publisher.Publish(event); err != nil {
			s.logger.Warn("failed to publish analysis completed event", "error", err)
		}
	}
}
