// Package api declares HTTP contracts and route registration for the
// scoring service.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/bakeboard/internal/adapters/broadcast"
	"github.com/okian/bakeboard/internal/domain/admission"
	"github.com/okian/bakeboard/internal/domain/model"
	"github.com/okian/bakeboard/internal/domain/settings"
	"github.com/okian/bakeboard/internal/domain/transfer"
	"github.com/okian/bakeboard/pkg/logger"
	"github.com/okian/bakeboard/pkg/metrics"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Snapshot assembles the full state bundle.
	Snapshot(ctx context.Context) (model.Snapshot, error)

	// Participant and dessert commands.
	UpsertParticipant(ctx context.Context, name string, active bool) (model.Participant, error)
	SetParticipantActive(ctx context.Context, id int64, active bool) error
	DeleteParticipant(ctx context.Context, id int64) error
	UpsertDessert(ctx context.Context, participantID int64, name, description, category string) error

	// Score commands.
	SubmitScore(ctx context.Context, req admission.Request) (int64, error)
	DeleteScore(ctx context.Context, id int64) error

	// Settings and transfer.
	UpdateSettings(ctx context.Context, updates map[string]any) (settings.Settings, error)
	Export(ctx context.Context) (transfer.Payload, error)
	Import(ctx context.Context, payload transfer.Payload, mode string) (transfer.Report, error)

	// Observer registration for live snapshot pushes.
	Subscribe(ctx context.Context, conn broadcast.Conn) (string, error)
	Unsubscribe(id string)
}

var validate = validator.New()

// Server wires HTTP routes for the scoring API.
type Server struct {
	stateHandler        *StateHandler
	participantsHandler *ParticipantsHandler
	scoresHandler       *ScoresHandler
	settingsHandler     *SettingsHandler
	transferHandler     *TransferHandler
	wsHandler           *WSHandler
	healthHandler       *HealthHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	log := logger.Named("api")
	return &Server{
		stateHandler:        NewStateHandler(deps),
		participantsHandler: NewParticipantsHandler(deps),
		scoresHandler:       NewScoresHandler(deps),
		settingsHandler:     NewSettingsHandler(deps),
		transferHandler:     NewTransferHandler(deps),
		wsHandler:           NewWSHandler(deps, log.Named("ws")),
		healthHandler:       NewHealthHandler(),
	}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/state", MetricsMiddleware(s.stateHandler.HandleState, "state"))
	mux.HandleFunc("/api/participants", MetricsMiddleware(s.participantsHandler.HandleCollection, "participants"))
	mux.HandleFunc("/api/participants/", MetricsMiddleware(s.participantsHandler.HandleItem, "participants"))
	mux.HandleFunc("/api/scores", MetricsMiddleware(s.scoresHandler.HandleCollection, "scores"))
	mux.HandleFunc("/api/scores/", MetricsMiddleware(s.scoresHandler.HandleItem, "scores"))
	mux.HandleFunc("/api/settings", MetricsMiddleware(s.settingsHandler.HandleSettings, "settings"))
	mux.HandleFunc("/api/export", MetricsMiddleware(s.transferHandler.HandleExport, "export"))
	mux.HandleFunc("/api/import", MetricsMiddleware(s.transferHandler.HandleImport, "import"))
	mux.HandleFunc("/ws", s.wsHandler.HandleWS)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", metrics.Handler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
