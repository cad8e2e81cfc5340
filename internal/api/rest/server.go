// Package rest exposes the crime engine over HTTP. Handlers are thin:
// they decode and validate the request, call one service operation and
// map the result or error onto the wire.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/undercity/undercity-engine/internal/domain/errors"
	"github.com/undercity/undercity-engine/internal/infrastructure/config"
	crimesvc "github.com/undercity/undercity-engine/internal/service/crime"
	"github.com/undercity/undercity-engine/internal/service/jailing"
)

// Server is the HTTP front end.
type Server struct {
	crimes   *crimesvc.Service
	jail     *jailing.Service
	logger   *slog.Logger
	validate *validator.Validate
	attempts *actorLimiter
	mux      *http.ServeMux
}

// NewServer wires the routes.
func NewServer(crimes *crimesvc.Service, jail *jailing.Service, logger *slog.Logger, cfg config.ServerConfig) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		crimes:   crimes,
		jail:     jail,
		logger:   logger,
		validate: validator.New(),
		attempts: newActorLimiter(cfg.AttemptsPerMinute, cfg.AttemptBurst),
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /api/v1/guilds/{guild}/actors/{actor}/attempts", s.handleAttempt)
	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/actors/{actor}/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/actors/{actor}/bail", s.handleQuoteBail)
	s.mux.HandleFunc("POST /api/v1/guilds/{guild}/actors/{actor}/bail", s.handlePayBail)
	s.mux.HandleFunc("POST /api/v1/guilds/{guild}/actors/{actor}/jailbreak", s.handleJailbreak)
	s.mux.HandleFunc("PUT /api/v1/guilds/{guild}/actors/{actor}/notify", s.handleNotify)
	s.mux.HandleFunc("POST /api/v1/guilds/{guild}/actors/{actor}/items/{item}/purchase", s.handleBuyItem)
	s.mux.HandleFunc("POST /api/v1/guilds/{guild}/actors/{actor}/items/get_out_free/use", s.handleUseGetOutFree)
	s.mux.HandleFunc("DELETE /api/v1/guilds/{guild}/actors/{actor}", s.handleWipeActor)

	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/crimes", s.handleListCrimes)
	s.mux.HandleFunc("PATCH /api/v1/guilds/{guild}/crimes/{crime}", s.handlePatchCrime)
	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/settings", s.handleGetSettings)
	s.mux.HandleFunc("PATCH /api/v1/guilds/{guild}/settings", s.handlePatchSettings)
	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/scenarios", s.handleListScenarios)
	s.mux.HandleFunc("POST /api/v1/guilds/{guild}/scenarios", s.handleAddScenario)
	s.mux.HandleFunc("GET /api/v1/guilds/{guild}/items", s.handleListItems)
	s.mux.HandleFunc("DELETE /api/v1/guilds/{guild}", s.handleWipeGuild)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.withRecovery(s.withLogging(s.mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

// envelope is the wire shape of every response.
type envelope struct {
	Data      interface{}    `json:"data,omitempty"`
	Error     *ErrorResponse `json:"error,omitempty"`
	RequestID string         `json:"request_id"`
	Timestamp time.Time      `json:"timestamp"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Data:      data,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	status, wire := mapError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("error", err.Error()))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Error:     wire,
		RequestID: uuid.NewString(),
		Timestamp: time.Now().UTC(),
	})
}

// decode parses and validates a JSON request body.
func (s *Server) decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewValidationError("INVALID_BODY", "malformed request body").WithCause(err)
	}
	if err := s.validate.Struct(v); err != nil {
		return errors.NewValidationError("INVALID_BODY", err.Error())
	}
	return nil
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)))
	})
}

func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error("panic recovered",
					slog.Any("panic", recovered),
					slog.String("stack", string(debug.Stack())))
				http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"internal error"}}`,
					http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
