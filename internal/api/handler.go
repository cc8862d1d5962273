// Package api implements the Toastmaster round REST API.
// Rounds live in a session.Service; every endpoint acts on one round.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/toastmaster/toastmaster/internal/session"
	"github.com/toastmaster/toastmaster/pkg/game"
	"github.com/toastmaster/toastmaster/pkg/stage"
)

// Handler is the top-level API handler for the round service.
type Handler struct {
	rounds *session.Service
	apiKey string
	logger *log.Logger
}

// NewHandler creates a new API handler. A non-empty apiKey is required in
// the X-API-Key header of every /api request.
func NewHandler(rounds *session.Service, apiKey string, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(os.Stderr, "[api] ", log.LstdFlags)
	}
	return &Handler{rounds: rounds, apiKey: apiKey, logger: logger}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1/rounds", func(r chi.Router) {
		r.Use(APIKeyAuth(h.apiKey))

		r.Post("/", h.handleCreate)
		r.Route("/{roundID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Post("/begin", h.handleBegin)
			r.Post("/cut", h.handleCut)
			r.Post("/toast/start", h.handleToastStart)
			r.Post("/toast/stop", h.handleToastStop)
			r.Post("/butter", h.handleButter)
			r.Post("/toppings/suggest", h.handleSuggest)
			r.Post("/topping", h.handleTopping)
			r.Get("/verdict", h.handleVerdict)
			r.Post("/restart", h.handleRestart)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrStageMismatch),
		errors.Is(err, game.ErrNoVerdict),
		errors.Is(err, stage.ErrAlreadyToasting),
		errors.Is(err, stage.ErrNotToasting),
		errors.Is(err, stage.ErrToastFinished),
		errors.Is(err, stage.ErrToasterClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Printf("request_id=%s %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
