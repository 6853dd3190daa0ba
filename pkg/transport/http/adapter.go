// Package http serves the dialog engine over HTTP for chat-surface
// connectors. One endpoint accepts operator events; health and metrics
// endpoints support operations.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/observability"
	"github.com/sellerdesk/sellerdesk/pkg/transport"
)

// Adapter translates HTTP requests into dialog events and replies back
// to JSON. Middleware is applied at the transport level, around the
// event handler rather than around HTTP.
type Adapter struct {
	handler transport.EventHandler
	router  chi.Router
	config  Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
	Auth        *Authenticator // nil disables authentication
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 1 << 20, // 1 MB
	}
}

// NewAdapter creates an HTTP adapter around an event handler.
// Middleware is applied to the handler in the given order.
func NewAdapter(h transport.EventHandler, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		h = transport.Chain(middlewares...)(h)
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	a := &Adapter{handler: h, config: cfg}

	r := chi.NewRouter()
	r.Use(observability.MetricsMiddleware)

	r.Get("/healthz", a.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth.Middleware)
		}
		r.Post("/v1/events", a.handleEvent)
	})

	a.router = r
	return a
}

// Handler returns the http.Handler for this adapter. Use this to
// integrate with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.router
}

func (a *Adapter) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (a *Adapter) handleEvent(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var ev transport.Event
	if err := json.NewDecoder(body).Decode(&ev); err != nil {
		writeError(w, api.NewValidationError("body", "request body must be a JSON event"))
		return
	}
	if ev.Kind != transport.KindMessage && ev.Kind != transport.KindCallback {
		writeError(w, api.NewValidationError("kind", "must be message or callback"))
		return
	}

	reply, err := a.handler.HandleEvent(r.Context(), &ev)
	if err != nil {
		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			apiErr = api.NewPersistenceError(err.Error())
		}
		writeError(w, apiErr)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, apiErr *api.Error) {
	writeJSON(w, transport.HTTPStatusFromError(apiErr), errorBody{
		Error: errorDetail{
			Type:    string(apiErr.Type),
			Field:   apiErr.Field,
			Message: apiErr.Message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
