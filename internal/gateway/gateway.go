// Package gateway is a small CORS-forwarding relay. Browser clients that
// cannot reach the analysis backend directly call /proxy?url=... and the
// relay repeats the request server-side, echoing the upstream answer back
// with permissive CORS headers.
package gateway

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type errorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Handler forwards proxied requests to their target.
type Handler struct {
	client *http.Client
	logger *zap.Logger
}

// NewHandler builds a Handler. A nil client falls back to a default
// http.Client; a nil logger falls back to Nop.
func NewHandler(client *http.Client, logger *zap.Logger) *Handler {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{client: client, logger: logger}
}

// Router wires the relay routes with request IDs, panic recovery, and the
// permissive CORS policy the browser client needs.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.HandleFunc("/proxy", h.Forward)

	return r
}

// Forward relays the incoming request to the url query target and echoes
// the upstream status, content type, and body.
func (h *Handler) Forward(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		// Preflight is answered by the CORS middleware; a bare OPTIONS
		// without preflight headers lands here.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		h.writeError(w, http.StatusBadRequest, errorEnvelope{Error: "Missing URL parameter"})
		return
	}

	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, errorEnvelope{Error: "Proxy failed", Details: err.Error()})
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("upstream request failed",
			zap.String("target", target),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, errorEnvelope{Error: "Proxy failed", Details: err.Error()})
		return
	}
	defer resp.Body.Close()

	upstreamType := resp.Header.Get("Content-Type")
	if upstreamType == "" {
		upstreamType = "text/plain"
	}
	w.Header().Set("Content-Type", upstreamType)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Warn("relaying upstream body failed", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, env errorEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Warn("writing error envelope failed", zap.Error(err))
	}
}
