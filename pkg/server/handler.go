package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/istock-app/istock-rag/pkg/model"
	"github.com/istock-app/istock-rag/pkg/utils/logging"
)

const (
	// Version is reported by the health check.
	Version = "1.0.0"

	// askTimeout bounds one full retrieve-and-synthesize round trip.
	askTimeout = 60 * time.Second

	// maxBodyBytes caps the request body read. Prompts are at most 2000
	// characters, so anything near this limit is garbage.
	maxBodyBytes = 1 << 20
)

type healthBody struct {
	Message   string   `json:"message"`
	Status    string   `json:"status"`
	Endpoints []string `json:"endpoints"`
	Version   string   `json:"version"`
}

type methodNotAllowedBody struct {
	Error          string `json:"error"`
	AllowedMethods string `json:"allowedMethods"`
}

// handleRoot gates the single route by method. The CORS decision runs first
// on every request, including errors, so the browser can always read the
// response body.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if !applyCORS(w, r) {
		if r.Method == http.MethodOptions {
			return
		}
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Origin not allowed by CORS policy"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleHealth(w, r)
	case http.MethodPost:
		s.handleAsk(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, methodNotAllowedBody{
			Error:          "Method not allowed",
			AllowedMethods: allowMethods,
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{
		Message:   "iStock RAG gateway",
		Status:    "online",
		Endpoints: []string{"GET /", "POST /"},
		Version:   Version,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), askTimeout)
	defer cancel()

	if err := s.authenticate(r); err != nil {
		s.writeFailure(w, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeFailure(w, goerr.New("Request body is required",
			goerr.T(model.TagBadRequest), goerr.V("cause", err.Error())))
		return
	}

	query, err := normalizeRequest(raw)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	answer, err := s.asker.Handle(ctx, query)
	if err != nil {
		logging.From(ctx).Error("query failed", "error", err)
		s.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, answer)
}

// writeJSON writes a JSON response with the given status. Once the header is
// out an encoding failure can only be logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}
