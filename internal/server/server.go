// Package server is the HTTP boundary of the engine. It registers one
// handler per tool and translates engine results and errors into JSON
// responses; no domain logic lives here.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/riyasyash/sqlgate/internal/db"
	"github.com/riyasyash/sqlgate/internal/guard"
)

// Server wires the validation pipeline and execution gateway to HTTP
// handlers.
type Server struct {
	connector *db.Connector
	validator *guard.Validator
	gateway   *db.Gateway
	log       zerolog.Logger
}

// New creates a server over the given engine components.
func New(connector *db.Connector, validator *guard.Validator, gateway *db.Gateway, log zerolog.Logger) *Server {
	return &Server{
		connector: connector,
		validator: validator,
		gateway:   gateway,
		log:       log,
	}
}

// toolRequest is the wire shape shared by validate_query and execute_sql.
type toolRequest struct {
	Query  string         `json:"query"`
	Params map[string]any `json:"params"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Router returns the HTTP handler exposing the tool surface:
// GET /tools/get_db_schema, POST /tools/validate_query,
// POST /tools/execute_sql, GET /healthz.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools/get_db_schema", s.handleSchema)
	mux.HandleFunc("/tools/validate_query", s.handleValidate)
	mux.HandleFunc("/tools/execute_sql", s.handleExecute)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	schema, err := s.connector.FetchSchema(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("schema fetch failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeToolRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result := s.validator.Validate(r.Context(), req.Query, req.Params)
	s.log.Info().
		Bool("valid", result.Valid).
		Dur("took", time.Since(start)).
		Msg("validated query")

	// Validation failure is data, not a transport error.
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeToolRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := s.gateway.Execute(r.Context(), req.Query, req.Params)
	if err != nil {
		var sv *db.SecurityViolationError
		if errors.As(err, &sv) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: sv.Error()})
			return
		}
		// The real database message reaches the caller unchanged.
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.log.Info().
		Int("rows", len(result.Rows)).
		Dur("took", time.Since(start)).
		Msg("executed query")
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.connector.CheckHealth(r.Context()))
}

func (s *Server) decodeToolRequest(w http.ResponseWriter, r *http.Request) (toolRequest, bool) {
	var req toolRequest
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return req, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
