package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/neis-client/pkg/client"
	"github.com/Sternrassler/neis-client/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
)

// hintParam is read by the gateway itself. It and the session-owned
// parameters are never forwarded.
const hintParam = "hint"

type rowsResponse struct {
	Service string       `json:"service"`
	Count   int          `json:"count"`
	Rows    []client.Row `json:"rows"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, readyResponse{Status: "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.config.ReadyTimeout)
	defer cancel()

	resp := readyResponse{Status: "ready", Checks: make(map[string]string, len(s.checkers))}
	status := http.StatusOK

	for name, checker := range s.checkers {
		if err := checker.CheckHealth(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

func (s *Server) handleServices(w http.ResponseWriter, _ *http.Request) {
	services := client.Services()
	names := make([]string, len(services))
	for i, svc := range services {
		names[i] = svc.String()
	}
	writeJSON(w, http.StatusOK, map[string][]string{"services": names})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	service, ok := client.ParseService(chi.URLParam(r, "service"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_service", "unknown service "+strconv.Quote(chi.URLParam(r, "service")))
		return
	}

	query := r.URL.Query()
	hint := 0
	if raw := query.Get(hintParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "hint must be a non-negative integer")
			return
		}
		hint = n
	}

	params := client.Params{}
	for key, values := range query {
		if key == hintParam || len(values) == 0 || client.IsReservedParam(key) {
			continue
		}
		params[key] = values[0]
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.FetchTimeout)
	defer cancel()

	start := time.Now()
	rows, err := s.rows.Rows(ctx, service, params, hint)
	if err != nil {
		s.writeFetchError(w, service, err)
		return
	}

	s.logger.Debug().
		Str("service", service.String()).
		Int("rows", len(rows)).
		Dur("duration", time.Since(start)).
		Msg("Served rows")

	writeJSON(w, http.StatusOK, rowsResponse{Service: service.String(), Count: len(rows), Rows: rows})
}

// retryAfter returns the Retry-After seconds for a quota error: the time
// until the tracked reset, or until the next KST midnight when the hub itself
// rejected the request.
func retryAfter(err *client.InternalServiceError, now time.Time) string {
	reset := err.ResetAt
	if reset.IsZero() {
		reset = ratelimit.NextReset(now)
	}
	seconds := int(math.Ceil(reset.Sub(now).Seconds()))
	return strconv.Itoa(max(seconds, 1))
}

// writeFetchError maps the client error taxonomy onto HTTP statuses.
// Per-request timeouts arrive as *ServiceUnavailableError wrapping
// context.DeadlineExceeded and are reported as 504.
func (s *Server) writeFetchError(w http.ResponseWriter, service client.Service, err error) {
	var serviceErr *client.InternalServiceError
	var unavailable *client.ServiceUnavailableError

	switch {
	case errors.Is(err, client.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no rows matched")
	case errors.As(err, &serviceErr) && serviceErr.IsQuotaExceeded():
		w.Header().Set("Retry-After", retryAfter(serviceErr, time.Now()))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "quota_exhausted", Code: serviceErr.Code, Message: serviceErr.Message})
	case errors.As(err, &serviceErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "service_error", Code: serviceErr.Code, Message: serviceErr.Message})
	case errors.Is(err, client.ErrSessionClosed):
		writeError(w, http.StatusServiceUnavailable, "unavailable", "session closed")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", "fetch timed out")
	case errors.As(err, &unavailable):
		writeError(w, http.StatusBadGateway, "upstream_unavailable", unavailable.Error())
	default:
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	}

	s.logger.Warn().
		Err(err).
		Str("service", service.String()).
		Str("error_class", string(client.Classify(err))).
		Msg("Fetch failed")
}
