// Package httpapi is the external HTTP front-end: a thin net/http server
// translating requests into Facade calls. It holds no control-plane state
// of its own.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/facade"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/logging"
	"github.com/oriys/minifaas/internal/metrics"
	"github.com/oriys/minifaas/internal/observability"
)

// Server wires a Facade to a net/http.ServeMux using Go 1.22's method+path
// pattern matching. Every request is traced through observability's HTTP
// middleware; tracing is a no-op unless the daemon was started with it
// enabled.
type Server struct {
	facade  *facade.Facade
	mux     *http.ServeMux
	handler http.Handler
}

func New(f *facade.Facade) *Server {
	s := &Server{facade: f, mux: http.NewServeMux()}
	s.routes()
	s.handler = observability.HTTPMiddleware(s.mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /f/call/{name}", s.handleCall)
	s.mux.HandleFunc("POST /f/call/{name}", s.handleCall)
	s.mux.HandleFunc("POST /f/{name}", s.handleRegister)
	s.mux.HandleFunc("DELETE /f/{name}", s.handleDelete)
	s.mux.HandleFunc("GET /f/{name}/logs", s.handleLogs)
	s.mux.Handle("GET /metrics", metrics.Handler())
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	req := httptrigger.Request{
		Route:   name,
		Method:  domain.HTTPMethod(r.Method),
		Params:  r.URL.Query(),
		Headers: flattenHeaders(r.Header),
		Body:    body,
	}

	resp, err := s.facade.HTTPCall(r.Context(), req)
	if err != nil {
		s.logger(r.Context()).Error("http call failed", "function", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var decl domain.FunctionDeclaration
	if err := json.NewDecoder(r.Body).Decode(&decl); err != nil {
		http.Error(w, "invalid function declaration: "+err.Error(), http.StatusBadRequest)
		return
	}
	decl.Name = name

	rec, err := s.facade.NewFunction(r.Context(), decl)
	if err != nil {
		s.logger(r.Context()).Error("failed to register function", "function", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.facade.DeleteFunction(r.Context(), name); err != nil {
		s.logger(r.Context()).Error("failed to delete function", "function", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	startLine := 0
	if v := r.URL.Query().Get("start"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			startLine = parsed
		}
	}
	lines := 100
	if v := r.URL.Query().Get("lines"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			lines = parsed
		}
	}

	out, err := s.facade.FetchLogs(r.Context(), name, startLine, lines)
	if err != nil {
		s.logger(r.Context()).Error("failed to fetch logs", "function", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

// logger returns the operational logger tagged with the request's trace and
// span IDs, when tracing is enabled. Callers use it in place of logging.Op()
// so errors can be correlated back to the span that produced them.
func (s *Server) logger(ctx context.Context) *slog.Logger {
	return logging.OpWithTrace(observability.GetTraceID(ctx), observability.GetSpanID(ctx))
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
