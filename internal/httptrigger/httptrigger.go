// Package httptrigger fans HTTP-shaped invocations out to the executor
// registered for their route, and converts the executor's sentinel output
// back into an HTTP response shape.
package httptrigger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/oriys/minifaas/internal/domain"
)

// Invoker is the subset of FunctionExecutor the router depends on, kept
// narrow so tests can supply a fake without constructing a real executor.
type Invoker interface {
	Invoke(ctx context.Context, input domain.RawFunctionInput) (domain.RawFunctionOutput, error)
}

// Request is the decoded shape of an incoming HTTP trigger event.
type Request struct {
	Route   string
	Method  domain.HTTPMethod
	Params  map[string][]string
	Headers map[string]string
	Body    []byte
}

// Response is what the router produces for an HTTP trigger event, ready to
// be written back to the original client.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// defaultResponse is returned when a route has no subscribed executor.
func defaultResponse() Response {
	return Response{StatusCode: 200, Headers: map[string]string{}, Body: []byte{}}
}

// Router maintains the route→executor map and dispatches HTTP trigger
// payloads. Subscribe accepts a method but does not store it, and dispatch
// does not discriminate on method: route names are unique per function, so
// there is nothing to disambiguate on method alone.
type Router struct {
	mu     sync.RWMutex
	routes map[string]Invoker
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]Invoker)}
}

// Subscribe registers invoker to serve requests for route, replacing
// whatever was previously subscribed.
func (r *Router) Subscribe(route string, invoker Invoker, _ domain.HTTPMethod) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route] = invoker
}

// Unsubscribe removes route's entry, if any.
func (r *Router) Unsubscribe(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routes, route)
}

// Dispatch looks up req.Route and, if subscribed, invokes it and converts
// the result to an HTTP response. An unsubscribed route yields the default
// empty 200 response rather than an error: a missing trigger is a normal,
// user-reachable state (the function exists but has no HTTP binding, or was
// never registered).
func (r *Router) Dispatch(ctx context.Context, req Request) (Response, error) {
	r.mu.RLock()
	invoker, ok := r.routes[req.Route]
	r.mu.RUnlock()
	if !ok {
		return defaultResponse(), nil
	}

	payload, err := json.Marshal(inputEnvelope{
		Body:    req.Body,
		Headers: req.Headers,
		Params:  req.Params,
		Method:  req.Method,
		Route:   req.Route,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal http input envelope for %s: %w", req.Route, err)
	}

	out, err := invoker.Invoke(ctx, domain.RawFunctionInput{Payload: payload})
	if err != nil {
		return Response{}, fmt.Errorf("invoke %s: %w", req.Route, err)
	}

	return toResponse(out), nil
}

type inputEnvelope struct {
	Body    []byte              `json:"body"`
	Headers map[string]string   `json:"headers"`
	Params  map[string][]string `json:"params"`
	Method  domain.HTTPMethod   `json:"method"`
	Route   string              `json:"route"`
}

func toResponse(out domain.RawFunctionOutput) Response {
	resp := defaultResponse()

	if raw, ok := out["headers"]; ok {
		var headers map[string]string
		if err := json.Unmarshal(raw, &headers); err == nil {
			resp.Headers = headers
		}
	}
	if body, ok := out["body"]; ok {
		resp.Body = body
	}
	if raw, ok := out["status_code"]; ok {
		if code, err := strconv.ParseUint(string(raw), 10, 16); err == nil {
			resp.StatusCode = int(code)
		}
	}
	return resp
}
