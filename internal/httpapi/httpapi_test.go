package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oriys/minifaas/internal/controller"
	"github.com/oriys/minifaas/internal/domain"
	"github.com/oriys/minifaas/internal/environment"
	"github.com/oriys/minifaas/internal/facade"
	"github.com/oriys/minifaas/internal/httptrigger"
	"github.com/oriys/minifaas/internal/logs"
	"github.com/oriys/minifaas/internal/store"
	"github.com/oriys/minifaas/internal/timertrigger"
	"github.com/oriys/minifaas/internal/toolchain"
)

type fakeLifecycle struct {
	toolchain.NoopLifecycle
}

func (fakeLifecycle) Build(ctx context.Context, code string) ([]byte, error) {
	return []byte(code), nil
}

func (fakeLifecycle) Execute(ctx context.Context, artifact []byte, input domain.RawFunctionInput, env environment.Environment) (string, error) {
	return "__MF__body:68656c6c6f\n__MF__status_code:200\n", nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	m := toolchain.NewMap()
	m.Register(domain.LanguageJavaScript, toolchain.Entry{Setup: toolchain.NoopSetup{}, Lifecycle: fakeLifecycle{}})

	router := httptrigger.NewRouter()
	scheduler := timertrigger.NewScheduler(time.Second)
	ctrl := controller.New(t.TempDir(), m, router, scheduler, logs.NewCollector(), nil, time.Second)

	st, err := store.NewJSONStore(t.TempDir() + "/functions.json")
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	f := facade.New(ctrl, st, router)
	return New(f)
}

func TestHandleRegisterAndCall(t *testing.T) {
	srv := newTestServer(t)

	body := strings.NewReader(`{"language":"javascript","code":"console.log('x')","trigger":{"kind":"http","method":"ALL"}}`)
	req := httptest.NewRequest(http.MethodPost, "/f/hello", body)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	callReq := httptest.NewRequest(http.MethodGet, "/f/call/hello", nil)
	callRec := httptest.NewRecorder()
	srv.ServeHTTP(callRec, callReq)
	if callRec.Code != http.StatusOK {
		t.Fatalf("call status = %d, body = %s", callRec.Code, callRec.Body.String())
	}
	if callRec.Body.String() != "hello" {
		t.Errorf("call body = %q, want %q", callRec.Body.String(), "hello")
	}
}

func TestHandleDeleteUnknownFunction(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodDelete, "/f/nope", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 for unknown function", rec.Code)
	}
}
