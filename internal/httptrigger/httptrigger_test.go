package httptrigger

import (
	"context"
	"testing"

	"github.com/oriys/minifaas/internal/domain"
)

type fakeInvoker struct {
	out domain.RawFunctionOutput
	err error
}

func (f *fakeInvoker) Invoke(ctx context.Context, input domain.RawFunctionInput) (domain.RawFunctionOutput, error) {
	return f.out, f.err
}

func TestDispatchUnknownRouteReturnsDefault(t *testing.T) {
	r := NewRouter()

	resp, err := r.Dispatch(context.Background(), Request{Route: "nope"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.StatusCode != 200 || len(resp.Body) != 0 {
		t.Errorf("expected default response, got %+v", resp)
	}
}

func TestDispatchConvertsOutputToResponse(t *testing.T) {
	r := NewRouter()
	r.Subscribe("hello", &fakeInvoker{out: domain.RawFunctionOutput{
		"body":        []byte("hello"),
		"status_code": []byte("201"),
		"headers":     []byte(`{"x-test":"yes"}`),
	}}, domain.MethodAll)

	resp, err := r.Dispatch(context.Background(), Request{Route: "hello", Method: domain.MethodGet})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Errorf("StatusCode = %d, want 201", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("Body = %q, want %q", resp.Body, "hello")
	}
	if resp.Headers["x-test"] != "yes" {
		t.Errorf("Headers = %v, want x-test=yes", resp.Headers)
	}
}

func TestUnsubscribeRemovesRoute(t *testing.T) {
	r := NewRouter()
	r.Subscribe("hello", &fakeInvoker{out: domain.RawFunctionOutput{}}, domain.MethodAll)
	r.Unsubscribe("hello")

	resp, err := r.Dispatch(context.Background(), Request{Route: "hello"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if resp.StatusCode != 200 || len(resp.Body) != 0 {
		t.Errorf("expected default response after unsubscribe, got %+v", resp)
	}
}
