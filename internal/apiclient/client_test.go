package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/apiclient"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var req struct {
			Operation string `json:"operation"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Operation != "hello" {
			t.Errorf("expected operation hello, got %s", req.Operation)
		}
		_, _ = w.Write([]byte(`{"data":{"hello":"Hello, CRM!"}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL)

	var out struct {
		Hello string `json:"hello"`
	}
	if err := client.Do(context.Background(), "hello", nil, &out); err != nil {
		t.Fatalf("do failed: %v", err)
	}
	if out.Hello != "Hello, CRM!" {
		t.Fatalf("unexpected reply: %q", out.Hello)
	}
}

func TestClient_RetriesTransportErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, apiclient.WithAttempts(3))

	if err := client.Do(context.Background(), "summary", nil, nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestClient_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, apiclient.WithAttempts(2))

	err := client.Do(context.Background(), "summary", nil, nil)
	if err == nil {
		t.Fatal("expected error after exhausted attempts")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 calls, got %d", got)
	}
}

func TestClient_OperationErrorsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"errors":["Email already exists"]}`))
	}))
	defer srv.Close()

	client := apiclient.New(srv.URL, apiclient.WithAttempts(3))

	err := client.Do(context.Background(), "createCustomer", nil, nil)
	var opErr *apiclient.OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if len(opErr.Errors) != 1 || opErr.Errors[0] != "Email already exists" {
		t.Fatalf("unexpected errors: %v", opErr.Errors)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("business error must not be retried, got %d calls", got)
	}
}
