package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestSendMessage_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/instance42/messages/chat" {
			t.Fatalf("path = %s, want /instance42/messages/chat", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Token != "secret" {
			t.Fatalf("token = %q, want secret", req.Token)
		}
		if req.To != "966501234567" {
			t.Fatalf("to = %q, want 966501234567", req.To)
		}
		if req.Body == "" {
			t.Fatalf("empty message body")
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "instance42", "secret", time.Second, 0)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.SendMessage(ctx, "966501234567", "hello"); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
}

func TestSendMessage_ServerError(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "instance42", "secret", time.Second, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.SendMessage(ctx, "966501234567", "hello"); err == nil {
		t.Fatalf("expected error on 502")
	}

	// retries = 0 означает ровно одну попытку доставки.
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestSendMessage_RetriesConfigured(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "instance42", "secret", time.Second, 2)
	client.httpClient.RetryWaitMin = time.Millisecond
	client.httpClient.RetryWaitMax = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.SendMessage(ctx, "966501234567", "hello"); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient(DefaultBaseURL, "", "", time.Second, 0)

	if client.Configured() {
		t.Fatalf("client without credentials must not report configured")
	}

	if err := client.SendMessage(context.Background(), "966501234567", "hello"); err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}
