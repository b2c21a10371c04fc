package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var captured oaiRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(oaiResponse{
			Choices: []oaiChoice{{Message: oaiMessage{Role: "assistant", Content: `  {"facts": []}  `}}},
		})
	}))
	defer srv.Close()

	p := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})

	got, err := p.Complete(context.Background(), "system says", "user says")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"facts": []}` {
		t.Errorf("content = %q, want trimmed payload", got)
	}

	if auth != "Bearer test-key" {
		t.Errorf("Authorization = %q", auth)
	}
	if captured.Model != "test-model" {
		t.Errorf("model = %s", captured.Model)
	}
	if len(captured.Messages) != 2 ||
		captured.Messages[0].Role != "system" || captured.Messages[0].Content != "system says" ||
		captured.Messages[1].Role != "user" || captured.Messages[1].Content != "user says" {
		t.Errorf("messages = %+v", captured.Messages)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", captured.ResponseFormat)
	}
}

func TestCompleteRateLimitResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Complete(context.Background(), "system", "user")
	if !errors.Is(err, ErrRateLimit) {
		t.Errorf("error = %v, want ErrRateLimit", err)
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "bad model", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "test-key", BaseURL: srv.URL})

	_, err := p.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrRateLimit) {
		t.Errorf("non-429 error must not map to ErrRateLimit: %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_request_error") {
		t.Errorf("error %q does not carry the API error type", err)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := New(Config{APIKey: "test-key", BaseURL: srv.URL})

	if _, err := p.Complete(context.Background(), "system", "user"); err == nil {
		t.Error("expected an error for an empty choices list")
	}
}
