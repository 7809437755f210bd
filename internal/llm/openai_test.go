package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/openverdict/tribunal/pkg/config"
	"go.uber.org/zap"
)

func newTestClient(serverURL string) *OpenAIClient {
	logger, _ := zap.NewDevelopment()
	return NewOpenAIClient(config.LLMConfig{
		BaseURL:     serverURL,
		APIKey:      "test-key",
		Model:       "test-model",
		MaxTokens:   512,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	}, logger)
}

func TestOpenAIClient_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "test-model-2026-01",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"ok":true}`}},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	completion, err := client.Complete(context.Background(), RoleJudge, Request{
		SystemPrompt: "system",
		UserPrompt:   "user",
		MaxTokens:    512,
		Temperature:  0.2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if completion.Content != `{"ok":true}` {
		t.Errorf("unexpected content: %s", completion.Content)
	}
	if completion.Model != "test-model-2026-01" {
		t.Errorf("expected server-reported model, got %s", completion.Model)
	}
}

func TestOpenAIClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Complete(context.Background(), RoleAdvocateYes, Request{UserPrompt: "q"})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"m","choices":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Complete(context.Background(), RoleAdvocateNo, Request{UserPrompt: "q"})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, RoleJudge, Request{UserPrompt: "q"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
