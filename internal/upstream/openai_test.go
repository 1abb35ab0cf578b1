package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// completionServer fakes the chat-completions endpoint, capturing the model
// and prompt it was asked for.
func completionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func respond(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
}

func TestComplete_ReturnsModelText(t *testing.T) {
	var gotModel, gotPrompt string
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotModel = body.Model
		if len(body.Messages) == 1 {
			gotPrompt = body.Messages[0].Content
		} else {
			t.Errorf("messages = %d; want exactly 1", len(body.Messages))
		}
		respond(w, "Hello there!")
	})

	c := New("test-key", srv.URL+"/v1", "gpt-4o-mini", time.Minute)
	out, err := c.Complete(context.Background(), "say hello")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out != "Hello there!" {
		t.Fatalf("out = %q", out)
	}
	if gotModel != "gpt-4o-mini" {
		t.Fatalf("model = %q", gotModel)
	}
	if gotPrompt != "say hello" {
		t.Fatalf("prompt = %q", gotPrompt)
	}
}

func TestComplete_APIError(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	})

	c := New("test-key", srv.URL+"/v1", "gpt-4o-mini", time.Minute)
	_, err := c.Complete(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error on API failure")
	}
	if !strings.Contains(err.Error(), "chat completion") {
		t.Fatalf("err = %v; want wrapped chat completion error", err)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-test","object":"chat.completion","choices":[]}`))
	})

	c := New("test-key", srv.URL+"/v1", "gpt-4o-mini", time.Minute)
	_, err := c.Complete(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("err = %v; want no-choices error", err)
	}
}

func TestComplete_Timeout(t *testing.T) {
	srv := completionServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			respond(w, "too late")
		}
	})

	c := New("test-key", srv.URL+"/v1", "gpt-4o-mini", 50*time.Millisecond)
	start := time.Now()
	_, err := c.Complete(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("call did not respect the %v timeout", 50*time.Millisecond)
	}
}
