package reply

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type countingTransport struct {
	calls atomic.Int64
}

func (c *countingTransport) RoundTrip(_ *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return nil, http.ErrHandlerTimeout
}

const completionBody = `{"id":"cmpl-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Sure, done."},"finish_reason":"stop"}]}`

func TestReplyWithoutCredential(t *testing.T) {
	transport := &countingTransport{}
	client := NewClient(Config{
		APIKey:     "",
		HTTPClient: &http.Client{Transport: transport},
	}, testLogger())

	text, err := client.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Reply returned error: %v", err)
	}

	if text != "" {
		t.Errorf("Expected empty reply without credential, got %q", text)
	}

	if n := transport.calls.Load(); n != 0 {
		t.Errorf("Expected no outbound calls without credential, got %d", n)
	}
}

func TestReplySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/"}, testLogger())

	text, err := client.Reply(context.Background(), "turn on the light")
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if text != "Sure, done." {
		t.Errorf("Expected reply %q, got %q", "Sure, done.", text)
	}
}

func TestReplySubstitutesPlaceholder(t *testing.T) {
	var gotUserContent atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err == nil {
			for _, m := range req.Messages {
				if m.Role == "user" {
					gotUserContent.Store(m.Content)
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/"}, testLogger())

	if _, err := client.Reply(context.Background(), "   "); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if got, _ := gotUserContent.Load().(string); got != Placeholder {
		t.Errorf("Expected placeholder %q for empty input, got %q", Placeholder, got)
	}
}

func TestReplySendsPersona(t *testing.T) {
	var gotSystemContent atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err == nil {
			for _, m := range req.Messages {
				if m.Role == "system" {
					gotSystemContent.Store(m.Content)
				}
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody))
	}))
	defer server.Close()

	client := NewClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/",
		Persona: "You are a test persona.",
	}, testLogger())

	if _, err := client.Reply(context.Background(), "hi"); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}

	if got, _ := gotSystemContent.Load().(string); got != "You are a test persona." {
		t.Errorf("Expected injected persona as system turn, got %q", got)
	}
}

func TestReplyEngineFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"bad auth"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/"}, testLogger())

	text, err := client.Reply(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Engine failure must not surface as an error, got: %v", err)
	}

	if text != "" {
		t.Errorf("Expected empty reply on engine failure, got %q", text)
	}
}
