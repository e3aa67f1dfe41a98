package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitroom-server/internal/domain"
)

func TestAnthropicCompleteSendsWireFormat(t *testing.T) {
	var captured anthropicRequest
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "Great outfit!"}},
		})
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(AnthropicOptions{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	reply, err := client.Complete(context.Background(), Request{
		System: "You are a stylist.",
		Messages: []Message{
			{Role: domain.RoleUser, Text: "hi"},
			{Role: domain.RoleAssistant, Text: "hello"},
			{Role: domain.RoleUser, Text: "rate my look", ImageData: []byte{0x01, 0x02}, ImageMIME: "image/jpeg"},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "Great outfit!" {
		t.Fatalf("reply = %q", reply)
	}

	if gotKey != "sk-test" || gotVersion != "2023-06-01" {
		t.Fatalf("headers key=%q version=%q", gotKey, gotVersion)
	}
	if captured.Model != "claude-3-sonnet-20240229" {
		t.Fatalf("model = %q", captured.Model)
	}
	if captured.MaxTokens != DefaultMaxTokens {
		t.Fatalf("max_tokens = %d", captured.MaxTokens)
	}
	if captured.System != "You are a stylist." {
		t.Fatalf("system = %q", captured.System)
	}
	if len(captured.Messages) != 3 {
		t.Fatalf("messages = %d", len(captured.Messages))
	}
	last := captured.Messages[2]
	if len(last.Content) != 2 || last.Content[0].Type != "image" || last.Content[1].Type != "text" {
		t.Fatalf("multimodal blocks: %+v", last.Content)
	}
	src := last.Content[0].Source
	if src == nil || src.Type != "base64" || src.MediaType != "image/jpeg" {
		t.Fatalf("image source: %+v", src)
	}
	if src.Data != base64.StdEncoding.EncodeToString([]byte{0x01, 0x02}) {
		t.Fatalf("image data = %q", src.Data)
	}
}

func TestAnthropicCompleteUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"type": "rate_limit_error", "message": "slow down"},
		})
	}))
	defer srv.Close()

	client, err := NewAnthropicClient(AnthropicOptions{APIKey: "sk-test", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Complete(context.Background(), Request{
		Messages: []Message{{Role: domain.RoleUser, Text: "hi"}},
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient(AnthropicOptions{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
