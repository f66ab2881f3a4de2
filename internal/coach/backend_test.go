package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

type stubHTTPClient struct {
	status int
	body   []byte
	calls  int32
	last   []byte
}

func (s *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(&s.calls, 1)
	if req.Body != nil {
		s.last, _ = io.ReadAll(req.Body)
	}
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(s.body)),
		Request:    req,
	}, nil
}

func anthropicMessage(t *testing.T, text string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":    "msg_test",
		"type":  "message",
		"role":  "assistant",
		"model": DefaultAnthropicModel,
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"usage": map[string]any{
			"input_tokens":  1,
			"output_tokens": 1,
		},
	})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return body
}

func TestAnthropicBackendComplete(t *testing.T) {
	stub := &stubHTTPClient{status: http.StatusOK, body: anthropicMessage(t, "Confirm their budget.")}
	b := NewAnthropic(BackendConfig{APIKey: "test-key", MaxTokens: 50, HTTPClient: stub})

	got, err := b.Complete(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Confirm their budget." {
		t.Errorf("got %q", got)
	}

	var req struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
	}
	if err := json.Unmarshal(stub.last, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.MaxTokens != 50 {
		t.Errorf("max_tokens = %d, want 50", req.MaxTokens)
	}
	if req.Model != DefaultAnthropicModel {
		t.Errorf("model = %q, want %q", req.Model, DefaultAnthropicModel)
	}
}

func TestAnthropicBackendDoesNotRetry(t *testing.T) {
	stub := &stubHTTPClient{status: http.StatusInternalServerError, body: []byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`)}
	b := NewAnthropic(BackendConfig{APIKey: "test-key", HTTPClient: stub})

	if _, err := b.Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error on 500")
	}
	if n := atomic.LoadInt32(&stub.calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestOpenAIBackendComplete(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   DefaultOpenAIModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": "Hỏi về mục tiêu đầu tư.",
				},
			}},
		})
	}))
	defer srv.Close()

	b := NewOpenAI(BackendConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1/"})
	got, err := b.Complete(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Hỏi về mục tiêu đầu tư." {
		t.Errorf("got %q", got)
	}
	if gotPath != "/v1/chat/completions" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(string(gotBody), "prompt text") {
		t.Errorf("request body missing prompt: %s", gotBody)
	}
}

func TestOpenAIBackendEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	svc := NewService(NewOpenAI(BackendConfig{APIKey: "k", BaseURL: srv.URL}), nil, 0)
	r := svc.Query(context.Background(), "ctx", "help", "en")
	if r.Status != StatusNoResponse {
		t.Errorf("Status = %v, want no_response", r.Status)
	}
}

func TestOpenAIBackendServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewService(NewOpenAI(BackendConfig{APIKey: "k", BaseURL: srv.URL}), nil, 0)
	r := svc.Query(context.Background(), "ctx", "help", "vn")
	if r.Status != StatusFailed {
		t.Errorf("Status = %v, want failed", r.Status)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}
