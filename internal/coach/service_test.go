package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/config"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

type stubBackend struct {
	reply   string
	err     error
	calls   int
	prompts []string
	block   bool
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Complete(ctx context.Context, prompt string) (string, error) {
	b.calls++
	b.prompts = append(b.prompts, prompt)
	if b.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return b.reply, b.err
}

func TestQueryOK(t *testing.T) {
	backend := &stubBackend{reply: "  Ask about their goals.  "}
	svc := NewService(backend, nil, time.Second)

	r := svc.Query(context.Background(), "Introduction", "how do I open?", script.LocaleEN)
	if r.Status != StatusOK {
		t.Fatalf("Status = %v, want ok", r.Status)
	}
	if r.Text != "Ask about their goals." {
		t.Errorf("Text = %q", r.Text)
	}
	if r.Message(script.LocaleVN) != r.Text {
		t.Errorf("Message should return the backend text regardless of language")
	}
	if backend.calls != 1 {
		t.Fatalf("calls = %d, want 1", backend.calls)
	}
	prompt := backend.prompts[0]
	for _, want := range []string{`"Introduction"`, `"how do I open?"`, "Respond in English", "under 100 words"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestQueryEmptyIsNotDispatched(t *testing.T) {
	backend := &stubBackend{reply: "x"}
	svc := NewService(backend, nil, 0)

	for _, q := range []string{"", "   ", "\n\t"} {
		r := svc.Query(context.Background(), "ctx", q, script.LocaleEN)
		if r.Status != StatusEmptyQuery {
			t.Errorf("Query(%q).Status = %v, want empty_query", q, r.Status)
		}
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for empty queries", backend.calls)
	}
}

func TestQueryNotConfigured(t *testing.T) {
	svc := New(config.Coach{Provider: config.ProviderAnthropic, APIKey: "  "}, nil)
	if svc.Configured() {
		t.Fatal("Configured = true with blank key")
	}

	r := svc.Query(context.Background(), "ctx", "help", script.LocaleVN)
	if r.Status != StatusNotConfigured {
		t.Fatalf("Status = %v, want not_configured", r.Status)
	}
	if got := r.Message(script.LocaleVN); got != "Chưa cấu hình API Key." {
		t.Errorf("vn message = %q", got)
	}
	if got := r.Message(script.LocaleEN); got != "API Key not configured." {
		t.Errorf("en message = %q", got)
	}
}

func TestQueryFailureIsSwallowed(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewService(&stubBackend{err: boom}, nil, time.Second)

	r := svc.Query(context.Background(), "ctx", "help", script.LocaleEN)
	if r.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", r.Status)
	}
	if !errors.Is(r.Err, boom) {
		t.Errorf("Err = %v, want %v", r.Err, boom)
	}
	if got := r.Message(script.LocaleEN); got != "Error connecting to AI assistant." {
		t.Errorf("message = %q", got)
	}
	if got := r.Message(script.LocaleVN); got != "Lỗi kết nối với trợ lý AI." {
		t.Errorf("vn message = %q", got)
	}
}

func TestQueryNoResponse(t *testing.T) {
	svc := NewService(&stubBackend{reply: " \n "}, nil, time.Second)

	r := svc.Query(context.Background(), "ctx", "help", script.LocaleEN)
	if r.Status != StatusNoResponse {
		t.Fatalf("Status = %v, want no_response", r.Status)
	}
	if got := r.Message(script.LocaleEN); got != "No response." {
		t.Errorf("message = %q", got)
	}
	if got := r.Message(script.LocaleVN); got != "Không có phản hồi." {
		t.Errorf("vn message = %q", got)
	}
}

func TestQueryTimeout(t *testing.T) {
	svc := NewService(&stubBackend{block: true}, nil, 10*time.Millisecond)

	r := svc.Query(context.Background(), "ctx", "help", script.LocaleEN)
	if r.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", r.Status)
	}
	if !errors.Is(r.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want deadline exceeded", r.Err)
	}
}

func TestBuildPromptLanguage(t *testing.T) {
	if p := BuildPrompt("Close", "q", script.LocaleVN); !strings.Contains(p, "Respond in Vietnamese") {
		t.Errorf("vn prompt:\n%s", p)
	}
	if p := BuildPrompt("Close", "q", script.LocaleEN); !strings.Contains(p, "Respond in English") {
		t.Errorf("en prompt:\n%s", p)
	}
}

func TestNewSelectsProvider(t *testing.T) {
	tests := []struct {
		provider string
		prefix   string
	}{
		{config.ProviderAnthropic, "anthropic/"},
		{config.ProviderOpenAI, "openai/"},
	}
	for _, tt := range tests {
		svc := New(config.Coach{Provider: tt.provider, APIKey: "k"}, nil)
		if !svc.Configured() {
			t.Fatalf("%s: Configured = false", tt.provider)
		}
		if !strings.HasPrefix(svc.Backend(), tt.prefix) {
			t.Errorf("%s: Backend = %q, want prefix %q", tt.provider, svc.Backend(), tt.prefix)
		}
	}
}

func TestWelcomeMessage(t *testing.T) {
	if !strings.Contains(WelcomeMessage(script.LocaleEN), "sales coach") {
		t.Errorf("en welcome = %q", WelcomeMessage(script.LocaleEN))
	}
	if !strings.Contains(WelcomeMessage(script.LocaleVN), "trợ lý bán hàng") {
		t.Errorf("vn welcome = %q", WelcomeMessage(script.LocaleVN))
	}
}
