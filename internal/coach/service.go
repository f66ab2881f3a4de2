// Package coach answers free-text questions from the agent with short
// suggestions from an external text-generation backend. Failures never
// reach the caller as errors; every query yields a tagged Reply.
package coach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/config"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/logging"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

// Service is the coaching query entry point. It is safe for concurrent use.
type Service struct {
	backend Backend
	logger  *logging.Logger
	timeout time.Duration
}

// New builds a service from configuration. Without an API key the service
// reports StatusNotConfigured and never touches the network.
func New(cfg config.Coach, logger *logging.Logger) *Service {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return NewService(nil, logger, cfg.Timeout)
	}
	bc := BackendConfig{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	}
	var backend Backend
	switch cfg.Provider {
	case config.ProviderOpenAI:
		backend = NewOpenAI(bc)
	default:
		backend = NewAnthropic(bc)
	}
	return NewService(backend, logger, cfg.Timeout)
}

// NewService wraps backend. A nil backend means not configured; a
// non-positive timeout means none.
func NewService(backend Backend, logger *logging.Logger, timeout time.Duration) *Service {
	return &Service{backend: backend, logger: logger, timeout: timeout}
}

// Configured reports whether a backend is available.
func (s *Service) Configured() bool {
	return s != nil && s.backend != nil
}

// Backend returns the backend's name, or "" when not configured.
func (s *Service) Backend() string {
	if !s.Configured() {
		return ""
	}
	return s.backend.Name()
}

// Query asks the backend about userText in the context of the current stage.
func (s *Service) Query(ctx context.Context, stageContext, userText string, lang script.Locale) Reply {
	if strings.TrimSpace(userText) == "" {
		return Reply{Status: StatusEmptyQuery}
	}
	if !s.Configured() {
		return Reply{Status: StatusNotConfigured}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.backend.Complete(ctx, BuildPrompt(stageContext, userText, lang))
	if err != nil {
		s.logger.Printf("coach: %s query failed: %v", s.backend.Name(), err)
		return Reply{Status: StatusFailed, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Status: StatusNoResponse}
	}
	return Reply{Status: StatusOK, Text: text}
}

// BuildPrompt renders the single request sent to the backend.
func BuildPrompt(stageContext, userText string, lang script.Locale) string {
	langName := "Vietnamese"
	if lang == script.LocaleEN {
		langName = "English"
	}
	var b strings.Builder
	b.WriteString("You are an expert telesales coach for financial products.\n")
	fmt.Fprintf(&b, "Context of current sales stage: %q.\n\n", stageContext)
	fmt.Fprintf(&b, "User Query: %q\n\n", strings.TrimSpace(userText))
	b.WriteString("Provide a short, punchy, and effective script or advice for the agent to say or do.\n")
	fmt.Fprintf(&b, "Respond in %s.\n", langName)
	b.WriteString("Keep it under 100 words.\n")
	return b.String()
}
