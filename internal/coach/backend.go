package coach

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaigo "github.com/openai/openai-go/v3"
	openaioption "github.com/openai/openai-go/v3/option"
)

// Default models per provider.
const (
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	DefaultOpenAIModel    = "gpt-4o-mini"
)

// Backend sends a prompt to a text-generation service and returns its reply.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// HTTPDoer is the client interface both SDKs accept.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// BackendConfig configures either SDK backend.
type BackendConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int

	// HTTPClient replaces the SDK's default client. Tests point it at a stub.
	HTTPClient HTTPDoer
}

// AnthropicBackend talks to the Anthropic Messages API.
type AnthropicBackend struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates an Anthropic backend. Retries are disabled: a failed
// query is reported once and the user can ask again.
func NewAnthropic(cfg BackendConfig) *AnthropicBackend {
	opts := []anthropicoption.RequestOption{
		anthropicoption.WithAPIKey(cfg.APIKey),
		anthropicoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropicoption.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, anthropicoption.WithHTTPClient(cfg.HTTPClient))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicBackend{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokensOrDefault(cfg.MaxTokens)),
	}
}

func (b *AnthropicBackend) Name() string { return "anthropic/" + b.model }

func (b *AnthropicBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(b.model),
		MaxTokens: b.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

// OpenAIBackend talks to an OpenAI-compatible Chat Completions endpoint.
type OpenAIBackend struct {
	client    openaigo.Client
	model     string
	maxTokens int64
}

// NewOpenAI creates an OpenAI backend. BaseURL selects a compatible server.
func NewOpenAI(cfg BackendConfig) *OpenAIBackend {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		openaioption.WithMaxRetries(0),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, openaioption.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openaioption.WithHTTPClient(cfg.HTTPClient))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIBackend{
		client:    openaigo.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokensOrDefault(cfg.MaxTokens)),
	}
}

func (b *OpenAIBackend) Name() string { return "openai/" + b.model }

func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openaigo.ChatCompletionNewParams{
		Model: openaigo.ChatModel(b.model),
		Messages: []openaigo.ChatCompletionMessageParamUnion{
			openaigo.UserMessage(prompt),
		},
		MaxTokens: openaigo.Int(b.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 300
	}
	return n
}
