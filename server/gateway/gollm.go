package gateway

import (
	"context"

	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"

	"github.com/teilomillet/aiengine/config"
)

// GollmClient is the part of gollm.LLM the backend uses.
type GollmClient interface {
	Generate(ctx context.Context, prompt *gollm.Prompt, opts ...llm.GenerateOption) (string, error)
}

// GollmBackend serves every non-OpenAI provider through gollm.
type GollmBackend struct {
	client   GollmClient
	provider string
}

// NewGollmBackend creates a gollm LLM for cfg and fixes its system prompt.
func NewGollmBackend(cfg config.LLMConfig) (*GollmBackend, error) {
	client, err := gollm.NewLLM(
		gollm.SetProvider(cfg.Provider),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(cfg.APIKey),
		gollm.SetMaxTokens(cfg.MaxTokens),
		gollm.SetMaxRetries(0),
	)
	if err != nil {
		return nil, err
	}

	client.SetSystemPrompt(cfg.SystemPrompt, gollm.CacheTypeEphemeral)
	if cfg.Endpoint != "" {
		client.SetEndpoint(cfg.Endpoint)
	}

	return NewGollmBackendWithClient(client, cfg.Provider), nil
}

// NewGollmBackendWithClient wraps an already configured client.
func NewGollmBackendWithClient(client GollmClient, provider string) *GollmBackend {
	return &GollmBackend{client: client, provider: provider}
}

func (b *GollmBackend) Name() string {
	return "gollm/" + b.provider
}

func (b *GollmBackend) Complete(ctx context.Context, p string) (string, error) {
	return b.client.Generate(ctx, gollm.NewPrompt(p))
}
