package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/teilomillet/aiengine/config"
)

var (
	errNoChoices = errors.New("no completion choices returned")
	errNoContent = errors.New("completion has no message content")
)

// OpenAIBackend calls the Chat Completions API.
type OpenAIBackend struct {
	client       openai.Client
	model        string
	systemPrompt string
	maxTokens    int64
}

// NewOpenAIBackend creates a backend for cfg. The client's own retries are
// disabled so each prompt results in exactly one request.
func NewOpenAIBackend(cfg config.LLMConfig) *OpenAIBackend {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	return &OpenAIBackend{
		client:       openai.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    int64(cfg.MaxTokens),
	}
}

func (b *OpenAIBackend) Name() string {
	return config.ProviderOpenAI
}

// Complete sends the system instruction and p as a two-message conversation
// and returns the content of the first choice. A null content, as sent with
// refusals, is an error; an empty string is not.
func (b *OpenAIBackend) Complete(ctx context.Context, p string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(b.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(b.systemPrompt),
			openai.UserMessage(p),
		},
		MaxTokens: openai.Int(b.maxTokens),
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	msg := resp.Choices[0].Message
	if !msg.JSON.Content.Valid() {
		if msg.Refusal != "" {
			return "", fmt.Errorf("%w: refused: %s", errNoContent, msg.Refusal)
		}
		return "", errNoContent
	}
	return msg.Content, nil
}
