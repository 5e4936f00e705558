package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mj1618/ai-testing-tool/internal/config"
)

// OpenAIDecider asks an OpenAI chat model, sending the prompt file as the
// system message and the sections plus screenshot as one user message.
type OpenAIDecider struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

func NewOpenAIDecider(cfg config.ModelConfig) *OpenAIDecider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIDecider{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Name,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
}

func (d *OpenAIDecider) Decide(ctx context.Context, req Request) (string, error) {
	var parts []openai.ChatMessagePart
	for _, s := range Sections(req) {
		parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: s})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: req.ImageDataURL(),
		},
	})

	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		MaxTokens: d.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices")
	}
	return trimReply(resp.Choices[0].Message.Content), nil
}
