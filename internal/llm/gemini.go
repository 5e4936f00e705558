package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/mj1618/ai-testing-tool/internal/config"
)

// GeminiDecider asks a Gemini model with the prompt file as system
// instruction and the sections plus an inline JPEG as user content.
type GeminiDecider struct {
	client    *genai.Client
	model     string
	maxTokens int32
	timeout   time.Duration
}

func NewGeminiDecider(ctx context.Context, cfg config.ModelConfig) (*GeminiDecider, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiDecider{client: client, model: cfg.Name, maxTokens: int32(cfg.MaxTokens), timeout: cfg.Timeout}, nil
}

func (d *GeminiDecider) Decide(ctx context.Context, req Request) (string, error) {
	var parts []*genai.Part
	for _, s := range Sections(req) {
		parts = append(parts, genai.NewPartFromText(s))
	}
	if req.ImageBase64 != "" {
		img, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return "", fmt.Errorf("decode screenshot: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(img, "image/jpeg"))
	}

	genCfg := &genai.GenerateContentConfig{MaxOutputTokens: d.maxTokens}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()
	resp, err := d.client.Models.GenerateContent(ctx, d.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini generate content: empty reply")
	}
	return trimReply(text), nil
}
