package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/telemetry"
	"github.com/maheshrc27/postgen/internal/transfer"
)

type CaptionService interface {
	Generate(ctx context.Context, prompt, style string) (*transfer.CaptionsResponse, error)
}

type captionService struct {
	gateway *gatewayClient
}

func NewCaptionService(cfg config.Config) CaptionService {
	return &captionService{gateway: &gatewayClient{
		url:    cfg.GatewayURL,
		apiKey: cfg.GatewayAPIKey,
		client: newHTTPClient(cfg.UpstreamTimeout),
	}}
}

const captionTemplate = `Create highly engaging, conversion-optimized social media captions for: "%s" %s.

Generate 4 platform-specific captions with strategic hashtags:

1. INSTAGRAM (2200 chars max):
   - Hook with emojis in first line
   - Engaging storytelling body
   - Strong call-to-action
   - 8-15 relevant hashtags (mix of popular & niche)

2. FACEBOOK (500 chars max):
   - Conversational and community-focused
   - Question or engagement hook
   - 2-3 hashtags
   - Encourage comments/shares

3. TWITTER/X (280 chars max):
   - Ultra-concise and punchy
   - 2-3 hashtags max

4. LINKEDIN (700 chars max):
   - Professional value proposition
   - 3-5 professional hashtags

CRITICAL: Return ONLY valid JSON (no markdown, no code blocks, no extra text):
{
  "instagram": "caption with emojis and 8-15 hashtags",
  "facebook": "caption with 2-3 hashtags",
  "twitter": "short punchy caption with 2-3 hashtags",
  "linkedin": "professional caption with 3-5 hashtags"
}`

func (s *captionService) Generate(ctx context.Context, prompt, style string) (resp *transfer.CaptionsResponse, err error) {
	defer func() { telemetry.ObserveGeneration("captions", err) }()

	if err := config.Require("LOVABLE_API_KEY", s.gateway.apiKey); err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	slog.Info("generating platform captions", "prompt", prompt)

	captionPrompt := fmt.Sprintf(captionTemplate, prompt, styleSuffix(style, "in %s style"))
	out, err := s.gateway.prompt(ctx, "Caption generation", gatewayTextModel, captionPrompt)
	if err != nil {
		return nil, err
	}

	text := out.Text()
	if text == "" {
		return nil, errors.New("No captions returned from AI")
	}

	var captions transfer.Captions
	if err := decodeModelJSON(text, &captions); err != nil {
		slog.Error("failed to parse captions JSON", "text", text, "error", err)
		return nil, errors.New("Failed to parse generated captions")
	}

	return &transfer.CaptionsResponse{Captions: captions, Prompt: prompt}, nil
}
