package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/telemetry"
	"github.com/maheshrc27/postgen/internal/transfer"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// TextGenerator produces free text for a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

const geminiVideoModel = "gemini-2.0-flash-exp"

func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiGenerator{client: client, model: geminiVideoModel}, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.9)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Kind: "Video generation", Status: apiErr.Code}
		}
		return "", fmt.Errorf("video generation request error: %w", err)
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok && text != "" {
				return string(text), nil
			}
		}
	}
	return "", nil
}

func (g *GeminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

type VideoService interface {
	Generate(ctx context.Context, prompt, videoType string) (*transfer.VideoResponse, error)
}

type videoService struct {
	apiKey         string
	placeholderURL string
	generator      TextGenerator
}

// NewVideoService builds the video concept proxy. generator is nil when no
// Google AI key is configured; calls then fail with a configuration error.
func NewVideoService(cfg config.Config, generator TextGenerator) VideoService {
	return &videoService{
		apiKey:         cfg.GoogleAIAPIKey,
		placeholderURL: cfg.VideoPlaceholderURL,
		generator:      generator,
	}
}

const videoPlaceholderMessage = "Note: This is a placeholder. Video rendering will be integrated when the provider supports it."

func videoPrompt(prompt, videoType string) string {
	duration := "1-10 minutes"
	target := "YouTube, Facebook"
	if isReel(videoType) {
		duration = "15-60 seconds"
		target = "Instagram Reels, TikTok"
	}
	return fmt.Sprintf(`Create a professional social media video for: %s

Duration: %s
Requirements:
- High quality, engaging visuals
- Smooth transitions
- Professional editing
- Optimized for %s
- Include dynamic camera movements
- Add appropriate background music/sound effects
- Modern, eye-catching style

Note: Please describe how this video would be created, including scenes, transitions, and visual elements. Return a JSON with structure: {"description": "...", "scenes": [...], "duration": "..."}`, prompt, duration, target)
}

func (s *videoService) Generate(ctx context.Context, prompt, videoType string) (resp *transfer.VideoResponse, err error) {
	defer func() { telemetry.ObserveGeneration("video", err) }()

	if err := config.Require("GOOGLE_AI_API_KEY", s.apiKey); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, &config.MissingKeyError{Key: "GOOGLE_AI_API_KEY"}
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	slog.Info("generating video concept", "prompt", prompt, "video_type", videoType)

	description, err := s.generator.GenerateText(ctx, videoPrompt(prompt, videoType))
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = "Video concept created"
	}

	return &transfer.VideoResponse{
		VideoURL:    s.placeholderURL,
		Description: description,
		Message:     videoPlaceholderMessage,
		Prompt:      prompt,
	}, nil
}
