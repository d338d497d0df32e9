package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/telemetry"
	"github.com/maheshrc27/postgen/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ImageService interface {
	Generate(ctx context.Context, prompt, style string) (*transfer.ImageResponse, error)
}

type imageService struct {
	token    string
	modelURL string
	client   *http.Client
	media    MediaUploader
}

// NewImageService builds the Hugging Face image proxy. media may be nil, in
// which case images are returned inline as data URIs.
func NewImageService(cfg config.Config, media MediaUploader) ImageService {
	return &imageService{
		token:    cfg.HuggingFaceToken,
		modelURL: cfg.HuggingFaceModelURL,
		client:   newHTTPClient(cfg.UpstreamTimeout),
		media:    media,
	}
}

func buildImagePrompt(prompt, style string) string {
	styled := styleSuffix(style, ", %s style")
	styled = strings.ToLower(styled)
	return fmt.Sprintf("Create a professional social media post image for a marketing agency. %s%s. "+
		"Make it eye-catching, modern, and optimized for Instagram/Facebook. All text must be in English only. "+
		"Include clear, readable English text if mentioned in the prompt.", prompt, styled)
}

func (s *imageService) Generate(ctx context.Context, prompt, style string) (resp *transfer.ImageResponse, err error) {
	defer func() { telemetry.ObserveGeneration("image", err) }()

	if err := config.Require("HUGGING_FACE_ACCESS_TOKEN", s.token); err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	socialMediaPrompt := buildImagePrompt(prompt, style)
	slog.Info("generating social media image", "prompt", socialMediaPrompt)

	upstream, err := postJSON(ctx, s.client, s.modelURL, s.token, "Image generation", transfer.HuggingFaceRequest{Inputs: socialMediaPrompt})
	if err != nil {
		return nil, err
	}
	defer upstream.Body.Close()

	image, err := io.ReadAll(upstream.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading image body: %w", err)
	}

	kind, err := filetype.Match(image)
	if err != nil || kind == types.Unknown || !filetype.IsImage(image) {
		return nil, fmt.Errorf("image generation returned unsupported content")
	}

	ref, err := s.store(ctx, image, kind)
	if err != nil {
		return nil, err
	}

	return &transfer.ImageResponse{Image: ref, Prompt: socialMediaPrompt}, nil
}

func (s *imageService) store(ctx context.Context, image []byte, kind types.Type) (string, error) {
	if s.media == nil {
		return fmt.Sprintf("data:%s;base64,%s", kind.MIME.Value, base64.StdEncoding.EncodeToString(image)), nil
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("generated/%s.%s", id, kind.Extension)

	url, err := s.media.Upload(ctx, key, image, kind.MIME.Value)
	if err != nil {
		return "", err
	}
	return url, nil
}
