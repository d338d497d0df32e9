package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/telemetry"
	"github.com/maheshrc27/postgen/internal/transfer"
	"golang.org/x/time/rate"
)

type StoryboardService interface {
	Generate(ctx context.Context, prompt, videoType, style string) (*transfer.StoryboardResponse, error)
}

type storyboardService struct {
	gateway *gatewayClient
	// Scene images are requested one after another; the limiter spaces them.
	pace *rate.Limiter
}

func NewStoryboardService(cfg config.Config) StoryboardService {
	limit := rate.Inf
	if cfg.SceneInterval > 0 {
		limit = rate.Every(cfg.SceneInterval)
	}
	return &storyboardService{
		gateway: &gatewayClient{
			url:    cfg.GatewayURL,
			apiKey: cfg.GatewayAPIKey,
			client: newHTTPClient(cfg.UpstreamTimeout),
		},
		pace: rate.NewLimiter(limit, 1),
	}
}

const VideoTypeReel = "reel"

func isReel(videoType string) bool {
	return videoType == VideoTypeReel
}

const storyboardTemplate = `Create a detailed video storyboard for %s about: "%s" %s.

Generate a JSON array of 3-5 scenes (reels: 3-4 scenes, long-form: 4-5 scenes).

Each scene should include:
- scene_number: number
- duration: string (e.g., "3-5 seconds")
- description: detailed visual description for image generation
- text_overlay: text to display on screen
- transition: type of transition to next scene
- voiceover: suggested narration text

Return ONLY valid JSON (no markdown):
[
  {
    "scene_number": 1,
    "duration": "3-5 seconds",
    "description": "detailed visual description",
    "text_overlay": "text to show",
    "transition": "fade/slide/zoom",
    "voiceover": "narration text"
  }
]`

func storyboardPrompt(prompt, videoType, style string) string {
	format := "a 60-90 second long-form video"
	if isReel(videoType) {
		format = "a 15-30 second Instagram/TikTok reel"
	}
	styleHint := ""
	if style != "" {
		styleHint = fmt.Sprintf("in %s style", style)
	}
	return fmt.Sprintf(storyboardTemplate, format, prompt, styleHint)
}

func sceneImagePrompt(scene transfer.Scene, videoType, style string) string {
	look := "Modern, eye-catching style"
	if style != "" {
		look = style + " style"
	}
	return fmt.Sprintf(`Professional social media video scene: %s.

Create a stunning, high-quality image for video use:
- Beautiful composition suitable for %s
- Professional lighting and colors
- Space for text overlay at top or bottom
- %s
- Optimized for vertical video format (9:16 ratio)
- High quality, Instagram/TikTok ready`, scene.Description, videoType, look)
}

func (s *storyboardService) Generate(ctx context.Context, prompt, videoType, style string) (resp *transfer.StoryboardResponse, err error) {
	defer func() { telemetry.ObserveGeneration("storyboard", err) }()

	if err := config.Require("LOVABLE_API_KEY", s.gateway.apiKey); err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrPromptRequired
	}

	slog.Info("generating video storyboard", "prompt", prompt, "video_type", videoType)

	out, err := s.gateway.prompt(ctx, "Storyboard generation", gatewayTextModel, storyboardPrompt(prompt, videoType, style))
	if err != nil {
		return nil, err
	}

	text := out.Text()
	if text == "" {
		return nil, errors.New("No storyboard returned from AI")
	}

	var scenes []transfer.Scene
	if err := decodeModelJSON(text, &scenes); err != nil {
		slog.Error("failed to parse storyboard", "text", text, "error", err)
		return nil, errors.New("Failed to parse storyboard JSON")
	}

	slog.Info("generating scene images", "scenes", len(scenes))
	for i := range scenes {
		if err := s.pace.Wait(ctx); err != nil {
			return nil, err
		}
		s.renderScene(ctx, &scenes[i], videoType, style)
	}

	estimated := "60-90 seconds"
	export := "16:9 or 9:16 video"
	if isReel(videoType) {
		estimated = "15-30 seconds"
		export = "9:16 vertical video for Reels/TikTok"
	}

	return &transfer.StoryboardResponse{
		VideoType:         videoType,
		TotalScenes:       len(scenes),
		EstimatedDuration: estimated,
		Scenes:            scenes,
		Instructions: fmt.Sprintf(`Import these %d images into CapCut or your video editor:
1. Add each scene image in sequence
2. Set the duration for each scene as specified
3. Add the text overlays provided
4. Apply the suggested transitions between scenes
5. Add voiceover or background music
6. Export as %s`, len(scenes), export),
		Prompt: prompt,
	}, nil
}

// renderScene attaches an image to the scene. A failed image is recorded on
// the scene and does not fail the storyboard.
func (s *storyboardService) renderScene(ctx context.Context, scene *transfer.Scene, videoType, style string) {
	start := time.Now()
	out, err := s.gateway.prompt(ctx, "Scene image generation", gatewayImageModel, sceneImagePrompt(*scene, videoType, style), "image", "text")
	if err != nil {
		slog.Error("failed to generate scene image", "scene", scene.SceneNumber, "error", err)
		scene.ImageURL = nil
		scene.Error = "Image generation failed"
		return
	}

	if url := out.ImageURL(); url != "" {
		scene.ImageURL = &url
	}
	slog.Info("generated scene image", "scene", scene.SceneNumber, "took", time.Since(start))
}
