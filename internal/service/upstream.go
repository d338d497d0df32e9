package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/maheshrc27/postgen/internal/transfer"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// postJSON sends body as JSON with a bearer key. Non-2xx answers are logged
// with their body and returned as an UpstreamError of the given kind.
func postJSON(ctx context.Context, client *http.Client, url, apiKey, kind string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request error: %w", strings.ToLower(kind), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		errorText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Error("upstream provider error", "kind", kind, "status", resp.StatusCode, "body", string(errorText))
		return nil, &UpstreamError{Kind: kind, Status: resp.StatusCode}
	}

	return resp, nil
}

type gatewayClient struct {
	url    string
	apiKey string
	client *http.Client
}

const (
	gatewayTextModel  = "google/gemini-2.5-flash"
	gatewayImageModel = "google/gemini-2.5-flash-image-preview"
)

func (g *gatewayClient) complete(ctx context.Context, kind string, req transfer.GatewayRequest) (*transfer.GatewayResponse, error) {
	resp, err := postJSON(ctx, g.client, g.url, g.apiKey, kind, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out transfer.GatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", strings.ToLower(kind), err)
	}
	return &out, nil
}

func (g *gatewayClient) prompt(ctx context.Context, kind, model, content string, modalities ...string) (*transfer.GatewayResponse, error) {
	return g.complete(ctx, kind, transfer.GatewayRequest{
		Model:      model,
		Messages:   []transfer.GatewayMessage{{Role: "user", Content: content}},
		Modalities: modalities,
	})
}

var fencePattern = regexp.MustCompile("```(?:json)?\\n?")

// decodeModelJSON strips markdown code fences the model sometimes wraps its
// answer in and decodes the remainder into v.
func decodeModelJSON(text string, v any) error {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	return json.Unmarshal([]byte(cleaned), v)
}

// styleSuffix renders the style hint appended to prompts. Realistic is the
// model's default and is left out.
func styleSuffix(style, format string) string {
	if style == "" || style == "Realistic" {
		return ""
	}
	return fmt.Sprintf(format, style)
}
