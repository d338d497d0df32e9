package transfer

type GenerationRequest struct {
	Prompt    string `json:"prompt"`
	Style     string `json:"style,omitempty"`
	VideoType string `json:"videoType,omitempty"`
}

type ImageResponse struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type Captions struct {
	Instagram string `json:"instagram"`
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
}

type CaptionsResponse struct {
	Captions Captions `json:"captions"`
	Prompt   string   `json:"prompt"`
}

type VideoResponse struct {
	VideoURL    string `json:"videoUrl"`
	Description string `json:"description"`
	Message     string `json:"message"`
	Prompt      string `json:"prompt"`
}

type Scene struct {
	SceneNumber int     `json:"scene_number"`
	Duration    string  `json:"duration"`
	Description string  `json:"description"`
	TextOverlay string  `json:"text_overlay"`
	Transition  string  `json:"transition"`
	Voiceover   string  `json:"voiceover"`
	ImageURL    *string `json:"image_url"`
	Error       string  `json:"error,omitempty"`
}

type StoryboardResponse struct {
	VideoType         string  `json:"videoType"`
	TotalScenes       int     `json:"totalScenes"`
	EstimatedDuration string  `json:"estimatedDuration"`
	Scenes            []Scene `json:"scenes"`
	Instructions      string  `json:"instructions"`
	Prompt            string  `json:"prompt"`
}

type EnhanceRequest struct {
	Prompt string `json:"prompt"`
}

// Upstream AI gateway (OpenAI compatible chat completions).

type GatewayMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GatewayRequest struct {
	Model      string           `json:"model"`
	Messages   []GatewayMessage `json:"messages"`
	Modalities []string         `json:"modalities,omitempty"`
}

type GatewayResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

// Text returns the first choice's content, or "".
func (r *GatewayResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// ImageURL returns the first image attached to the first choice, or "".
func (r *GatewayResponse) ImageURL() string {
	if len(r.Choices) == 0 || len(r.Choices[0].Message.Images) == 0 {
		return ""
	}
	return r.Choices[0].Message.Images[0].ImageURL.URL
}

// Upstream Hugging Face inference request. The response is raw image bytes.
type HuggingFaceRequest struct {
	Inputs string `json:"inputs"`
}
