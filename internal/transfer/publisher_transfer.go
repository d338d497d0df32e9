package transfer

type PublishRequest struct {
	Post      string            `json:"post"`
	Platforms []string          `json:"platforms"`
	MediaURLs []string          `json:"mediaUrls,omitempty"`
	Captions  map[string]string `json:"platformPosts,omitempty"`
}

type PublishPostID struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
	ID       string `json:"id"`
	PostURL  string `json:"postUrl"`
}

type PublishError struct {
	Platform string `json:"platform"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
}

type PublishResponse struct {
	Status  string          `json:"status"`
	ID      string          `json:"id"`
	PostIDs []PublishPostID `json:"postIds"`
	Errors  []PublishError  `json:"errors"`
}
