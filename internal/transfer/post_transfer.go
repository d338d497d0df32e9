package transfer

type ScheduleRequest struct {
	Prompt            string            `json:"prompt"`
	Style             string            `json:"style"`
	ScheduleTime      string            `json:"schedule_time"`
	GeneratedMediaRef string            `json:"generated_media_ref,omitempty"`
	Captions          map[string]string `json:"captions,omitempty"`
	SelectedPlatforms []string          `json:"selected_platforms,omitempty"`
}

const (
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

type RunResult struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Details string `json:"details"`
}

type RunSummary struct {
	Processed int         `json:"processed"`
	Skipped   int         `json:"skipped"`
	Results   []RunResult `json:"results"`
}
