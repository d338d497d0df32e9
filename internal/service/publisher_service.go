package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/models"
	"github.com/maheshrc27/postgen/internal/telemetry"
	"github.com/maheshrc27/postgen/internal/transfer"
	"github.com/sony/gobreaker"
)

type PublisherService interface {
	Publish(ctx context.Context, req transfer.PublishRequest) (*transfer.PublishResponse, error)
}

type publisherService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewPublisherService(cfg config.Config) PublisherService {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "Publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A post the provider rejected is not a provider outage.
			var rejected *RejectedError
			return err == nil || errors.As(err, &rejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			if to == gobreaker.StateOpen {
				telemetry.PublisherBreaker.Set(1)
			} else {
				telemetry.PublisherBreaker.Set(0)
			}
		},
	})

	return &publisherService{
		apiKey:  cfg.PublisherAPIKey,
		baseURL: strings.TrimRight(cfg.PublisherBaseURL, "/"),
		client:  newHTTPClient(cfg.UpstreamTimeout),
		breaker: breaker,
	}
}

// RejectedError is returned when the provider answered but refused the post.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "publishing rejected: " + e.Message
}

// publisherPlatforms maps internal platform ids to the provider's ids.
var publisherPlatforms = map[string]string{
	models.PlatformInstagram: "instagram",
	models.PlatformFacebook:  "facebook",
	models.PlatformTwitter:   "twitter",
	models.PlatformLinkedIn:  "linkedin",
}

// MapPlatforms translates and de-duplicates platform ids, dropping the ones
// the provider does not know.
func MapPlatforms(platforms []string) []string {
	seen := make(map[string]struct{}, len(platforms))
	var mapped []string
	for _, p := range platforms {
		normalized, ok := models.NormalizePlatform(p)
		if !ok {
			continue
		}
		target, ok := publisherPlatforms[normalized]
		if !ok {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		mapped = append(mapped, target)
	}
	return mapped
}

func (s *publisherService) Publish(ctx context.Context, req transfer.PublishRequest) (*transfer.PublishResponse, error) {
	if err := config.Require("PUBLISHER_API_KEY", s.apiKey); err != nil {
		return nil, err
	}
	if len(req.Platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.publish(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("publisher unavailable: %w", err)
		}
		return nil, err
	}
	return result.(*transfer.PublishResponse), nil
}

func (s *publisherService) publish(ctx context.Context, req transfer.PublishRequest) (*transfer.PublishResponse, error) {
	resp, err := postJSON(ctx, s.client, s.baseURL+"/post", s.apiKey, "Publishing", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out transfer.PublishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("error parsing publish response: %w", err)
	}

	if out.Status == "error" {
		msg := "provider returned error status"
		if len(out.Errors) > 0 {
			msg = out.Errors[0].Message
		}
		return nil, &RejectedError{Message: msg}
	}
	return &out, nil
}
