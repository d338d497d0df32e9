package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPlatforms(t *testing.T) {
	assert.Equal(t, []string{"twitter", "instagram"}, MapPlatforms([]string{"X", "instagram", "twitter", "myspace"}))
	assert.Empty(t, MapPlatforms(nil))
	assert.Empty(t, MapPlatforms([]string{"tiktok"}))
}

func TestPublisherService_Publish(t *testing.T) {
	var got transfer.PublishRequest
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(transfer.PublishResponse{
			Status:  "success",
			ID:      "ayr-1",
			PostIDs: []transfer.PublishPostID{{Platform: "instagram", Status: "success", ID: "ig-9"}},
		})
	}))
	defer srv.Close()

	s := NewPublisherService(config.Config{PublisherAPIKey: "pk", PublisherBaseURL: srv.URL + "/"})
	resp, err := s.Publish(context.Background(), transfer.PublishRequest{
		Post:      "hello",
		Platforms: []string{"instagram"},
		MediaURLs: []string{"https://cdn.example.com/a.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/post", path)
	assert.Equal(t, "Bearer pk", auth)
	assert.Equal(t, "hello", got.Post)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, got.MediaURLs)
	assert.Equal(t, "ig-9", resp.PostIDs[0].ID)
}

func TestPublisherService_Errors(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "down", status)
			return
		}
		_ = json.NewEncoder(w).Encode(transfer.PublishResponse{
			Status: "error",
			Errors: []transfer.PublishError{{Platform: "twitter", Code: 110, Message: "Duplicate post"}},
		})
	}))
	defer srv.Close()

	s := NewPublisherService(config.Config{PublisherAPIKey: "pk", PublisherBaseURL: srv.URL})
	req := transfer.PublishRequest{Post: "hello", Platforms: []string{"twitter"}}

	_, err := s.Publish(context.Background(), req)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Duplicate post", rejected.Message)

	status = http.StatusBadGateway
	_, err = s.Publish(context.Background(), req)
	assert.EqualError(t, err, "Publishing failed: 502")

	_, err = s.Publish(context.Background(), transfer.PublishRequest{Post: "hello"})
	assert.ErrorIs(t, err, ErrNoPlatforms)

	_, err = NewPublisherService(config.Config{}).Publish(context.Background(), req)
	assert.EqualError(t, err, "PUBLISHER_API_KEY not configured")
}

func TestPublisherService_BreakerOpens(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewPublisherService(config.Config{PublisherAPIKey: "pk", PublisherBaseURL: srv.URL})
	req := transfer.PublishRequest{Post: "hello", Platforms: []string{"twitter"}}

	for i := 0; i < 5; i++ {
		_, err := s.Publish(context.Background(), req)
		require.Error(t, err)
	}
	_, err := s.Publish(context.Background(), req)
	assert.ErrorContains(t, err, "publisher unavailable")
	assert.Equal(t, 5, calls)
}
