package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/postgen/configs"
)

// MediaUploader stores generated media and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, key string, file []byte, contentType string) (string, error)
}

type R2Service struct {
	config cfg.R2
	load   func(ctx context.Context) (aws.Config, error)

	mu     sync.Mutex
	client *s3.Client
}

func NewR2Service(r2 cfg.R2) *R2Service {
	r := &R2Service{config: r2}
	r.load = r.loadConfig
	return r
}

func (r *R2Service) loadConfig(ctx context.Context) (aws.Config, error) {
	return config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.AccessKey, r.config.SecretKey, "")),
		config.WithRegion("auto"),
	)
}

// r2Client builds the client on first successful use. A failed load is
// retried on the next call.
func (r *R2Service) r2Client(ctx context.Context) (*s3.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}

	awsCfg, err := r.load(ctx)
	if err != nil {
		slog.Error("load r2 config", "error", err)
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	r.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.AccountID))
	})
	return r.client, nil
}

// Upload puts the object into the configured bucket and returns the public URL.
func (r *R2Service) Upload(ctx context.Context, key string, file []byte, contentType string) (string, error) {
	client, err := r.r2Client(ctx)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	if _, err := client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("upload %s to r2: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimRight(r.config.PublicURL, "/"), key), nil
}
