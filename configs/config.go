package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Enabled reports whether generated media should be pushed to R2 instead of
// being returned inline as data URIs.
func (r R2) Enabled() bool {
	return r.AccountID != "" && r.AccessKey != "" && r.SecretKey != "" && r.BucketName != "" && r.PublicURL != ""
}

type Runner struct {
	Mode            string
	BatchSize       int
	Lease           time.Duration
	SweepSpec       string
	RetireOnSuccess bool
	MaxAttempts     int
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
}

type Config struct {
	Port                string
	LogLevel            string
	PostgresURI         string
	RedisURI            string
	SecretKey           string
	HuggingFaceToken    string
	HuggingFaceModelURL string
	GatewayAPIKey       string
	GatewayURL          string
	GoogleAIAPIKey      string
	VideoPlaceholderURL string
	PublisherAPIKey     string
	PublisherBaseURL    string
	UpstreamTimeout     time.Duration
	SceneInterval       time.Duration
	RateLimitCapacity   int
	RateLimitRefill     float64
	R2                  R2
	Runner              Runner
}

// MissingKeyError is returned when a required secret is absent from the
// environment. Handlers surface it as a 500 naming the key.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s not configured", e.Key)
}

// Require fails with a MissingKeyError when value is empty.
func Require(key, value string) error {
	if value == "" {
		return &MissingKeyError{Key: key}
	}
	return nil
}

func LoadConfig() *Config {
	return &Config{
		Port:                getEnv("PORT", "3000"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", "localhost:6379"),
		SecretKey:           getEnv("SECRET_KEY", ""),
		HuggingFaceToken:    getEnv("HUGGING_FACE_ACCESS_TOKEN", ""),
		HuggingFaceModelURL: getEnv("HUGGING_FACE_MODEL_URL", "https://api-inference.huggingface.co/models/black-forest-labs/FLUX.1-schnell"),
		GatewayAPIKey:       getEnv("LOVABLE_API_KEY", ""),
		GatewayURL:          getEnv("AI_GATEWAY_URL", "https://ai.gateway.lovable.dev/v1/chat/completions"),
		GoogleAIAPIKey:      getEnv("GOOGLE_AI_API_KEY", ""),
		VideoPlaceholderURL: getEnv("VIDEO_PLACEHOLDER_URL", "https://storage.googleapis.com/gtv-videos-bucket/sample/BigBuckBunny.mp4"),
		PublisherAPIKey:     getEnv("PUBLISHER_API_KEY", ""),
		PublisherBaseURL:    getEnv("PUBLISHER_BASE_URL", "https://app.ayrshare.com/api"),
		UpstreamTimeout:     getEnvDuration("UPSTREAM_TIMEOUT", 2*time.Minute),
		SceneInterval:       getEnvDuration("STORYBOARD_SCENE_INTERVAL", time.Second),
		RateLimitCapacity:   getEnvInt("RATE_LIMIT_CAPACITY", 20),
		RateLimitRefill:     getEnvFloat("RATE_LIMIT_REFILL_PER_SEC", 0.2),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Runner: Runner{
			Mode:            getEnv("RUNNER_MODE", "stamp"),
			BatchSize:       getEnvInt("RUNNER_BATCH_SIZE", 100),
			Lease:           getEnvDuration("RUNNER_LEASE", 5*time.Minute),
			SweepSpec:       getEnv("RUNNER_SWEEP_SPEC", "@every 1m"),
			RetireOnSuccess: getEnvBool("RUNNER_RETIRE_ON_SUCCESS", true),
			MaxAttempts:     getEnvInt("RETRY_MAX_ATTEMPTS", 5),
			BackoffInitial:  getEnvDuration("RETRY_BACKOFF_INITIAL", 30*time.Second),
			BackoffMax:      getEnvDuration("RETRY_BACKOFF_MAX", time.Hour),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
