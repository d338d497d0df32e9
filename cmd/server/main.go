package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/api"
	"github.com/maheshrc27/postgen/internal/api/handlers"
	"github.com/maheshrc27/postgen/internal/api/middleware"
	job "github.com/maheshrc27/postgen/internal/jobs"
	"github.com/maheshrc27/postgen/internal/queue"
	"github.com/maheshrc27/postgen/internal/ratelimit"
	"github.com/maheshrc27/postgen/internal/repository"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	setupLogger(cfg.LogLevel)

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}
	if err := repository.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()

	postRepo := repository.NewScheduledPostRepository(db)
	historyRepo := repository.NewPostingHistoryRepository(db)

	var media service.MediaUploader
	if cfg.R2.Enabled() {
		media = service.NewR2Service(cfg.R2)
	} else {
		slog.Warn("R2 storage not configured, generated images are returned inline")
	}

	var generator service.TextGenerator
	if cfg.GoogleAIAPIKey != "" {
		gemini, err := service.NewGeminiGenerator(context.Background(), cfg.GoogleAIAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()
		generator = gemini
	}

	imageService := service.NewImageService(*cfg, media)
	captionService := service.NewCaptionService(*cfg)
	videoService := service.NewVideoService(*cfg, generator)
	storyboardService := service.NewStoryboardService(*cfg)
	publisherService := service.NewPublisherService(*cfg)
	composerService := service.NewComposerService(postRepo, historyRepo, queue.NewClient(client))

	runner, err := job.NewRunner(cfg.Runner, postRepo, historyRepo, imageService, publisherService)
	if err != nil {
		log.Fatalf("Invalid runner configuration: %v", err)
	}

	server := &api.Server{
		Auth:       middleware.NewAuthMiddleware(*cfg),
		RateLimit:  middleware.RateLimit(ratelimit.NewTokenBucket(redisClient, cfg.RateLimitCapacity, cfg.RateLimitRefill)),
		Generation: handlers.NewGenerationHandler(imageService, captionService, videoService, storyboardService),
		Posts:      handlers.NewScheduledPostHandler(composerService),
		Runner:     handlers.NewRunnerHandler(runner),
		AccessLog:  true,
	}
	app := server.App()

	if cfg.SecretKey == "" {
		slog.Warn("SECRET_KEY not set, /api is unauthenticated")
	}

	// cron sweep picks up rows whose queued task was lost or whose retry is due
	c := cron.New()
	if err := c.AddFunc(cfg.Runner.SweepSpec, runner.Sweep); err != nil {
		log.Fatalf("Invalid sweep schedule %q: %v", cfg.Runner.SweepSpec, err)
	}
	c.Start()
	defer c.Stop()

	worker := queue.NewQueue(runner)
	asynqServer := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})
	go func() {
		slog.Info("starting the asynq server")
		if err := asynqServer.Run(worker.Mux()); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("server is running", "port", cfg.Port, "runner_mode", runner.Mode())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
	asynqServer.Shutdown()
	slog.Info("server shutdown complete")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}
