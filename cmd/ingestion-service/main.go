package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"biotech-funding-tracker/internal/ingestor/config"
	"biotech-funding-tracker/internal/ingestor/repository"
	"biotech-funding-tracker/internal/ingestor/service"
	"biotech-funding-tracker/pkg/logger"
	"biotech-funding-tracker/pkg/postgres"
	"biotech-funding-tracker/pkg/redis"
	"biotech-funding-tracker/pkg/telegram"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs one ingestion batch and exits",
	Run: func(cmd *cobra.Command, args []string) {
		runIngestion(false)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs ingestion batches on the configured cron schedule",
	Run: func(cmd *cobra.Command, args []string) {
		runIngestion(true)
	},
}

func runIngestion(scheduled bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Ingestion Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis. The seen-article cache is optional, so a missing
	// Redis is downgraded to a warning.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient, err = redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Warn("Failed to initialize Redis, seen-article cache disabled", logger.ErrorField(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Initialize AI provider. An empty provider is allowed; extraction then
	// runs on the heuristic fallback only.
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		repo, err := repository.NewGeminiAIRepository(cfg.Gemini, appLogger, genAiClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI repository", logger.ErrorField(err))
		}
		aiRepo = repo
	case "openai":
		aiRepo = repository.NewOpenAIRepository(cfg.OpenAI, appLogger)
	case "":
		appLogger.Warn("No AI provider configured, extraction uses heuristic fallback only")
	default:
		appLogger.Fatal("Invalid AI provider specified in config", logger.StringField("provider", cfg.AI.Provider))
	}

	// Initialize Telegram notifier (optional)
	var notifier telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Warn("Failed to initialize Telegram notifier, digest disabled", logger.ErrorField(err))
			notifier = nil
		}
	}

	// Initialize repositories and services
	fundingRepo := repository.NewFundingEventRepository(db.DB)
	runRepo := repository.NewIngestionRunRepository(db.DB)
	fetcher := service.NewFeedFetcher(&cfg.Ingestion, appLogger)
	extractor := service.NewExtractor(aiRepo, appLogger, cfg.AI.Timeout)
	ingestionSvc := service.NewIngestionService(cfg, appLogger, fetcher, extractor, fundingRepo, runRepo, redisClient, notifier)

	if !scheduled {
		if _, err := ingestionSvc.Run(ctx); err != nil {
			appLogger.Fatal("Ingestion run failed", logger.ErrorField(err))
		}
		return
	}

	if cfg.Ingestion.Schedule == "" {
		appLogger.Fatal("serve requires ingestion.schedule to be set")
	}

	c := cron.New()
	_, err = c.AddFunc(cfg.Ingestion.Schedule, func() {
		if _, err := ingestionSvc.Run(ctx); err != nil {
			appLogger.Error("Scheduled ingestion run failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		appLogger.Fatal("Invalid ingestion schedule", logger.ErrorField(err))
	}
	c.Start()

	appLogger.Info("Ingestion scheduler started", logger.StringField("schedule", cfg.Ingestion.Schedule))

	<-ctx.Done()

	appLogger.Info("Shutting down ingestion service...")
	<-c.Stop().Done()
	appLogger.Info("Ingestion service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "ingestion-service"}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-ingestor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(runCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ingestion-service CLI: %s\n", err)
		os.Exit(1)
	}
}
