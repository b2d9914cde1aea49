package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/monicazzy516/desk-ai/internal/audio"
	"github.com/monicazzy516/desk-ai/internal/config"
	"github.com/monicazzy516/desk-ai/internal/metrics"
	"github.com/monicazzy516/desk-ai/internal/pipeline"
	"github.com/monicazzy516/desk-ai/internal/reply"
	"github.com/monicazzy516/desk-ai/internal/server"
	"github.com/monicazzy516/desk-ai/internal/synthesis"
	"github.com/monicazzy516/desk-ai/internal/transcription"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "desk-ai"
	serviceVersion    = "1.0.0"
)

func main() {
	configPath := pflag.String("config", defaultConfigPath, "Path to configuration file")
	envPath := pflag.String("env", ".env", "Path to environment file")
	pflag.Parse()

	// Best effort: a missing .env just means the key comes from the
	// environment or the config file
	if err := godotenv.Load(*envPath); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Failed to load env file %s: %v\n", *envPath, err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	logger.Info("Configuration loaded",
		slog.String("address", cfg.Server.Address),
		slog.Int("port", cfg.Server.Port),
		slog.Int("default_sample_rate", cfg.Audio.DefaultSampleRate),
		slog.String("upload_dir", cfg.Audio.UploadDir),
		slog.String("chat_model", cfg.OpenAI.ChatModel),
		slog.String("stt_model", cfg.OpenAI.STTModel),
		slog.Bool("synthesis_enabled", cfg.Synthesis.Enabled),
		slog.Bool("api_key_set", cfg.OpenAI.APIKey != ""),
		slog.String("log_level", cfg.Logging.Level),
	)

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, all engine stages will return empty results")
	}

	appMetrics := metrics.NewMetrics()

	phrases := cfg.Filter.Phrases
	if len(phrases) == 0 {
		phrases = transcription.DefaultPhrases()
	}
	filter := transcription.NewFilter(phrases, cfg.Filter.MinDuration, logger)

	stt := transcription.NewClient(transcription.Config{
		APIKey:   cfg.OpenAI.APIKey,
		Model:    cfg.OpenAI.STTModel,
		Language: cfg.OpenAI.Language,
	}, filter, logger)

	llm := reply.NewClient(reply.Config{
		APIKey:    cfg.OpenAI.APIKey,
		Model:     cfg.OpenAI.ChatModel,
		MaxTokens: cfg.OpenAI.MaxReplyTokens,
	}, logger)

	tts := synthesis.NewClient(synthesis.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.TTSModel,
		Voice:  cfg.OpenAI.Voice,
	}, logger)

	store := audio.NewStore(cfg.Audio.UploadDir, logger)

	p := pipeline.New(store, stt, llm, tts, pipeline.Config{
		StageTimeout:        cfg.OpenAI.GetCallTimeoutDuration(),
		SynthesisEnabled:    cfg.Synthesis.Enabled,
		SynthesisSampleRate: cfg.Synthesis.SampleRate,
	}, logger, appMetrics)

	httpServer := server.NewHTTPServer(cfg.Server, logger, cfg, p, appMetrics)

	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("http_address", fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)),
	)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	logger.Info("Service stopped")
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
			Level:     level,
			AddSource: level == slog.LevelDebug,
		})
	default:
		handler = tint.NewHandler(output, &tint.Options{
			Level:      level,
			AddSource:  level == slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		})
	}

	return slog.New(handler)
}
