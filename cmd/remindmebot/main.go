package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/roybase/remindmebot/internal/bot"
	"github.com/roybase/remindmebot/internal/genai"
	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/store"
	"github.com/roybase/remindmebot/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for RemindMeBot state data
	DefaultStateDir = "/var/lib/remindmebot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "remindmebot.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if *flags.telegramToken == "" {
		slog.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}
	if *flags.openaiKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}

	tgOpts := buildTelegramOptions(flags)
	storeOpts := buildStoreOptions(flags)
	genaiOpts := buildGenAIOptions(flags)

	slog.Info("Bootstrapping RemindMeBot with configured modules")
	slog.Debug("Final configuration", "dsn_set", *flags.dbDSN != "", "model", *flags.model)
	if err := bot.Run(tgOpts, storeOpts, genaiOpts); err != nil {
		slog.Error("RemindMeBot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("RemindMeBot exited successfully")
}

// Config holds environment configuration
type Config struct {
	TelegramToken string
	OpenAIKey     string
	BaseURL       string
	Model         string
	DatabaseURL   string
	StateDir      string
}

// Flags holds command line flag values
type Flags struct {
	telegramToken *string
	openaiKey     *string
	baseURL       *string
	model         *string
	dbDSN         *string
}

// initializeLogger sets up structured logging. Debug level is opt-in via
// REMINDMEBOT_DEBUG.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("REMINDMEBOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		BaseURL:       os.Getenv("OPENAI_BASE_URL"),
		Model:         os.Getenv("OPENAI_MODEL"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		StateDir:      os.Getenv("REMINDMEBOT_STATE_DIR"),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No REMINDMEBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"TELEGRAM_BOT_TOKEN_SET", config.TelegramToken != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_BASE_URL", config.BaseURL,
		"OPENAI_MODEL", config.Model,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"REMINDMEBOT_STATE_DIR", config.StateDir)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		telegramToken: flag.String("telegram-token", config.TelegramToken, "Telegram bot token (overrides $TELEGRAM_BOT_TOKEN)"),
		openaiKey:     flag.String("openai-api-key", config.OpenAIKey, "language-model API key (overrides $OPENAI_API_KEY)"),
		baseURL:       flag.String("openai-base-url", config.BaseURL, "language-model endpoint base URL (overrides $OPENAI_BASE_URL)"),
		model:         flag.String("model", config.Model, "completion model name (overrides $OPENAI_MODEL)"),
		dbDSN:         flag.String("db-dsn", config.DatabaseURL, "database DSN, SQLite path or Postgres URL (overrides $DATABASE_URL)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"telegramTokenSet", *flags.telegramToken != "",
		"openaiKeySet", *flags.openaiKey != "",
		"baseURL", *flags.baseURL,
		"model", *flags.model,
		"dbDSN_set", *flags.dbDSN != "")

	return flags
}

// buildTelegramOptions constructs Telegram transport options
func buildTelegramOptions(flags Flags) []messaging.TelegramOption {
	return []messaging.TelegramOption{messaging.WithToken(*flags.telegramToken)}
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	genaiOpts := []genai.Option{genai.WithAPIKey(*flags.openaiKey)}
	if *flags.baseURL != "" {
		genaiOpts = append(genaiOpts, genai.WithBaseURL(*flags.baseURL))
	}
	if *flags.model != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.model))
	}
	return genaiOpts
}
