// Package config loads configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for the Krishi backend.
type Config struct {
	// HTTP server
	Port string `env:"KRISHI_PORT" envDefault:"8080" yaml:"port"`

	// SurrealDB connection
	SurrealDBURL       string `env:"SURREALDB_URL" envDefault:"ws://localhost:8000/rpc" yaml:"surrealdb_url"`
	SurrealDBNamespace string `env:"SURREALDB_NAMESPACE" envDefault:"krishi" yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `env:"SURREALDB_DATABASE" envDefault:"advisory" yaml:"surrealdb_database"`
	SurrealDBUser      string `env:"SURREALDB_USER" envDefault:"root" yaml:"surrealdb_user"`
	SurrealDBPass      string `env:"SURREALDB_PASS" envDefault:"root" yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `env:"SURREALDB_AUTH_LEVEL" envDefault:"root" yaml:"surrealdb_auth_level"`

	// LLM provider
	LLMProvider  string `env:"KRISHI_LLM_PROVIDER" envDefault:"googleai" yaml:"llm_provider"`
	LLMModel     string `env:"KRISHI_LLM_MODEL" envDefault:"gemini-2.0-flash" yaml:"llm_model"`
	GeminiAPIKey string `env:"GEMINI_API_KEY" yaml:"-"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY" yaml:"-"`
	OllamaHost   string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434" yaml:"ollama_host"`
	AWSRegion    string `env:"AWS_REGION" envDefault:"us-east-1" yaml:"aws_region"`

	// Speech (Deepgram)
	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY" yaml:"-"`

	// Image classifier (Roboflow)
	RoboflowAPIKey    string `env:"ROBOFLOW_API_KEY" yaml:"-"`
	RoboflowWorkspace string `env:"ROBOFLOW_WORKSPACE" envDefault:"sih-n7y20" yaml:"roboflow_workspace"`
	RoboflowWorkflow  string `env:"ROBOFLOW_WORKFLOW" envDefault:"plant-and-disease-workflow" yaml:"roboflow_workflow"`

	// Market / weather upstreams
	OGDAPIKey     string `env:"OGD_API_KEY" yaml:"-"`
	WeatherAPIKey string `env:"WEATHER_API_KEY" yaml:"-"`

	// Blob storage
	BlobBucket string `env:"KRISHI_BLOB_BUCKET" envDefault:"krishi-media" yaml:"blob_bucket"`

	// Firebase push notifications
	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH" envDefault:"firebase-creds.json" yaml:"firebase_credentials_path"`

	// Logging
	LogFile  string `env:"KRISHI_LOG_FILE" envDefault:"/tmp/krishi.log" yaml:"log_file"`
	LogLevel string `env:"KRISHI_LOG_LEVEL" envDefault:"INFO" yaml:"log_level"`

	// Conversation
	DefaultLanguage string `env:"KRISHI_DEFAULT_LANGUAGE" envDefault:"en" yaml:"default_language"`
	HistoryWindow   int    `env:"KRISHI_HISTORY_WINDOW" envDefault:"10" yaml:"history_window"`
}

// Load reads configuration from a .env file (if present), the process
// environment, and an optional YAML file named by KRISHI_CONFIG. The YAML
// file supplies defaults; environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}

	if path := os.Getenv("KRISHI_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Level parses the configured log level, defaulting to INFO.
func (c Config) Level() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
