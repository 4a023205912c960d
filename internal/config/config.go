package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Auth      AuthConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Search    SearchConfig
	Pipeline  PipelineConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host           string
	Port           int
	Email          string
	Password       string
	SenderName     string
	AlertRecipient string
}

type AuthConfig struct {
	JWTSecret     string
	RequireAPIKey bool
}

type LLMConfig struct {
	Provider string // "openai" or "ollama"
	Model    string
	BaseURL  string
	APIKey   string
}

type EmbeddingConfig struct {
	Provider string // "openai" or "ollama"
	Model    string
	BaseURL  string
	APIKey   string
}

type SearchConfig struct {
	Provider       string // "google" or "mock"
	GoogleAPIKey   string
	GoogleEngineId string
}

type PipelineConfig struct {
	VectorSearchLimit     int
	VectorSearchThreshold float64
	ExternalSearchLimit   int
	SufficientConfidence  float64
	MinRelevantInfo       int
	SkipRewriteBelow      int
	InteractionTopic      string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:           getEnv("SMTP_HOST", ""),
			Port:           getEnvAsInt("SMTP_PORT", 587),
			Email:          getEnv("SMTP_EMAIL", ""),
			Password:       getEnv("SMTP_PASSWORD", ""),
			SenderName:     getEnv("SMTP_SENDER_NAME", "AI Orchestrator"),
			AlertRecipient: getEnv("SMTP_ALERT_RECIPIENT", ""),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			RequireAPIKey: getEnvAsBool("REQUIRE_API_KEY", false),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", "openai"),
			Model:    getEnv("LLM_MODEL", "gpt-4o-mini"),
			BaseURL:  getEnv("LLM_BASE_URL", ""),
			APIKey:   getEnv("LLM_API_KEY", ""),
		},
		Embedding: EmbeddingConfig{
			Provider: getEnv("EMBEDDING_PROVIDER", "openai"),
			Model:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			APIKey:   getEnv("EMBEDDING_API_KEY", ""),
		},
		Search: SearchConfig{
			Provider:       getEnv("SEARCH_PROVIDER", "mock"),
			GoogleAPIKey:   getEnv("GOOGLE_SEARCH_API_KEY", ""),
			GoogleEngineId: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		},
		Pipeline: PipelineConfig{
			VectorSearchLimit:     getEnvAsInt("VECTOR_SEARCH_LIMIT", 5),
			VectorSearchThreshold: getEnvAsFloat("VECTOR_SEARCH_THRESHOLD", 0.7),
			ExternalSearchLimit:   getEnvAsInt("EXTERNAL_SEARCH_LIMIT", 3),
			SufficientConfidence:  getEnvAsFloat("SUFFICIENT_CONFIDENCE", 0.85),
			MinRelevantInfo:       getEnvAsInt("MIN_RELEVANT_INFO", 2),
			SkipRewriteBelow:      getEnvAsInt("SKIP_REWRITE_BELOW", 0),
			InteractionTopic:      getEnv("INTERACTION_TOPIC_NAME", "STORE_INTERACTION"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
