package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Cache    CacheConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	InvalidationTopic  string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type APIKeys struct {
	OpenAI string
}

type AIConfig struct {
	LLMProvider      string // "ollama", "openai", "langchain-ollama"
	LLMModel         string
	BaseURL          string
	ConnectionType   string // exposed to prompts as the active connection type
	ChatMessageLimit int
	StreamTimeout    time.Duration // 0 disables the bound
	WordsTokenBudget int           // 0 disables transcript trimming
	TokenEncoding    string
}

type CacheConfig struct {
	SessionListTTL time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string // OTLP HTTP, host:port
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "logs/websocket.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:1420"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			InvalidationTopic:  getEnv("INVALIDATION_TOPIC_NAME", "SESSION_CACHE_INVALIDATION"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:         getEnv("LLM_MODEL", "llama3"),
			BaseURL:          getEnv("LLM_BASE_URL", "http://localhost:11434"),
			ConnectionType:   getEnv("LLM_CONNECTION_TYPE", "Local"),
			ChatMessageLimit: getEnvAsInt("CHAT_MESSAGE_LIMIT", 14),
			StreamTimeout:    getEnvAsDuration("AI_STREAM_TIMEOUT", 0),
			WordsTokenBudget: getEnvAsInt("AI_WORDS_TOKEN_BUDGET", 0),
			TokenEncoding:    getEnv("AI_TOKEN_ENCODING", "cl100k_base"),
		},
		Cache: CacheConfig{
			SessionListTTL: getEnvAsDuration("SESSION_LIST_CACHE_TTL", 5*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-meetnotes"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
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
