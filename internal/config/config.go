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
	Pipeline PipelineConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	NatsURL     string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	EmbedTopic   string // Embedding topic
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini" or "ollama"
	EmbeddingDimension int    // must match the provider's output exactly
	OllamaBaseURL      string
	OllamaModel        string
	SpeechModel        string
	ImageModel         string
}

type PipelineConfig struct {
	MaxRetries       int
	BaseRetryDelay   time.Duration
	RequestTimeout   time.Duration
	CacheCapacity    int
	RelatedCacheTTL  time.Duration
	ModerationPrefix int // transcript chars fed into the moderator
}

type StorageConfig struct {
	Dir string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "app.log"),
			NatsURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			EmbedTopic:   getEnv("EMBED_NOTE_TOPIC_NAME", "EMBED_NOTE_TRANSCRIPT"),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 768),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			SpeechModel:        getEnv("SPEECH_MODEL", "gemini-1.5-flash"),
			ImageModel:         getEnv("IMAGE_MODEL", "imagen-3.0-generate-001"),
		},
		Pipeline: PipelineConfig{
			MaxRetries:       getEnvAsInt("EMBEDDING_MAX_RETRIES", 3),
			BaseRetryDelay:   getEnvAsDuration("EMBEDDING_BASE_RETRY_DELAY", time.Second),
			RequestTimeout:   getEnvAsDuration("PROVIDER_REQUEST_TIMEOUT", 30*time.Second),
			CacheCapacity:    getEnvAsInt("EMBEDDING_CACHE_CAPACITY", 1000),
			RelatedCacheTTL:  getEnvAsDuration("RELATED_NOTES_CACHE_TTL", 5*time.Minute),
			ModerationPrefix: getEnvAsInt("MODERATION_PREFIX_CHARS", 1000),
		},
		Storage: StorageConfig{
			Dir: getEnv("STORAGE_DIR", "storage"),
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
