package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"secdocs/internal/db"
)

// Store backends for document persistence and similarity search.
const (
	StoreBackendRedis  = "redis"
	StoreBackendChroma = "chroma"
)

// OpenAIConfig holds connection settings for the OpenAI-compatible provider.
type OpenAIConfig struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// RetrievalConfig tunes the retrieval pipeline.
type RetrievalConfig struct {
	TopK         int
	EmbeddingDim int
}

// Config is the root application configuration, read once at startup.
type Config struct {
	ListenAddr   string
	StoreBackend string
	Collection   string
	Redis        db.RedisConfig
	Chroma       db.ChromaDBConfig
	OpenAI       OpenAIConfig
	Retrieval    RetrievalConfig
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   envString("LISTEN_ADDR", ":8080"),
		StoreBackend: envString("STORE_BACKEND", StoreBackendRedis),
		Collection:   envString("CHROMA_COLLECTION", "documents"),
		Redis:        loadRedisConfig(),
		Chroma:       loadChromaConfig(),
		OpenAI: OpenAIConfig{
			BaseURL:        envString("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			EmbeddingModel: envString("OPENAI_EMBEDDING_MODEL", "text-embedding-ada-002"),
			ChatModel:      envString("OPENAI_CHAT_MODEL", "gpt-4o"),
			Timeout:        envDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Retrieval: RetrievalConfig{
			TopK:         envInt("RETRIEVAL_TOP_K", 3),
			EmbeddingDim: envInt("EMBEDDING_DIM", 1536),
		},
	}

	return cfg
}

func loadRedisConfig() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}
	config.Port = envInt("REDIS_PORT", config.Port)
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}
	config.DB = envInt("REDIS_DB", config.DB)
	config.PoolSize = envInt("REDIS_POOL_SIZE", config.PoolSize)

	return config
}

func loadChromaConfig() db.ChromaDBConfig {
	config := db.ChromaDBConfig{
		Host:     "localhost",
		Port:     8000,
		Tenant:   "default_tenant",
		Database: "default_database",
		Timeout:  30 * time.Second,
	}

	if host := os.Getenv("CHROMA_HOST"); host != "" {
		config.Host = host
	}
	config.Port = envInt("CHROMA_PORT", config.Port)
	if tenant := os.Getenv("CHROMA_TENANT"); tenant != "" {
		config.Tenant = tenant
	}
	if database := os.Getenv("CHROMA_DATABASE"); database != "" {
		config.Database = database
	}

	return config
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
