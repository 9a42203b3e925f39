package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	VectorStore VectorStoreConfig `mapstructure:"vector_store"`
	Embedding   EmbeddingConfig
	TextGen     TextGenConfig `mapstructure:"textgen"`
	Search      SearchConfig
	RateLimit   RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VectorStoreConfig selects and configures the deal store backend
type VectorStoreConfig struct {
	Type      string        `mapstructure:"type"` // "memory" or "qdrant"
	URL       string        `mapstructure:"url"`
	APIKey    string        `mapstructure:"api_key"`
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// EmbeddingConfig holds the embeddings collaborator configuration
type EmbeddingConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// TextGenConfig holds the text-generation collaborator configuration.
// Narration is optional: with an empty API key the system returns
// structured answers without prose.
type TextGenConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Model             string        `mapstructure:"model"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Temperature       float64       `mapstructure:"temperature"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// SearchConfig holds retrieval and comparison tuning
type SearchConfig struct {
	TopKPerStore int     `mapstructure:"top_k_per_store"`
	GlobalTopN   int     `mapstructure:"global_top_n"`
	ScoreEpsilon float64 `mapstructure:"score_epsilon"`
	Debug        bool    `mapstructure:"debug"`
}

// RateLimitConfig holds API rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/dealscope/")

	// Environment variable settings
	v.SetEnvPrefix("DEALSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Vector store defaults
	v.SetDefault("vector_store.type", "qdrant")
	v.SetDefault("vector_store.url", "http://localhost:6333")
	v.SetDefault("vector_store.api_key", "")
	v.SetDefault("vector_store.dimension", 1536)
	v.SetDefault("vector_store.timeout", "15s")

	// Embedding defaults. API keys default to empty so the env bindings
	// exist; validate decides whether empty is acceptable.
	v.SetDefault("embedding.base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.timeout", "30s")
	v.SetDefault("embedding.requests_per_second", 5.0)

	// Text generation defaults
	v.SetDefault("textgen.base_url", "https://api.openai.com/v1")
	v.SetDefault("textgen.api_key", "")
	v.SetDefault("textgen.model", "gpt-4o-mini")
	v.SetDefault("textgen.max_tokens", 800)
	v.SetDefault("textgen.temperature", 0.7)
	v.SetDefault("textgen.timeout", "30s")
	v.SetDefault("textgen.requests_per_second", 2.0)

	// Search defaults
	v.SetDefault("search.top_k_per_store", 5)
	v.SetDefault("search.global_top_n", 10)
	v.SetDefault("search.score_epsilon", 0.02)
	v.SetDefault("search.debug", false)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.VectorStore.Type != "memory" && config.VectorStore.Type != "qdrant" {
		return fmt.Errorf("vector store type must be 'memory' or 'qdrant', got: %s", config.VectorStore.Type)
	}

	if config.VectorStore.Type == "qdrant" && config.VectorStore.URL == "" {
		return fmt.Errorf("vector store URL is required when type is 'qdrant'")
	}

	if config.Embedding.APIKey == "" {
		return fmt.Errorf("embedding API key is required (set DEALSCOPE_EMBEDDING_API_KEY)")
	}

	if config.Search.TopKPerStore <= 0 || config.Search.GlobalTopN <= 0 {
		return fmt.Errorf("search top_k_per_store and global_top_n must be positive")
	}

	return nil
}
