package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Gemini   GeminiConfig
	Serper   SerperConfig
	RapidAPI RapidAPIConfig
	Cache    CacheConfig
	Search   SearchConfig
	Outfit   OutfitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds the vision model configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SerperConfig holds the Serper Google Shopping API configuration
type SerperConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RapidAPIConfig holds RapidAPI credentials shared by marketplace providers
type RapidAPIConfig struct {
	Key            string `mapstructure:"key"`
	AsosHost       string `mapstructure:"asos_host"`
	HMHost         string `mapstructure:"hm_host"`
	PriceScoutHost string `mapstructure:"pricescout_host"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type      string        `mapstructure:"type"` // "memory" or "redis"
	RedisAddr string        `mapstructure:"redis_addr"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// SearchConfig holds similarity search configuration
type SearchConfig struct {
	MinSimilarityScore float64 `mapstructure:"min_similarity_score"`
	MaxPerMarketplace  int     `mapstructure:"max_per_marketplace"`
	FallbackProvider   string  `mapstructure:"fallback_provider"`
}

// OutfitConfig holds outfit builder configuration
type OutfitConfig struct {
	MaxPerSlot int `mapstructure:"max_per_slot"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/stylist/")

	// Environment variable settings
	v.SetEnvPrefix("STYLIST")
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

	// Gemini defaults
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("gemini.model", "gemini-2.0-flash")

	// RapidAPI defaults
	v.SetDefault("rapidapi.asos_host", "asos2.p.rapidapi.com")
	v.SetDefault("rapidapi.hm_host", "apidojo-hm-hennes-mauritz-v1.p.rapidapi.com")
	v.SetDefault("rapidapi.pricescout_host", "pricescout.p.rapidapi.com")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "720h") // 30 days

	// Search defaults
	v.SetDefault("search.min_similarity_score", 40)
	v.SetDefault("search.max_per_marketplace", 10)
	v.SetDefault("search.fallback_provider", "google_shopping")

	// Outfit defaults
	v.SetDefault("outfit.max_per_slot", 3)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisAddr == "" {
		return fmt.Errorf("Redis address is required when cache type is 'redis'")
	}

	if config.Search.MinSimilarityScore < 0 || config.Search.MinSimilarityScore > 100 {
		return fmt.Errorf("min similarity score must be within [0, 100], got: %v", config.Search.MinSimilarityScore)
	}

	if config.Search.MaxPerMarketplace <= 0 {
		return fmt.Errorf("max per marketplace must be positive, got: %d", config.Search.MaxPerMarketplace)
	}

	return nil
}
