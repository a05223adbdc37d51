package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("STYLIST_SERVER_PORT")
		os.Unsetenv("STYLIST_SERVER_ENVIRONMENT")
		os.Unsetenv("STYLIST_GEMINI_API_KEY")
		os.Unsetenv("STYLIST_GEMINI_MODEL")
		os.Unsetenv("STYLIST_SERPER_API_KEY")
		os.Unsetenv("STYLIST_RAPIDAPI_KEY")
		os.Unsetenv("STYLIST_CACHE_TYPE")
		os.Unsetenv("STYLIST_CACHE_REDIS_ADDR")
		os.Unsetenv("STYLIST_CACHE_TTL")
		os.Unsetenv("STYLIST_SEARCH_MIN_SIMILARITY_SCORE")
		os.Unsetenv("STYLIST_SEARCH_MAX_PER_MARKETPLACE")
		os.Unsetenv("STYLIST_SEARCH_FALLBACK_PROVIDER")
		os.Unsetenv("STYLIST_OUTFIT_MAX_PER_SLOT")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Gemini.Model != "gemini-2.0-flash" {
			t.Errorf("Gemini.Model = %s, want gemini-2.0-flash", cfg.Gemini.Model)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != 720*time.Hour {
			t.Errorf("Cache.TTL = %v, want 720h", cfg.Cache.TTL)
		}
		if cfg.Search.MinSimilarityScore != 40 {
			t.Errorf("Search.MinSimilarityScore = %v, want 40", cfg.Search.MinSimilarityScore)
		}
		if cfg.Search.MaxPerMarketplace != 10 {
			t.Errorf("Search.MaxPerMarketplace = %d, want 10", cfg.Search.MaxPerMarketplace)
		}
		if cfg.Search.FallbackProvider != "google_shopping" {
			t.Errorf("Search.FallbackProvider = %s, want google_shopping", cfg.Search.FallbackProvider)
		}
		if cfg.Outfit.MaxPerSlot != 3 {
			t.Errorf("Outfit.MaxPerSlot = %d, want 3", cfg.Outfit.MaxPerSlot)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("STYLIST_SERVER_PORT", "9090")
		os.Setenv("STYLIST_SERVER_ENVIRONMENT", "production")
		os.Setenv("STYLIST_GEMINI_API_KEY", "gemini-key")
		os.Setenv("STYLIST_SERPER_API_KEY", "serper-key")
		os.Setenv("STYLIST_RAPIDAPI_KEY", "rapid-key")
		os.Setenv("STYLIST_CACHE_TYPE", "redis")
		os.Setenv("STYLIST_CACHE_REDIS_ADDR", "localhost:6379")
		os.Setenv("STYLIST_CACHE_TTL", "24h")
		os.Setenv("STYLIST_SEARCH_MIN_SIMILARITY_SCORE", "55")
		os.Setenv("STYLIST_SEARCH_MAX_PER_MARKETPLACE", "20")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Gemini.APIKey != "gemini-key" {
			t.Errorf("Gemini.APIKey = %s, want gemini-key", cfg.Gemini.APIKey)
		}
		if cfg.Serper.APIKey != "serper-key" {
			t.Errorf("Serper.APIKey = %s, want serper-key", cfg.Serper.APIKey)
		}
		if cfg.RapidAPI.Key != "rapid-key" {
			t.Errorf("RapidAPI.Key = %s, want rapid-key", cfg.RapidAPI.Key)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisAddr != "localhost:6379" {
			t.Errorf("Cache.RedisAddr = %s, want localhost:6379", cfg.Cache.RedisAddr)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.Search.MinSimilarityScore != 55 {
			t.Errorf("Search.MinSimilarityScore = %v, want 55", cfg.Search.MinSimilarityScore)
		}
		if cfg.Search.MaxPerMarketplace != 20 {
			t.Errorf("Search.MaxPerMarketplace = %d, want 20", cfg.Search.MaxPerMarketplace)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("STYLIST_CACHE_TYPE", "invalid")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails validation when redis address missing for redis cache", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("STYLIST_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing Redis address")
		}
	})

	t.Run("fails validation for out-of-range minimum score", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("STYLIST_SEARCH_MIN_SIMILARITY_SCORE", "150")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for score above 100")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Cache: CacheConfig{Type: "memory"},
			Search: SearchConfig{
				MinSimilarityScore: 40,
				MaxPerMarketplace:  10,
			},
		}
	}

	t.Run("validates successfully with defaults", func(t *testing.T) {
		if err := validate(base()); err != nil {
			t.Errorf("validate() error = %v, want nil", err)
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Type = "invalid-type"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for invalid cache type")
		}
	})

	t.Run("validates redis cache type with address", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Type = "redis"
		cfg.Cache.RedisAddr = "localhost:6379"
		if err := validate(cfg); err != nil {
			t.Errorf("validate() error = %v, want nil for valid redis config", err)
		}
	})

	t.Run("fails for redis cache without address", func(t *testing.T) {
		cfg := base()
		cfg.Cache.Type = "redis"
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for redis without address")
		}
	})

	t.Run("fails for non-positive max per marketplace", func(t *testing.T) {
		cfg := base()
		cfg.Search.MaxPerMarketplace = 0
		if err := validate(cfg); err == nil {
			t.Error("validate() error = nil, want error for zero max per marketplace")
		}
	})
}
