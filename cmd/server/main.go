package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/stylistai/backend/config"
	httpDelivery "github.com/stylistai/backend/internal/delivery/http"
	"github.com/stylistai/backend/internal/domain"
	"github.com/stylistai/backend/internal/infrastructure/cache"
	"github.com/stylistai/backend/internal/infrastructure/marketplace"
	"github.com/stylistai/backend/internal/infrastructure/vision"
	"github.com/stylistai/backend/internal/infrastructure/wardrobe"
	"github.com/stylistai/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting stylist backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache", cfg.Cache.Type))

	// Cache backend
	var cacheRepo domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisAddr)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		cacheRepo = redisCache
	default:
		cacheRepo = cache.NewMemoryCache()
	}

	// Wardrobe store
	wardrobeRepo := wardrobe.NewMemoryRepository()

	// Vision extractor
	extractor := vision.NewExtractor(vision.Config{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
	}, logger)

	// Marketplace providers
	providers := []domain.MarketplaceProvider{
		marketplace.NewSerperProvider(cfg.Serper.APIKey, logger),
		marketplace.NewAsosProvider(cfg.RapidAPI.Key, cfg.RapidAPI.AsosHost, logger),
		marketplace.NewHMProvider(cfg.RapidAPI.Key, cfg.RapidAPI.HMHost, logger),
		marketplace.NewPriceScoutProvider(cfg.RapidAPI.Key, cfg.RapidAPI.PriceScoutHost, logger),
	}
	aggregator := usecase.NewMarketplaceAggregator(providers, logger)
	logger.Info("marketplace providers registered", zap.Strings("providers", aggregator.ProviderNames()))

	// Usecase layer
	analyses := usecase.NewAnalysisService(wardrobeRepo, extractor, cacheRepo,
		usecase.AnalysisConfig{CacheTTL: cfg.Cache.TTL}, logger)

	similarity := usecase.NewSimilarityService(wardrobeRepo, analyses, aggregator,
		usecase.SimilarityConfig{
			DefaultMinScore:   cfg.Search.MinSimilarityScore,
			MaxPerMarketplace: cfg.Search.MaxPerMarketplace,
		}, logger)

	outfits := usecase.NewOutfitService(wardrobeRepo, analyses, aggregator,
		usecase.OutfitConfig{
			MaxPerSlot:       cfg.Outfit.MaxPerSlot,
			FallbackProvider: cfg.Search.FallbackProvider,
		}, logger)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(wardrobeRepo, analyses, similarity, outfits, logger)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
