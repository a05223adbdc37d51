package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AttributeExtractor is the vision-model capability: given an image it
// returns a structured clothing attribute record or fails.
type AttributeExtractor interface {
	AnalyzeImage(ctx context.Context, imagePath string) (*ClothingAnalysis, error)
	ModelName() string
}

// MarketplaceProvider is the single uniform search capability every
// provider adapter implements.
type MarketplaceProvider interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, query string, maxResults int) ([]Product, error)
}

// WardrobeRepository persists wardrobe items and their analyses.
type WardrobeRepository interface {
	GetItem(ctx context.Context, itemID, userID string) (*ClothingItem, error)
	SaveItem(ctx context.Context, item *ClothingItem) error
	UpdateItem(ctx context.Context, item *ClothingItem) error
	ListItems(ctx context.Context, userID string, offset, limit int) ([]ClothingItem, error)

	LatestAnalysis(ctx context.Context, itemID string) (*Analysis, error)
	SaveAnalysis(ctx context.Context, analysis *Analysis) error
	DeleteAnalyses(ctx context.Context, itemID string) (int, error)
	ListAnalyses(ctx context.Context, userID string, offset, limit int) ([]Analysis, error)
}
