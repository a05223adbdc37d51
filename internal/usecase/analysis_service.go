package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

// AnalysisConfig holds configuration for the analysis service.
type AnalysisConfig struct {
	CacheTTL time.Duration
}

// AnalysisService owns the attribute-record lifecycle: one analysis per
// garment, reused across requests, re-fetched only on force refresh or
// when a legacy record predates the tags field.
type AnalysisService struct {
	wardrobe  domain.WardrobeRepository
	extractor domain.AttributeExtractor
	cache     domain.CacheRepository
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAnalysisService creates an analysis service with dependencies.
func NewAnalysisService(
	wardrobe domain.WardrobeRepository,
	extractor domain.AttributeExtractor,
	cache domain.CacheRepository,
	config AnalysisConfig,
	logger *zap.Logger,
) *AnalysisService {
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = 720 * time.Hour
	}
	return &AnalysisService{
		wardrobe:  wardrobe,
		extractor: extractor,
		cache:     cache,
		cacheTTL:  ttl,
		logger:    logger,
	}
}

// EnsureAnalysis returns the item's attribute record, analyzing the
// image only when no usable record exists. An extraction failure is a
// hard stop, never silently replaced with defaults.
func (s *AnalysisService) EnsureAnalysis(ctx context.Context, userID string, item *domain.ClothingItem, force bool) (*domain.Analysis, error) {
	if item == nil {
		return nil, domain.ErrInvalidRequest
	}

	if !force {
		existing, err := s.wardrobe.LatestAnalysis(ctx, item.ID)
		if err == nil && usableAnalysis(existing) {
			s.logger.Info("reusing stored analysis", zap.String("item_id", item.ID))
			return existing, nil
		}
		if err == nil && existing != nil {
			// Legacy record without tags: re-analyze to get search hints.
			s.logger.Warn("stored analysis lacks tags, re-analyzing", zap.String("item_id", item.ID))
		}

		if cached := s.fromCache(ctx, item.ID); cached != nil {
			record := s.newRecord(userID, item.ID, cached, "cache")
			if err := s.wardrobe.SaveAnalysis(ctx, record); err != nil {
				s.logger.Warn("failed to persist cached analysis", zap.Error(err))
			}
			return record, nil
		}
	}

	return s.analyze(ctx, userID, item)
}

// Reanalyze forces a fresh extraction for the item, updating the stored
// item attributes from the new record.
func (s *AnalysisService) Reanalyze(ctx context.Context, userID, itemID string) (*domain.Analysis, error) {
	item, err := s.wardrobe.GetItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, userID, item)
}

// ClearAnalyses removes all stored analyses for an item, including the
// cached copy. Returns how many records were deleted.
func (s *AnalysisService) ClearAnalyses(ctx context.Context, userID, itemID string) (int, error) {
	if _, err := s.wardrobe.GetItem(ctx, itemID, userID); err != nil {
		return 0, err
	}
	if err := s.cache.Delete(ctx, cacheKey(itemID)); err != nil {
		s.logger.Warn("failed to drop cached analysis", zap.Error(err))
	}
	return s.wardrobe.DeleteAnalyses(ctx, itemID)
}

// ListAnalyses returns the user's analysis history, newest first.
func (s *AnalysisService) ListAnalyses(ctx context.Context, userID string, offset, limit int) ([]domain.Analysis, error) {
	return s.wardrobe.ListAnalyses(ctx, userID, offset, limit)
}

func (s *AnalysisService) analyze(ctx context.Context, userID string, item *domain.ClothingItem) (*domain.Analysis, error) {
	if item.ImageURL == "" {
		return nil, fmt.Errorf("%w: item has no image", domain.ErrInvalidRequest)
	}

	s.logger.Info("analyzing item image", zap.String("item_id", item.ID))
	data, err := s.extractor.AnalyzeImage(ctx, item.ImageURL)
	if err != nil {
		if errors.Is(err, domain.ErrExtractorUnavailable) || errors.Is(err, domain.ErrQuotaExhausted) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	if data == nil {
		return nil, domain.ErrAnalysisFailed
	}

	record := s.newRecord(userID, item.ID, data, s.extractor.ModelName())
	if err := s.wardrobe.SaveAnalysis(ctx, record); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	s.toCache(ctx, item.ID, data)

	// Refresh stored item attributes from the richer record.
	if data.Category != "" {
		item.Category = data.Category
	}
	if len(data.Colors) > 0 {
		item.Color = strings.Join(data.Colors, ", ")
	}
	if data.Brand != "" {
		item.Brand = data.Brand
	}
	if data.Description != "" {
		item.Description = data.Description
	}
	if err := s.wardrobe.UpdateItem(ctx, item); err != nil {
		s.logger.Warn("failed to update item from analysis", zap.Error(err))
	}

	return record, nil
}

func (s *AnalysisService) newRecord(userID, itemID string, data *domain.ClothingAnalysis, model string) *domain.Analysis {
	return &domain.Analysis{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		Data:      data,
		ModelUsed: model,
		CreatedAt: time.Now(),
	}
}

func (s *AnalysisService) fromCache(ctx context.Context, itemID string) *domain.ClothingAnalysis {
	raw, err := s.cache.Get(ctx, cacheKey(itemID))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("analysis cache read failed", zap.Error(err))
		}
		return nil
	}
	var data domain.ClothingAnalysis
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("ignoring malformed cached analysis", zap.Error(err))
		return nil
	}
	if len(data.Tags) == 0 {
		return nil
	}
	return &data
}

func (s *AnalysisService) toCache(ctx context.Context, itemID string, data *domain.ClothingAnalysis) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(itemID), raw, s.cacheTTL); err != nil {
		s.logger.Warn("analysis cache write failed", zap.Error(err))
	}
}

func cacheKey(itemID string) string {
	return "analysis:" + itemID
}

// usableAnalysis reports whether a stored record carries the tag field
// newer queries depend on.
func usableAnalysis(record *domain.Analysis) bool {
	return record != nil && record.Data != nil && len(record.Data.Tags) > 0
}
