package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

// OutfitConfig holds configuration for the outfit builder.
type OutfitConfig struct {
	MaxPerSlot       int
	FallbackProvider string
}

// OutfitService resolves an AI-generated outfit plan into concrete
// marketplace products, one search per slot, with a request-scoped
// seen-URL set guaranteeing no product appears twice across the plan.
type OutfitService struct {
	wardrobe   domain.WardrobeRepository
	analyses   *AnalysisService
	aggregator *MarketplaceAggregator
	config     OutfitConfig
	logger     *zap.Logger
}

// NewOutfitService creates an outfit service with dependencies.
func NewOutfitService(
	wardrobe domain.WardrobeRepository,
	analyses *AnalysisService,
	aggregator *MarketplaceAggregator,
	config OutfitConfig,
	logger *zap.Logger,
) *OutfitService {
	if config.MaxPerSlot <= 0 {
		config.MaxPerSlot = 3
	}
	return &OutfitService{
		wardrobe:   wardrobe,
		analyses:   analyses,
		aggregator: aggregator,
		config:     config,
		logger:     logger,
	}
}

// seenSet tracks product identity keys already placed anywhere in the
// current outfit plan. Scoped to one BuildOutfits call.
type seenSet map[string]struct{}

func (s seenSet) add(p *domain.Product) bool {
	key := p.IdentityKey()
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// BuildOutfits resolves every slot of every outfit in the plan. Slots are
// processed sequentially; each slot's provider fan-out is concurrent
// inside the aggregator.
func (s *OutfitService) BuildOutfits(
	ctx context.Context,
	userID, itemID string,
	plan *domain.OutfitPlan,
	params domain.OutfitParams,
) ([]domain.Outfit, error) {
	if plan == nil || len(plan.Outfits) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	item, err := s.wardrobe.GetItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}
	record, err := s.analyses.EnsureAnalysis(ctx, userID, item, false)
	if err != nil {
		return nil, err
	}

	maxPerSlot := params.MaxPerSlot
	if maxPerSlot <= 0 {
		maxPerSlot = s.config.MaxPerSlot
	}

	outfits := plan.Outfits
	if params.OutfitCount > 0 && params.OutfitCount < len(outfits) {
		outfits = outfits[:params.OutfitCount]
	}

	seen := make(seenSet)
	results := make([]domain.Outfit, 0, len(outfits))
	for _, planned := range outfits {
		outfit := domain.Outfit{Name: planned.Name}
		for _, slot := range planned.Slots {
			outfit.Slots = append(outfit.Slots, s.resolveSlot(ctx, item, record.Data, slot, params.Marketplaces, maxPerSlot, seen))
		}
		results = append(results, outfit)
	}
	return results, nil
}

// resolveSlot fills one slot: reuses the base item when the slot's type
// matches its category, otherwise searches for it.
func (s *OutfitService) resolveSlot(
	ctx context.Context,
	item *domain.ClothingItem,
	analysis *domain.ClothingAnalysis,
	slot domain.SlotSpec,
	marketplaces []string,
	maxPerSlot int,
	seen seenSet,
) domain.SlotResult {
	if matchesBaseCategory(slot.Type, item, analysis) {
		s.logger.Info("slot reuses base item",
			zap.String("slot", slot.Type),
			zap.String("item_id", item.ID),
		)
		return domain.SlotResult{Type: slot.Type, ReusedBase: true}
	}

	query := domain.SearchQuery{Text: slot.Query, Exclude: slot.Exclude}
	products := s.searchSlot(ctx, query, slot, marketplaces, maxPerSlot, seen)

	if len(products) == 0 {
		// One shortened retry against the fallback provider only.
		short := shortenQuery(slot.Query, 2)
		if short != "" && s.config.FallbackProvider != "" {
			s.logger.Warn("slot empty, retrying with shortened query",
				zap.String("slot", slot.Type),
				zap.String("query", short),
				zap.String("provider", s.config.FallbackProvider),
			)
			retryQuery := domain.SearchQuery{Text: short, Exclude: slot.Exclude}
			products = s.searchSlot(ctx, retryQuery, slot, []string{s.config.FallbackProvider}, maxPerSlot, seen)
		}
	}

	return domain.SlotResult{Type: slot.Type, Products: products}
}

func (s *OutfitService) searchSlot(
	ctx context.Context,
	query domain.SearchQuery,
	slot domain.SlotSpec,
	marketplaces []string,
	maxPerSlot int,
	seen seenSet,
) []domain.Product {
	raw, err := s.aggregator.Search(ctx, query, marketplaces, maxPerSlot*2)
	if err != nil {
		s.logger.Error("slot search failed", zap.String("slot", slot.Type), zap.Error(err))
		return nil
	}

	var products []domain.Product
	for _, p := range stripListingURLs(raw) {
		if !slotAccepts(slot, p.Name) {
			continue
		}
		if !seen.add(&p) {
			continue
		}
		products = append(products, p)
		if len(products) >= maxPerSlot {
			break
		}
	}
	return products
}

// slotAccepts applies the slot's include/exclude keyword lists to a
// product name.
func slotAccepts(slot domain.SlotSpec, productName string) bool {
	name := strings.ToLower(productName)
	for _, word := range slot.Exclude {
		if strings.Contains(name, strings.ToLower(word)) {
			return false
		}
	}
	if len(slot.Include) == 0 {
		return true
	}
	for _, word := range slot.Include {
		if strings.Contains(name, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// matchesBaseCategory reports whether a slot's garment type matches the
// base item's own category, meaning the base item fills the slot itself.
func matchesBaseCategory(slotType string, item *domain.ClothingItem, analysis *domain.ClothingAnalysis) bool {
	slotLower := strings.ToLower(slotType)
	if slotLower == "" {
		return false
	}
	category := strings.ToLower(firstNonEmpty(analysisCategory(analysis), itemCategory(item)))
	if category == "" {
		return false
	}
	return strings.Contains(category, slotLower) || strings.Contains(slotLower, category)
}

// shortenQuery keeps the first n words of a query.
func shortenQuery(query string, n int) string {
	words := strings.Fields(query)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
