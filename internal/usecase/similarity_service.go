package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

// Fallback phases, tried in order. The alternate-query phase runs
// before the relaxed threshold: broadening the query is preferred over
// lowering the bar.
const (
	phasePrimary    = "primary"
	phaseSimplified = "simplified_query"
	phaseAlternate  = "alternate_query"
	phaseRelaxed    = "relaxed_threshold"
)

// simplifiedQueryWiden is added to the per-provider cap on the
// simplified-query retry.
const simplifiedQueryWiden = 5

// relaxedTopN caps the relaxed-threshold result when every candidate
// scored zero.
const relaxedTopN = 5

// listingURLDenylist matches generic search/listing pages that must never
// be returned as product results.
var listingURLDenylist = []string{
	"google.com/search",
	"tbm=shop",
	"/search?",
	"/search/?",
	"/sr?",
	"keyword=",
	"searchterm=",
	"/s?k=",
	"/sch/i.html",
	"search-results",
}

// SimilarityConfig holds configuration for the similarity service.
type SimilarityConfig struct {
	DefaultMinScore   float64
	MaxPerMarketplace int
}

// SimilarityService finds marketplace products similar to a wardrobe
// item, falling back through progressively broader strategies when the
// initial search yields nothing acceptable.
type SimilarityService struct {
	wardrobe   domain.WardrobeRepository
	analyses   *AnalysisService
	aggregator *MarketplaceAggregator
	config     SimilarityConfig
	logger     *zap.Logger
}

// NewSimilarityService creates a similarity service with dependencies.
func NewSimilarityService(
	wardrobe domain.WardrobeRepository,
	analyses *AnalysisService,
	aggregator *MarketplaceAggregator,
	config SimilarityConfig,
	logger *zap.Logger,
) *SimilarityService {
	if config.DefaultMinScore <= 0 {
		config.DefaultMinScore = 40
	}
	if config.MaxPerMarketplace <= 0 {
		config.MaxPerMarketplace = 10
	}
	return &SimilarityService{
		wardrobe:   wardrobe,
		analyses:   analyses,
		aggregator: aggregator,
		config:     config,
		logger:     logger,
	}
}

// FindSimilar runs the four-phase search state machine for one item.
func (s *SimilarityService) FindSimilar(ctx context.Context, userID, itemID string, params domain.SearchParams) (*domain.SimilarResult, error) {
	item, err := s.wardrobe.GetItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	record, err := s.analyses.EnsureAnalysis(ctx, userID, item, params.ForceRefresh)
	if err != nil {
		return nil, err
	}
	analysis := record.Data

	minScore := params.MinSimilarity
	if minScore <= 0 {
		minScore = s.config.DefaultMinScore
	}
	maxPer := params.MaxPerMarketplace
	if maxPer <= 0 {
		maxPer = s.config.MaxPerMarketplace
	}

	query := BuildSearchQuery(item, analysis)
	s.logger.Info("similarity search",
		zap.String("item_id", item.ID),
		zap.String("query", query.Inline()),
		zap.Float64("min_score", minScore),
	)

	result := &domain.SimilarResult{
		Item:              item,
		SearchQuery:       query.Inline(),
		EffectiveMinScore: minScore,
	}

	// Phase 1: primary search.
	raw, err := s.aggregator.Search(ctx, query, params.Marketplaces, maxPer)
	if err != nil {
		return nil, err
	}

	simplified := false
	if len(raw) == 0 {
		// Phase 2: simplified-query retry with a widened cap.
		s.logger.Warn("no raw candidates, retrying with simplified query", zap.String("phase", phaseSimplified))
		fallbackQuery := simplifiedQuery(analysis)
		result.SearchQuery = fallbackQuery.Inline()

		raw, err = s.aggregator.Search(ctx, fallbackQuery, params.Marketplaces, maxPer+simplifiedQueryWiden)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			// Degraded success: zero products, no fallback branch fired.
			return result, nil
		}
		simplified = true
		result.FallbackUsed = true
		query = fallbackQuery
	}

	scored := s.scorePipeline(raw, query, item, analysis)
	passing := filterByScore(scored, minScore)
	s.logger.Info("threshold filter",
		zap.Float64("min_score", minScore),
		zap.Int("passing", len(passing)),
		zap.Int("scored", len(scored)),
	)

	if len(passing) == 0 && !simplified {
		// Phase 3: broaden the query before touching the threshold.
		s.logger.Warn("no candidates passed threshold, trying alternate queries", zap.String("phase", phaseAlternate))
		scored = s.alternateQueryRound(ctx, item, analysis, query, scored, params.Marketplaces, maxPer)
		passing = filterByScore(scored, minScore)
		if len(passing) > 0 {
			result.FallbackUsed = true
		}
	}

	if len(passing) == 0 && len(scored) > 0 {
		// Phase 4: relaxed threshold.
		s.logger.Warn("relaxing score threshold", zap.String("phase", phaseRelaxed))
		passing = relaxedSelection(scored)
		result.EffectiveMinScore = 0
		result.FallbackUsed = true
	}

	result.Products = passing
	result.TotalFound = len(passing)
	s.logTop(passing)
	return result, nil
}

// scorePipeline strips listing pages, applies the query's exclusion
// terms, scores every remaining candidate and sorts descending by score.
func (s *SimilarityService) scorePipeline(
	raw []domain.Product,
	query domain.SearchQuery,
	item *domain.ClothingItem,
	analysis *domain.ClothingAnalysis,
) []domain.Product {
	clean := stripListingURLs(raw)
	if removed := len(raw) - len(clean); removed > 0 {
		s.logger.Info("removed listing-page URLs", zap.Int("removed", removed))
	}

	scored := make([]domain.Product, 0, len(clean))
	for _, p := range clean {
		if query.Excludes(p.Name) {
			continue
		}
		p.SimilarityScore = SimilarityScore(&p, item, analysis)
		scored = append(scored, p)
	}
	sortByScore(scored)
	return scored
}

// alternateQueryRound aggregates up to three broadened query variants,
// merges them with the existing candidates and rescores everything.
func (s *SimilarityService) alternateQueryRound(
	ctx context.Context,
	item *domain.ClothingItem,
	analysis *domain.ClothingAnalysis,
	query domain.SearchQuery,
	scored []domain.Product,
	marketplaces []string,
	maxPer int,
) []domain.Product {
	pool := append([]domain.Product(nil), scored...)

	for _, variant := range alternateQueries(analysis, query) {
		raw, err := s.aggregator.Search(ctx, variant, marketplaces, maxPer)
		if err != nil {
			s.logger.Warn("alternate query round failed", zap.String("query", variant.Text), zap.Error(err))
			continue
		}
		pool = append(pool, s.scorePipeline(raw, variant, item, analysis)...)
	}

	pool = domain.DedupeProducts(pool)
	for i := range pool {
		pool[i].SimilarityScore = SimilarityScore(&pool[i], item, analysis)
	}
	sortByScore(pool)
	return pool
}

// simplifiedQuery reduces the search to "{primary color} {category}".
func simplifiedQuery(analysis *domain.ClothingAnalysis) domain.SearchQuery {
	category := "clothing"
	if analysis != nil && analysis.Category != "" {
		category = strings.ToLower(analysis.Category)
	}
	if color := strings.ToLower(analysis.PrimaryColor()); color != "" {
		return domain.SearchQuery{Text: fmt.Sprintf("%s %s", color, category)}
	}
	return domain.SearchQuery{Text: category}
}

// alternateQueries builds up to three semantically broadened variants of
// the primary query.
func alternateQueries(analysis *domain.ClothingAnalysis, query domain.SearchQuery) []domain.SearchQuery {
	if analysis == nil {
		return nil
	}

	color := strings.ToLower(analysis.PrimaryColor())
	gender := genderTerm(analysis.TargetAudience)
	category := strings.ToLower(analysis.Category)

	corpus := strings.ToLower(strings.Join([]string{category, analysis.Subcategory, analysis.Description}, " "))
	if containsAny(corpus, varsityTriggers) {
		material := firstLongWord(strings.ToLower(analysis.Material))
		var variants []domain.SearchQuery
		for _, phrase := range []string{"letterman jacket", "college jacket", "varsity jacket"} {
			parts := []string{}
			if color != "" {
				parts = append(parts, color)
			}
			parts = append(parts, phrase)
			if material != "" {
				parts = append(parts, material)
			}
			if gender != "" {
				parts = append(parts, gender)
			}
			text := strings.Join(parts, " ")
			if text == query.Text {
				continue
			}
			variants = append(variants, domain.SearchQuery{Text: text, Exclude: query.Exclude})
		}
		if len(variants) > 3 {
			variants = variants[:3]
		}
		return variants
	}

	if category == "" || category == "unknown" || category == "none" {
		return nil
	}
	var variants []domain.SearchQuery
	if color != "" {
		variants = append(variants, domain.SearchQuery{
			Text:    strings.TrimSpace(strings.Join([]string{color, category, gender}, " ")),
			Exclude: query.Exclude,
		})
	}
	variants = append(variants, domain.SearchQuery{
		Text:    strings.TrimSpace(category + " " + gender),
		Exclude: query.Exclude,
	})

	out := variants[:0]
	for _, v := range variants {
		v.Text = strings.Join(strings.Fields(v.Text), " ")
		if v.Text != query.Text {
			out = append(out, v)
		}
	}
	return out
}

// relaxedSelection prefers positive-score candidates; when every score is
// zero it returns the top few anyway.
func relaxedSelection(scored []domain.Product) []domain.Product {
	var positive []domain.Product
	for _, p := range scored {
		if p.SimilarityScore > 0 {
			positive = append(positive, p)
		}
	}
	if len(positive) > 0 {
		return positive
	}
	if len(scored) > relaxedTopN {
		return scored[:relaxedTopN]
	}
	return scored
}

// stripListingURLs removes products whose URL points at a generic
// search/listing page rather than an individual product page.
func stripListingURLs(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.URL == "" || isListingURL(p.URL) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isListingURL(url string) bool {
	u := strings.ToLower(url)
	for _, pattern := range listingURLDenylist {
		if strings.Contains(u, pattern) {
			return true
		}
	}
	return false
}

func filterByScore(products []domain.Product, minScore float64) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		if p.SimilarityScore >= minScore {
			out = append(out, p)
		}
	}
	return out
}

func sortByScore(products []domain.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].SimilarityScore > products[j].SimilarityScore
	})
}

func firstLongWord(s string) string {
	words := longWords(s)
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

func (s *SimilarityService) logTop(products []domain.Product) {
	for i, p := range products {
		if i >= 5 {
			break
		}
		s.logger.Info("top result",
			zap.Int("rank", i+1),
			zap.String("name", p.Name),
			zap.Float64("score", p.SimilarityScore),
		)
	}
}
