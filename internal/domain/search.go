package domain

// SearchParams are the caller-supplied knobs for a similarity search.
type SearchParams struct {
	Marketplaces      []string `json:"marketplaces,omitempty"`
	MaxPerMarketplace int      `json:"max_results_per_marketplace,omitempty"`
	MinSimilarity     float64  `json:"min_similarity_score,omitempty"`
	ForceRefresh      bool     `json:"force_refresh,omitempty"`
}

// SimilarResult is the outcome of a similarity search. EffectiveMinScore
// is the threshold actually applied, which is lower than the requested
// one when the relaxed fallback fired.
type SimilarResult struct {
	Item              *ClothingItem `json:"item"`
	Products          []Product     `json:"similar_products"`
	TotalFound        int           `json:"total_found"`
	SearchQuery       string        `json:"search_query"`
	EffectiveMinScore float64       `json:"effective_min_score"`
	FallbackUsed      bool          `json:"fallback_used"`
}

// OutfitParams are the caller-supplied knobs for outfit building.
type OutfitParams struct {
	Marketplaces []string `json:"marketplaces,omitempty"`
	MaxPerSlot   int      `json:"max_results_per_slot,omitempty"`
	OutfitCount  int      `json:"outfit_count,omitempty"`
}
