package domain

import (
	"fmt"
	"strings"
)

// Product is a marketplace search result. Optional fields are left at
// their zero values when a provider does not supply them.
type Product struct {
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Currency        string  `json:"currency"`
	URL             string  `json:"url"`
	ImageURL        string  `json:"image_url"`
	Brand           string  `json:"brand,omitempty"`
	Marketplace     string  `json:"marketplace"`
	Rating          float64 `json:"rating,omitempty"`
	ReviewsCount    int     `json:"reviews_count,omitempty"`
	Delivery        string  `json:"delivery,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
}

// IdentityKey is the deduplication key: the normalized URL when present,
// otherwise a composite of marketplace, name and price so URL-less
// products are still deduplicated rather than dropped.
func (p *Product) IdentityKey() string {
	if url := strings.ToLower(strings.TrimSpace(p.URL)); url != "" {
		return url
	}
	return fmt.Sprintf("%s|%s|%.2f", p.Marketplace, strings.ToLower(strings.TrimSpace(p.Name)), p.Price)
}

// DedupeProducts removes duplicate products by identity key, keeping the
// first occurrence. Idempotent.
func DedupeProducts(products []Product) []Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		key := p.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}
