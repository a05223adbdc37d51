package usecase

import (
	"strings"

	"github.com/stylistai/backend/internal/domain"
)

// Weight caps for the similarity score components.
const (
	varsityLexiconCap  = 40.0 // weighted varsity vocabulary, capped
	varsityMissPenalty = 20.0 // varsity source but product has no varsity term
	categoryWeight     = 25.0 // category word overlap
	colorWeight        = 15.0 // source color overlap
	styleBonus         = 10.0 // exact style containment
	subcategoryWeight  = 10.0 // subcategory word overlap
	materialBonus      = 5.0  // any material keyword present
	brandBonus         = 5.0  // exact brand containment
)

// varsityLexicon weights the vocabulary that distinguishes a real
// varsity/letterman jacket listing.
var varsityLexicon = map[string]float64{
	"varsity":    18,
	"letterman":  12,
	"college":    8,
	"university": 6,
	"patch":      5,
	"chenille":   5,
	"wool":       5,
	"leather":    5,
}

// varsityCoreTerms must appear in a product for it to avoid the varsity
// miss penalty.
var varsityCoreTerms = []string{"varsity", "letterman", "college"}

// jacketMismatchTerms zero out candidates when the source is a jacket.
var jacketMismatchTerms = []string{
	"hoodie", "sweatshirt", "sweater", "pullover",
	"cardigan", "tshirt", "t-shirt", "shirt",
	"pants", "jeans", "shorts", "skirt",
}

// IsCategoryMismatch reports whether a product name is structurally
// incompatible with the source category. A mismatch vetoes the candidate
// outright.
func IsCategoryMismatch(productName, sourceCategory string) bool {
	name := strings.ToLower(productName)
	category := strings.ToLower(sourceCategory)

	if strings.Contains(category, "jacket") {
		if containsAny(name, jacketMismatchTerms) {
			return true
		}
	}

	if containsAny(category, []string{"pants", "jeans", "trousers"}) {
		if containsAny(name, []string{"jacket", "coat", "shirt", "hoodie"}) {
			return true
		}
	}

	if strings.Contains(category, "shirt") && !strings.Contains(name, "shirt") {
		if containsAny(name, []string{"jacket", "coat", "pants", "jeans"}) {
			return true
		}
	}

	return false
}

// SimilarityScore computes a 0-100 relevance score for a product against
// the source garment's attributes. Category-mismatched products score
// exactly 0; everything else accumulates capped weighted evidence and is
// clamped to [0, 100].
func SimilarityScore(product *domain.Product, item *domain.ClothingItem, analysis *domain.ClothingAnalysis) float64 {
	productText := strings.ToLower(product.Name + " " + product.Brand)

	category := strings.ToLower(firstNonEmpty(analysisCategory(analysis), itemCategory(item)))
	subcategory := ""
	desc := ""
	if analysis != nil {
		subcategory = strings.ToLower(analysis.Subcategory)
		desc = analysis.Description
	}
	if item != nil && item.Description != "" {
		desc += " " + item.Description
	}
	analysisText := strings.ToLower(strings.Join([]string{category, subcategory, desc}, " "))

	if IsCategoryMismatch(product.Name, category) {
		return 0.0
	}

	score := 0.0

	if containsAny(analysisText, varsityTriggers) {
		varsityScore := 0.0
		for word, weight := range varsityLexicon {
			if strings.Contains(productText, word) {
				varsityScore += weight
			}
		}
		if varsityScore > varsityLexiconCap {
			varsityScore = varsityLexiconCap
		}
		score += varsityScore

		if !containsAny(productText, varsityCoreTerms) {
			score -= varsityMissPenalty
		}
	}

	score += wordOverlap(category, productText) * categoryWeight
	score += colorOverlap(analysis, productText) * colorWeight

	if analysis != nil {
		if style := strings.ToLower(analysis.Style); style != "" && strings.Contains(productText, style) {
			score += styleBonus
		}
	}

	score += wordOverlap(subcategory, productText) * subcategoryWeight

	if analysis != nil {
		material := strings.ToLower(analysis.Material)
		if len(material) > 3 {
			for _, w := range longWords(material) {
				if strings.Contains(productText, w) {
					score += materialBonus
					break
				}
			}
		}
	}

	brand := ""
	if analysis != nil {
		brand = analysis.Brand
	}
	if brand == "" && item != nil {
		brand = item.Brand
	}
	brand = strings.ToLower(brand)
	if brand != "" && brand != "unknown" && brand != "unbranded" && brand != "none" {
		if strings.Contains(productText, brand) {
			score += brandBonus
		}
	}

	return clampScore(score)
}

// wordOverlap returns the fraction of source words (length > 3) found in
// the product text, 0 when the source has no qualifying words.
func wordOverlap(source, productText string) float64 {
	words := longWords(source)
	if len(words) == 0 {
		return 0
	}
	matches := 0
	for _, w := range words {
		if strings.Contains(productText, w) {
			matches++
		}
	}
	return float64(matches) / float64(len(words))
}

// colorOverlap returns the fraction of source colors found in the
// product text.
func colorOverlap(analysis *domain.ClothingAnalysis, productText string) float64 {
	if analysis == nil || len(analysis.Colors) == 0 {
		return 0
	}
	matches := 0
	for _, c := range analysis.Colors {
		if strings.Contains(productText, strings.ToLower(c)) {
			matches++
		}
	}
	return float64(matches) / float64(len(analysis.Colors))
}

func longWords(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if len(w) > 3 {
			out = append(out, w)
		}
	}
	return out
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func analysisCategory(analysis *domain.ClothingAnalysis) string {
	if analysis == nil {
		return ""
	}
	return analysis.Category
}
