package usecase

import (
	"strings"

	"github.com/stylistai/backend/internal/domain"
)

// varsityTriggers mark a garment as part of the varsity/letterman family.
var varsityTriggers = []string{"varsity", "letterman", "college jacket", "university jacket"}

// varsityDetailVocab are the detail words worth carrying into a varsity
// search query, in priority order.
var varsityDetailVocab = []string{"wool", "leather", "patch", "embroidered", "college", "university"}

// varsityExclusions remove the garment types that pollute varsity searches.
var varsityExclusions = []string{"hoodie", "sweatshirt", "sweater", "pullover"}

// jacketExclusions remove the garment types that pollute general jacket searches.
var jacketExclusions = []string{"hoodie", "sweatshirt", "sweater", "pullover", "cardigan"}

// BuildSearchQuery synthesizes a marketplace search query from a wardrobe
// item and its analysis. Deterministic: identical inputs always produce
// the identical query.
func BuildSearchQuery(item *domain.ClothingItem, analysis *domain.ClothingAnalysis) domain.SearchQuery {
	if analysis == nil {
		return minimalQuery(item)
	}

	category := strings.ToLower(firstNonEmpty(analysis.Category, itemCategory(item)))
	corpus := detectionCorpus(item, analysis, category)

	if containsAny(corpus, varsityTriggers) {
		return varsityQuery(analysis, category)
	}
	return defaultQuery(item, analysis, category)
}

// minimalQuery is the no-analysis fallback: stored category + color, or
// the literal "clothing".
func minimalQuery(item *domain.ClothingItem) domain.SearchQuery {
	var parts []string
	if item != nil {
		if item.Category != "" {
			parts = append(parts, item.Category)
		}
		if item.Color != "" {
			parts = append(parts, item.Color)
		}
	}
	if len(parts) == 0 {
		return domain.SearchQuery{Text: "clothing"}
	}
	return domain.SearchQuery{Text: strings.Join(parts, " ")}
}

// detectionCorpus is the lowercase text the trigger detection runs over.
func detectionCorpus(item *domain.ClothingItem, analysis *domain.ClothingAnalysis, category string) string {
	desc := analysis.Description
	if item != nil && item.Description != "" {
		desc += " " + item.Description
	}
	return strings.ToLower(strings.Join([]string{category, analysis.Subcategory, desc}, " "))
}

func varsityQuery(analysis *domain.ClothingAnalysis, category string) domain.SearchQuery {
	var parts []string

	if color := analysis.PrimaryColor(); color != "" {
		parts = append(parts, strings.ToLower(color))
	}
	parts = append(parts, "varsity jacket")

	combo := strings.ToLower(analysis.Material + " " + analysis.Details)
	var details []string
	for _, w := range varsityDetailVocab {
		if strings.Contains(combo, w) && !containsString(details, w) {
			details = append(details, w)
		}
	}
	if len(details) > 2 {
		details = details[:2]
	}
	parts = append(parts, details...)

	if gender := genderTerm(analysis.TargetAudience); gender != "" {
		parts = append(parts, gender)
	}

	return domain.SearchQuery{
		Text:    strings.TrimSpace(strings.Join(parts, " ")),
		Exclude: varsityExclusions,
	}
}

func defaultQuery(item *domain.ClothingItem, analysis *domain.ClothingAnalysis, category string) domain.SearchQuery {
	var parts []string

	if category != "" && category != "unknown" && category != "none" {
		parts = append(parts, category)
	}

	color := strings.ToLower(analysis.PrimaryColor())
	if color == "" && item != nil && item.Color != "" {
		color = strings.ToLower(strings.TrimSpace(strings.SplitN(item.Color, ",", 2)[0]))
	}
	if color != "" {
		parts = append([]string{color}, parts...)
	}

	if style := strings.ToLower(analysis.Style); style != "" && style != "unknown" && style != "none" {
		parts = append(parts, style)
	}

	if gender := genderTerm(analysis.TargetAudience); gender != "" {
		parts = append(parts, gender)
	}

	query := domain.SearchQuery{Text: strings.TrimSpace(strings.Join(parts, " "))}
	if strings.Contains(category, "jacket") {
		query.Exclude = jacketExclusions
	}
	if query.Text == "" {
		query.Text = "clothing"
	}
	return query
}

// genderTerm returns a query-worthy audience term, or "" for unisex and
// unrecognized values.
func genderTerm(audience string) string {
	switch strings.ToLower(audience) {
	case "men", "women":
		return strings.ToLower(audience)
	}
	return ""
}

func itemCategory(item *domain.ClothingItem) string {
	if item == nil {
		return ""
	}
	return item.Category
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
