package domain

import "time"

// ClothingItem is a garment stored in a user's wardrobe.
type ClothingItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Category    string    `json:"category"`
	Color       string    `json:"color"` // comma-separated, primary first
	Brand       string    `json:"brand,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ClothingAnalysis is the structured attribute record produced by the
// vision model for a single garment. Immutable once obtained.
type ClothingAnalysis struct {
	Category       string   `json:"category"`
	Subcategory    string   `json:"subcategory,omitempty"`
	Colors         []string `json:"colors"` // primary color first
	Pattern        string   `json:"pattern,omitempty"`
	Material       string   `json:"material,omitempty"`
	Fit            string   `json:"fit,omitempty"`
	Details        string   `json:"details,omitempty"`
	Brand          string   `json:"brand,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"` // men/women/unisex
	Style          string   `json:"style,omitempty"`
	Season         string   `json:"season,omitempty"`
	Description    string   `json:"description,omitempty"`
	SearchQuery    string   `json:"search_query,omitempty"`
	SearchKeywords []string `json:"search_keywords,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

// PrimaryColor returns the first listed color, or "".
func (a *ClothingAnalysis) PrimaryColor() string {
	if a == nil || len(a.Colors) == 0 {
		return ""
	}
	return a.Colors[0]
}

// Analysis is a stored analysis record tying a ClothingAnalysis to a
// wardrobe item. Re-created only on explicit force-refresh or when a
// legacy record predates the tags field.
type Analysis struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	ItemID    string            `json:"itemId,omitempty"`
	Data      *ClothingAnalysis `json:"data"`
	ModelUsed string            `json:"modelUsed"`
	CreatedAt time.Time         `json:"createdAt"`
}
