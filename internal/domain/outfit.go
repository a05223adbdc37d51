package domain

// SlotSpec is one typed garment position within a planned outfit, with
// the query and keyword filters the planner chose for it.
type SlotSpec struct {
	Type    string   `json:"type"` // top/bottom/shoes/outerwear/accessory
	Query   string   `json:"query"`
	Include []string `json:"include,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// OutfitSpec is one named outfit from an AI-generated plan.
type OutfitSpec struct {
	Name  string     `json:"name"`
	Slots []SlotSpec `json:"slots"`
}

// OutfitPlan is the multi-outfit plan the builder resolves into products.
type OutfitPlan struct {
	Outfits []OutfitSpec `json:"outfits"`
}

// SlotResult is a resolved slot: either the base item reused, or the
// products found for the slot's query (possibly empty).
type SlotResult struct {
	Type       string    `json:"type"`
	ReusedBase bool      `json:"reused_base"`
	Products   []Product `json:"products"`
}

// Outfit is a fully resolved outfit.
type Outfit struct {
	Name  string       `json:"name"`
	Slots []SlotResult `json:"slots"`
}
