package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

// PriceScoutProvider searches Indian marketplaces (Myntra, Flipkart,
// Amazon India) through the PriceScout RapidAPI.
type PriceScoutProvider struct {
	apiKey    string
	host      string
	baseURL   string
	transport *transport
	logger    *zap.Logger
}

// NewPriceScoutProvider creates the PriceScout provider. A missing
// RapidAPI key leaves the provider disabled.
func NewPriceScoutProvider(apiKey, host string, logger *zap.Logger) *PriceScoutProvider {
	if host == "" {
		host = "pricescout.p.rapidapi.com"
	}
	return &PriceScoutProvider{
		apiKey:    apiKey,
		host:      host,
		baseURL:   "https://" + host,
		transport: newTransport("pricescout", 1, 3),
		logger:    logger,
	}
}

func (p *PriceScoutProvider) Name() string  { return "pricescout" }
func (p *PriceScoutProvider) Enabled() bool { return p.apiKey != "" }

// junkTitlePatterns mark scraped listing-page noise that sometimes comes
// back as a "product" (e.g. "1-48 of 177 results Sort by: Featured").
var junkTitlePatterns = []string{
	"results sort by",
	"sort by: featured",
	"buy products online at best price",
	"all categories | flipkart.com",
	"amazon.in :",
}

// Search implements domain.MarketplaceProvider.
func (p *PriceScoutProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.Product, error) {
	if !p.Enabled() {
		return nil, nil
	}

	payload, err := json.Marshal(map[string]any{
		"query": query,
		"limit": maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.host)
	req.Header.Set("Content-Type", "application/json")

	body, err := p.transport.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	items := extractItems(parsed)
	products := make([]domain.Product, 0, len(items))
	for _, raw := range items {
		product, ok := p.parseItem(raw)
		if !ok {
			continue
		}
		products = append(products, product)
	}

	p.logger.Info("pricescout results", zap.Int("count", len(products)))
	return products, nil
}

// extractItems handles the API's inconsistent response shapes: items may
// live under "products", "results" or "data.products".
func extractItems(parsed map[string]json.RawMessage) []json.RawMessage {
	for _, key := range []string{"products", "results"} {
		if raw, ok := parsed[key]; ok {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err == nil && len(items) > 0 {
				return items
			}
		}
	}
	if raw, ok := parsed["data"]; ok {
		var nested struct {
			Products []json.RawMessage `json:"products"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil {
			return nested.Products
		}
	}
	return nil
}

type priceScoutItem struct {
	Title        string `json:"title"`
	Name         string `json:"name"`
	ProductName  string `json:"productName"`
	Price        any    `json:"price"` // number or formatted string, provider dependent
	CurrentPrice any    `json:"currentPrice"`
	Currency     string `json:"currency"`
	URL          string `json:"url"`
	ProductURL   string `json:"product_url"`
	Link         string `json:"link"`
	Image        string `json:"image"`
	ImageURL1    string `json:"image_url"`
	ImageURL2    string `json:"imageUrl"`
	Brand        string `json:"brand"`
}

// parseItem converts one raw item, reporting false for malformed or junk
// entries so a single bad record never discards the batch.
func (p *PriceScoutProvider) parseItem(raw json.RawMessage) (domain.Product, bool) {
	var item priceScoutItem
	if err := json.Unmarshal(raw, &item); err != nil {
		p.logger.Warn("skipping malformed pricescout item", zap.Error(err))
		return domain.Product{}, false
	}

	name := firstOf(item.Title, item.Name, item.ProductName)
	if name == "" {
		return domain.Product{}, false
	}

	priceVal := priceOf(item.Price)
	if priceVal <= 0 {
		priceVal = priceOf(item.CurrentPrice)
	}

	productURL := firstOf(item.URL, item.ProductURL, item.Link)
	imageURL := firstOf(item.Image, item.ImageURL1, item.ImageURL2)
	if priceVal <= 0 || productURL == "" || imageURL == "" {
		return domain.Product{}, false
	}

	nameLower := strings.ToLower(name)
	for _, pattern := range junkTitlePatterns {
		if strings.Contains(nameLower, pattern) {
			return domain.Product{}, false
		}
	}

	currency := item.Currency
	if currency == "" {
		currency = "INR"
	}
	return domain.Product{
		Name:        name,
		Price:       priceVal,
		Currency:    currency,
		URL:         productURL,
		ImageURL:    imageURL,
		Brand:       item.Brand,
		Marketplace: p.Name(),
	}, true
}

// priceOf converts a price of whatever JSON type the API sent.
func priceOf(v any) float64 {
	switch p := v.(type) {
	case float64:
		return p
	case string:
		return parsePrice(p)
	default:
		return 0
	}
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
