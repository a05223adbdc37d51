package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

const serperBaseURL = "https://google.serper.dev/shopping"

// SerperProvider searches Google Shopping via Serper.dev.
//
// URL policy: return only product pages. Prefer the merchant product
// page when it does not look like a search/listing URL, otherwise fall
// back to the Google Shopping product card. Never return search pages.
type SerperProvider struct {
	apiKey    string
	baseURL   string
	transport *transport
	logger    *zap.Logger
}

// NewSerperProvider creates the Google Shopping provider. A missing API
// key leaves the provider disabled.
func NewSerperProvider(apiKey string, logger *zap.Logger) *SerperProvider {
	if apiKey == "" {
		logger.Warn("serper api key not configured, provider disabled")
	}
	return &SerperProvider{
		apiKey:    apiKey,
		baseURL:   serperBaseURL,
		transport: newTransport("google_shopping", 2, 5),
		logger:    logger,
	}
}

func (p *SerperProvider) Name() string  { return "google_shopping" }
func (p *SerperProvider) Enabled() bool { return p.apiKey != "" }

type serperItem struct {
	Title       string  `json:"title"`
	Price       string  `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Link        string  `json:"link"`
	ProductLink string  `json:"productLink"`
	Source      string  `json:"source"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
	Delivery    string  `json:"delivery"`
}

type serperResponse struct {
	Shopping []serperItem `json:"shopping"`
}

// Search implements domain.MarketplaceProvider.
func (p *SerperProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.Product, error) {
	if !p.Enabled() {
		return nil, nil
	}

	// Ask for more than needed; the cards-only filter is aggressive.
	num := maxResults * 4
	if num > 80 {
		num = 80
	}
	payload, err := json.Marshal(map[string]any{
		"q":   query + " buy online",
		"gl":  "us",
		"hl":  "en",
		"num": num,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := p.transport.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var parsed serperResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	products := p.parseCards(parsed.Shopping, maxResults)
	p.logger.Info("serper cards-only results", zap.Int("count", len(products)))
	return products, nil
}

func (p *SerperProvider) parseCards(items []serperItem, maxResults int) []domain.Product {
	products := make([]domain.Product, 0, maxResults)
	for _, item := range items {
		if len(products) >= maxResults {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		price := parsePrice(item.Price)
		if price <= 0 {
			continue
		}
		imageURL := strings.TrimSpace(item.ImageURL)
		if imageURL == "" {
			continue
		}
		url := pickBestURL(strings.TrimSpace(item.Link), strings.TrimSpace(item.ProductLink))
		if url == "" {
			continue
		}

		brand := item.Source
		if brand == "" {
			brand = "Unknown"
		}
		products = append(products, domain.Product{
			Name:         title,
			Price:        price,
			Currency:     "USD",
			URL:          url,
			ImageURL:     imageURL,
			Brand:        brand,
			Marketplace:  p.Name(),
			Rating:       item.Rating,
			ReviewsCount: item.RatingCount,
			Delivery:     item.Delivery,
		})
	}
	return products
}

// pickBestURL prefers the merchant product page, falls back to the
// Google Shopping product card, and rejects everything else.
func pickBestURL(merchantLink, productLink string) string {
	if merchantLink != "" && isProductPageURL(merchantLink) {
		return merchantLink
	}
	if productLink != "" && isGoogleProductCardURL(productLink) {
		return productLink
	}
	return ""
}

func isGoogleProductCardURL(url string) bool {
	u := strings.ToLower(url)
	return strings.Contains(u, "google.") && strings.Contains(u, "/shopping/product/")
}

// searchPagePatterns mark store search/listing pages, which are never
// valid product results.
var searchPagePatterns = []string{
	"/search?",
	"/search/?",
	"/sr?",
	"keyword=",
	"searchterm=",
	"/s?k=",
	"/sch/i.html",
	"search-results",
}

func isProductPageURL(url string) bool {
	u := strings.ToLower(url)
	if strings.Contains(u, "google.com/search") || strings.Contains(u, "tbm=shop") {
		return false
	}
	for _, pattern := range searchPagePatterns {
		if strings.Contains(u, pattern) {
			return false
		}
	}
	return true
}

// parsePrice extracts a numeric price from strings like "$59.99".
func parsePrice(s string) float64 {
	var b strings.Builder
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	price, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return price
}
