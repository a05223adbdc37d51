package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

// AsosProvider searches the ASOS catalog through RapidAPI.
type AsosProvider struct {
	apiKey    string
	host      string
	baseURL   string
	transport *transport
	logger    *zap.Logger
}

// NewAsosProvider creates the ASOS provider. A missing RapidAPI key
// leaves the provider disabled.
func NewAsosProvider(apiKey, host string, logger *zap.Logger) *AsosProvider {
	if host == "" {
		host = "asos2.p.rapidapi.com"
	}
	return &AsosProvider{
		apiKey:    apiKey,
		host:      host,
		baseURL:   "https://" + host,
		transport: newTransport("asos", 1, 3),
		logger:    logger,
	}
}

func (p *AsosProvider) Name() string  { return "asos" }
func (p *AsosProvider) Enabled() bool { return p.apiKey != "" }

type asosItem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	BrandName string `json:"brandName"`
	ImageURL  string `json:"imageUrl"`
	Price     struct {
		Current struct {
			Value float64 `json:"value"`
		} `json:"current"`
		Currency string `json:"currency"`
	} `json:"price"`
}

type asosResponse struct {
	Products []asosItem `json:"products"`
}

// Search implements domain.MarketplaceProvider.
func (p *AsosProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.Product, error) {
	if !p.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("store", "US")
	params.Set("offset", "0")
	params.Set("limit", fmt.Sprintf("%d", maxResults))
	params.Set("country", "US")
	params.Set("sort", "freshness")
	params.Set("q", query)
	params.Set("currency", "USD")
	params.Set("sizeSchema", "US")
	params.Set("lang", "en-US")

	reqURL := fmt.Sprintf("%s/products/v2/list?%s", p.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", p.apiKey)
	req.Header.Set("X-RapidAPI-Host", p.host)

	body, err := p.transport.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var parsed asosResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(parsed.Products))
	for _, item := range parsed.Products {
		if item.Name == "" {
			continue
		}
		imageURL := item.ImageURL
		if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
			imageURL = "https://" + imageURL
		}
		productURL := ""
		if item.ID != 0 {
			productURL = fmt.Sprintf("https://www.asos.com/us/prd/%d", item.ID)
		}
		currency := item.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		brand := item.BrandName
		if brand == "" {
			brand = "ASOS"
		}
		products = append(products, domain.Product{
			Name:        item.Name,
			Price:       item.Price.Current.Value,
			Currency:    currency,
			URL:         productURL,
			ImageURL:    imageURL,
			Brand:       brand,
			Marketplace: p.Name(),
		})
	}

	p.logger.Info("asos results", zap.Int("count", len(products)))
	return products, nil
}
