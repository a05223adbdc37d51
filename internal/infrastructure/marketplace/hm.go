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

// HMProvider searches the H&M catalog through RapidAPI.
type HMProvider struct {
	apiKey    string
	host      string
	baseURL   string
	transport *transport
	logger    *zap.Logger
}

// NewHMProvider creates the H&M provider. A missing RapidAPI key leaves
// the provider disabled.
func NewHMProvider(apiKey, host string, logger *zap.Logger) *HMProvider {
	if host == "" {
		host = "apidojo-hm-hennes-mauritz-v1.p.rapidapi.com"
	}
	return &HMProvider{
		apiKey:    apiKey,
		host:      host,
		baseURL:   "https://" + host,
		transport: newTransport("hm", 1, 3),
		logger:    logger,
	}
}

func (p *HMProvider) Name() string  { return "hm" }
func (p *HMProvider) Enabled() bool { return p.apiKey != "" }

type hmItem struct {
	Name        string `json:"name"`
	ArticleCode string `json:"articleCode"`
	Price       struct {
		Value       float64 `json:"value"`
		CurrencyIso string  `json:"currencyIso"`
	} `json:"price"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

type hmResponse struct {
	Results []hmItem `json:"results"`
}

// Search implements domain.MarketplaceProvider.
func (p *HMProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.Product, error) {
	if !p.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("country", "us")
	params.Set("lang", "en")
	params.Set("currentpage", "0")
	params.Set("pagesize", fmt.Sprintf("%d", maxResults))
	params.Set("q", query)

	reqURL := fmt.Sprintf("%s/products/list?%s", p.baseURL, params.Encode())
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

	var parsed hmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		if item.Name == "" {
			continue
		}
		productURL := ""
		if item.ArticleCode != "" {
			productURL = fmt.Sprintf("https://www2.hm.com/en_us/productpage.%s.html", item.ArticleCode)
		}
		imageURL := ""
		if len(item.Images) > 0 {
			imageURL = item.Images[0].URL
			if imageURL != "" && !strings.HasPrefix(imageURL, "http") {
				imageURL = "https:" + imageURL
			}
		}
		currency := item.Price.CurrencyIso
		if currency == "" {
			currency = "USD"
		}
		products = append(products, domain.Product{
			Name:        item.Name,
			Price:       item.Price.Value,
			Currency:    currency,
			URL:         productURL,
			ImageURL:    imageURL,
			Brand:       "H&M",
			Marketplace: p.Name(),
		})
	}

	p.logger.Info("hm results", zap.Int("count", len(products)))
	return products, nil
}
