package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSerperProviderDisabled(t *testing.T) {
	provider := NewSerperProvider("", zap.NewNop())

	assert.False(t, provider.Enabled())

	products, err := provider.Search(context.Background(), "varsity jacket", 10)
	require.NoError(t, err)
	assert.Nil(t, products)
}

func TestSerperProviderSearch(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"shopping": []map[string]any{
				{
					"title":       "Black Varsity Jacket",
					"price":       "$59.99",
					"imageUrl":    "https://img.example/1.jpg",
					"link":        "https://store.example/products/varsity-jacket",
					"source":      "Store",
					"rating":      4.5,
					"ratingCount": 120,
				},
				{
					// Missing price, must be skipped
					"title":    "Untagged Jacket",
					"imageUrl": "https://img.example/2.jpg",
					"link":     "https://store.example/products/untagged",
				},
				{
					// Search page link with no product card, must be skipped
					"title":    "Search Page Jacket",
					"price":    "$10.00",
					"imageUrl": "https://img.example/3.jpg",
					"link":     "https://store.example/search?q=jacket",
				},
				{
					// Search page link but a valid Google product card
					"title":       "Card Jacket",
					"price":       "$25.00",
					"imageUrl":    "https://img.example/4.jpg",
					"link":        "https://store.example/search?q=card",
					"productLink": "https://www.google.com/shopping/product/123",
				},
			},
		})
	}))
	defer server.Close()

	provider := NewSerperProvider("test-key", zap.NewNop())
	provider.baseURL = server.URL

	products, err := provider.Search(context.Background(), "black varsity jacket", 10)
	require.NoError(t, err)

	assert.Equal(t, "black varsity jacket buy online", gotBody["q"])
	assert.Equal(t, float64(40), gotBody["num"])

	require.Len(t, products, 2)
	assert.Equal(t, "Black Varsity Jacket", products[0].Name)
	assert.Equal(t, 59.99, products[0].Price)
	assert.Equal(t, "https://store.example/products/varsity-jacket", products[0].URL)
	assert.Equal(t, "google_shopping", products[0].Marketplace)
	assert.Equal(t, 4.5, products[0].Rating)
	assert.Equal(t, 120, products[0].ReviewsCount)

	assert.Equal(t, "https://www.google.com/shopping/product/123", products[1].URL)
}

func TestSerperProviderSearchCapsResults(t *testing.T) {
	items := make([]map[string]any, 10)
	for i := range items {
		items[i] = map[string]any{
			"title":    "Jacket",
			"price":    "$10.00",
			"imageUrl": "https://img.example/i.jpg",
			"link":     "https://store.example/products/jacket",
		}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"shopping": items})
	}))
	defer server.Close()

	provider := NewSerperProvider("test-key", zap.NewNop())
	provider.baseURL = server.URL

	products, err := provider.Search(context.Background(), "jacket", 3)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestSerperProviderSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	provider := NewSerperProvider("test-key", zap.NewNop())
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "jacket", 5)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPickBestURL(t *testing.T) {
	tests := []struct {
		name         string
		merchantLink string
		productLink  string
		want         string
	}{
		{
			name:         "merchant product page wins",
			merchantLink: "https://store.example/products/jacket",
			productLink:  "https://www.google.com/shopping/product/123",
			want:         "https://store.example/products/jacket",
		},
		{
			name:         "search page falls back to product card",
			merchantLink: "https://store.example/search?q=jacket",
			productLink:  "https://www.google.com/shopping/product/123",
			want:         "https://www.google.com/shopping/product/123",
		},
		{
			name:         "google search page is rejected",
			merchantLink: "https://www.google.com/search?tbm=shop&q=jacket",
			productLink:  "",
			want:         "",
		},
		{
			name:         "non-card product link is rejected",
			merchantLink: "",
			productLink:  "https://store.example/search?q=jacket",
			want:         "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickBestURL(tt.merchantLink, tt.productLink))
		})
	}
}

func TestIsProductPageURL(t *testing.T) {
	assert.True(t, isProductPageURL("https://store.example/products/jacket-123"))
	assert.False(t, isProductPageURL("https://store.example/sr?keyword=jacket"))
	assert.False(t, isProductPageURL("https://www.ebay.com/sch/i.html?_nkw=jacket"))
	assert.False(t, isProductPageURL("https://www.amazon.com/s?k=jacket"))
	assert.False(t, isProductPageURL("https://www.google.com/search?q=jacket&tbm=shop"))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"$59.99", 59.99},
		{"USD 1,299.00", 1299.00},
		{"free", 0},
		{"", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parsePrice(tt.in), "parsePrice(%q)", tt.in)
	}
}
