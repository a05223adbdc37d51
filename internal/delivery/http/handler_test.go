package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stylistai/backend/config"
	"github.com/stylistai/backend/internal/domain"
	"github.com/stylistai/backend/internal/infrastructure/cache"
	"github.com/stylistai/backend/internal/infrastructure/wardrobe"
	"github.com/stylistai/backend/internal/usecase"
)

// fakeProvider returns a fixed inventory for every query.
type fakeProvider struct {
	products []domain.Product
}

func (p *fakeProvider) Name() string  { return "shop" }
func (p *fakeProvider) Enabled() bool { return true }
func (p *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]domain.Product, error) {
	return p.products, nil
}

// fakeExtractor returns a fixed analysis.
type fakeExtractor struct {
	analysis *domain.ClothingAnalysis
	err      error
}

func (e *fakeExtractor) AnalyzeImage(ctx context.Context, imagePath string) (*domain.ClothingAnalysis, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.analysis, nil
}

func (e *fakeExtractor) ModelName() string { return "fake-vision" }

func testRouter(t *testing.T, provider domain.MarketplaceProvider, extractor domain.AttributeExtractor) (*gin.Engine, *wardrobe.MemoryRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	repo := wardrobe.NewMemoryRepository()
	analyses := usecase.NewAnalysisService(repo, extractor, cache.NewMemoryCache(), usecase.AnalysisConfig{}, logger)
	aggregator := usecase.NewMarketplaceAggregator([]domain.MarketplaceProvider{provider}, logger)
	similarity := usecase.NewSimilarityService(repo, analyses, aggregator, usecase.SimilarityConfig{}, logger)
	outfits := usecase.NewOutfitService(repo, analyses, aggregator, usecase.OutfitConfig{}, logger)

	handler := NewHandler(repo, analyses, similarity, outfits, logger)
	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	return SetupRouter(cfg, handler), repo
}

func defaultExtractor() *fakeExtractor {
	return &fakeExtractor{analysis: &domain.ClothingAnalysis{
		Category: "jacket",
		Colors:   []string{"black"},
		Tags:     []string{"varsity", "jacket"},
	}}
}

func seedItem(t *testing.T, repo *wardrobe.MemoryRepository, userID string) *domain.ClothingItem {
	t.Helper()
	item := &domain.ClothingItem{
		UserID:   userID,
		Category: "jacket",
		Color:    "black",
		ImageURL: "https://img.example/1.jpg",
	}
	require.NoError(t, repo.SaveItem(context.Background(), item))
	return item
}

func doJSON(router *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	var payload bytes.Buffer
	if body != nil {
		json.NewEncoder(&payload).Encode(body)
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _ := testRouter(t, &fakeProvider{}, defaultExtractor())

	w := doJSON(router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestUserIDRequired(t *testing.T) {
	router, _ := testRouter(t, &fakeProvider{}, defaultExtractor())

	w := doJSON(router, http.MethodGet, "/api/v1/wardrobe/items", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWardrobeItems(t *testing.T) {
	router, repo := testRouter(t, &fakeProvider{}, defaultExtractor())

	t.Run("create", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/wardrobe/items", "user-1", map[string]any{
			"category": "jacket",
			"color":    "black",
			"imageUrl": "https://img.example/1.jpg",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var created domain.ClothingItem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "user-1", created.UserID)
	})

	t.Run("get and list", func(t *testing.T) {
		item := seedItem(t, repo, "user-1")

		w := doJSON(router, http.MethodGet, "/api/v1/wardrobe/items/"+item.ID, "user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, http.MethodGet, "/api/v1/wardrobe/items", "user-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("foreign item is 404", func(t *testing.T) {
		item := seedItem(t, repo, "user-1")

		w := doJSON(router, http.MethodGet, "/api/v1/wardrobe/items/"+item.ID, "user-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestFindSimilarEndpoint(t *testing.T) {
	provider := &fakeProvider{products: []domain.Product{
		{
			Name:        "Black Varsity Jacket",
			Price:       59.99,
			Currency:    "USD",
			URL:         "https://shop.example/varsity",
			ImageURL:    "https://img.example/p.jpg",
			Marketplace: "shop",
		},
	}}
	router, repo := testRouter(t, provider, defaultExtractor())
	item := seedItem(t, repo, "user-1")

	t.Run("success", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/ai/find-similar", "user-1", map[string]any{
			"item_id": item.ID,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var result domain.SimilarResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, item.ID, result.Item.ID)
		assert.NotEmpty(t, result.SearchQuery)
	})

	t.Run("missing item_id is 400", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/ai/find-similar", "user-1", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown item is 404", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/ai/find-similar", "user-1", map[string]any{
			"item_id": "missing",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("quota exhaustion is 429", func(t *testing.T) {
		quotaRouter, quotaRepo := testRouter(t, provider, &fakeExtractor{err: domain.ErrQuotaExhausted})
		quotaItem := seedItem(t, quotaRepo, "user-1")

		w := doJSON(quotaRouter, http.MethodPost, "/api/v1/ai/find-similar", "user-1", map[string]any{
			"item_id": quotaItem.ID,
		})
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})
}

func TestBuildOutfitsEndpoint(t *testing.T) {
	provider := &fakeProvider{products: []domain.Product{
		{
			Name:        "White Sneakers",
			Price:       79.99,
			Currency:    "USD",
			URL:         "https://shop.example/sneakers",
			ImageURL:    "https://img.example/s.jpg",
			Marketplace: "shop",
		},
	}}
	router, repo := testRouter(t, provider, defaultExtractor())
	item := seedItem(t, repo, "user-1")

	t.Run("success", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/ai/build-outfits", "user-1", map[string]any{
			"item_id": item.ID,
			"plan": map[string]any{
				"outfits": []map[string]any{
					{
						"name": "Casual Look",
						"slots": []map[string]any{
							{"type": "jacket", "query": "varsity jacket"},
							{"type": "shoes", "query": "white sneakers"},
						},
					},
				},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Outfits []domain.Outfit `json:"outfits"`
			Total   int             `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, 1, body.Total)
		require.Len(t, body.Outfits[0].Slots, 2)
		assert.True(t, body.Outfits[0].Slots[0].ReusedBase)
		assert.False(t, body.Outfits[0].Slots[1].ReusedBase)
	})

	t.Run("missing plan is 400", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/ai/build-outfits", "user-1", map[string]any{
			"item_id": item.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAnalysisEndpoints(t *testing.T) {
	router, repo := testRouter(t, &fakeProvider{}, defaultExtractor())
	item := seedItem(t, repo, "user-1")

	t.Run("re-analyze", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/ai/re-analyze/"+item.ID, "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var record domain.Analysis
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, "fake-vision", record.ModelUsed)
	})

	t.Run("list analyses", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/ai/analyses", "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "fake-vision")
	})

	t.Run("clear analyses", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/v1/ai/clear-analysis/"+item.ID, "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Deleted int `json:"deleted"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Greater(t, body.Deleted, 0)
	})
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, _ := testRouter(t, &fakeProvider{}, defaultExtractor())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wardrobe/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
