package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
	"github.com/stylistai/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	wardrobe   domain.WardrobeRepository
	analyses   *usecase.AnalysisService
	similarity *usecase.SimilarityService
	outfits    *usecase.OutfitService
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	wardrobe domain.WardrobeRepository,
	analyses *usecase.AnalysisService,
	similarity *usecase.SimilarityService,
	outfits *usecase.OutfitService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		wardrobe:   wardrobe,
		analyses:   analyses,
		similarity: similarity,
		outfits:    outfits,
		logger:     logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stylist-backend",
		"version": "1.0.0",
	})
}

type findSimilarRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	domain.SearchParams
}

// FindSimilar handles similar-product search requests
func (h *Handler) FindSimilar(c *gin.Context) {
	var req findSimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.similarity.FindSimilar(c.Request.Context(), userID(c), req.ItemID, req.SearchParams)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type buildOutfitsRequest struct {
	ItemID string             `json:"item_id" binding:"required"`
	Plan   *domain.OutfitPlan `json:"plan" binding:"required"`
	domain.OutfitParams
}

// BuildOutfits resolves an outfit plan into marketplace products
func (h *Handler) BuildOutfits(c *gin.Context) {
	var req buildOutfitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outfits, err := h.outfits.BuildOutfits(c.Request.Context(), userID(c), req.ItemID, req.Plan, req.OutfitParams)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outfits": outfits,
		"total":   len(outfits),
	})
}

// Reanalyze forces a fresh image analysis for an item
func (h *Handler) Reanalyze(c *gin.Context) {
	record, err := h.analyses.Reanalyze(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ClearAnalysis deletes all stored analyses for an item
func (h *Handler) ClearAnalysis(c *gin.Context) {
	deleted, err := h.analyses.ClearAnalyses(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ListAnalyses returns the user's analysis history
func (h *Handler) ListAnalyses(c *gin.Context) {
	offset, limit := pagination(c)
	records, err := h.analyses.ListAnalyses(c.Request.Context(), userID(c), offset, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analyses": records,
		"total":    len(records),
	})
}

// CreateItem stores a new wardrobe item
func (h *Handler) CreateItem(c *gin.Context) {
	var item domain.ClothingItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item.UserID = userID(c)

	if err := h.wardrobe.SaveItem(c.Request.Context(), &item); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItem returns one wardrobe item owned by the caller
func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.wardrobe.GetItem(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListItems returns the caller's wardrobe items
func (h *Handler) ListItems(c *gin.Context) {
	offset, limit := pagination(c)
	items, err := h.wardrobe.ListItems(c.Request.Context(), userID(c), offset, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
	case errors.Is(err, domain.ErrQuotaExhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "image analysis quota exhausted"})
	case errors.Is(err, domain.ErrExtractorUnavailable), errors.Is(err, domain.ErrAnalysisFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "image analysis unavailable"})
	case errors.Is(err, domain.ErrMarketplaceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "marketplace search unavailable"})
	default:
		h.logger.Error("unhandled request error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
