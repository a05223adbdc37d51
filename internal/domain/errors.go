package domain

import "errors"

var (
	// ErrItemNotFound is returned when a wardrobe item does not exist or
	// is not owned by the requesting user.
	ErrItemNotFound = errors.New("wardrobe item not found")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrExtractorUnavailable is returned when the vision model cannot be
	// reached or is not configured.
	ErrExtractorUnavailable = errors.New("attribute extractor unavailable")

	// ErrAnalysisFailed is returned when the vision model returned no
	// usable attribute record for an image.
	ErrAnalysisFailed = errors.New("clothing analysis failed")

	// ErrQuotaExhausted signals a rate-limit/quota response from an
	// upstream service; retries must stop immediately.
	ErrQuotaExhausted = errors.New("upstream quota exhausted")

	// ErrMarketplaceUnavailable is returned when every dispatched
	// marketplace provider failed in an aggregation round.
	ErrMarketplaceUnavailable = errors.New("all marketplace providers unavailable")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend is unreachable.
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
