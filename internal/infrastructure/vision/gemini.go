// Package vision adapts the Gemini vision model to the
// domain.AttributeExtractor capability through Gemini's OpenAI-compatible
// chat completion endpoint.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/stylistai/backend/internal/domain"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultModel   = "gemini-2.5-flash-lite"
	maxAttempts    = 3
	retryDelay     = time.Second
)

// analysisPrompt asks for the structured attribute record. The tags
// field carries the marketplace-search hints the query pipeline depends
// on, so the prompt leans hard on it.
const analysisPrompt = `You are a professional fashion stylist and product search expert.
Analyze this clothing item in GREAT DETAIL and return valid JSON.
CRITICAL: If this is a specific type like varsity jacket, bomber, letterman jacket,
denim jacket, etc. - you MUST specify that in category AND tags.

Return JSON with these fields:

"category": "SPECIFIC type (e.g. 'varsity jacket', 'bomber jacket', 'denim jacket', 'hoodie')",
"subcategory": "more specific if applicable (e.g. 'college letterman', 'cropped bomber')",
"colors": ["primary", "secondary", "accent"],
"pattern": "pattern description or null",
"material": "fabric description",
"fit": "silhouette (oversized/slim/relaxed)",
"details": "notable design details (patches, embroidery, buttons, etc.)",
"brand": "brand name or 'unbranded'",
"target_audience": "men/women/unisex",
"style": "style label (streetwear/casual/preppy/vintage/sporty)",
"season": "suitable season",
"description": "3-5 sentences describing the item richly",
"search_query": "SHORT 4-7 word phrase for marketplace search",
"search_keywords": ["key", "words", "for", "search"],
"tags": ["VERY", "SPECIFIC", "search", "tags", "here"]

TAGS FIELD IS CRITICAL:
- Include the MOST SPECIFIC terms someone would search for THIS exact item
- Include 5-10 highly specific tags that distinguish this from similar items

RULES:
- Answer ONLY with JSON, no markdown
- Use double quotes
- If unsure, use null
- Be VERY specific in category and tags`

// Config holds the Gemini client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Extractor implements domain.AttributeExtractor against Gemini.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewExtractor creates the Gemini extractor. A missing API key leaves it
// unconfigured; calls then fail with ErrExtractorUnavailable.
func NewExtractor(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.APIKey == "" {
		logger.Warn("gemini api key not configured, extractor unavailable")
		return &Extractor{logger: logger, model: cfg.Model}
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if clientCfg.BaseURL == "" {
		clientCfg.BaseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// ModelName implements domain.AttributeExtractor.
func (e *Extractor) ModelName() string { return e.model }

// AnalyzeImage implements domain.AttributeExtractor. Retries transient
// failures a bounded number of times with backoff; a quota/rate-limit
// signal stops the retries immediately.
func (e *Extractor) AnalyzeImage(ctx context.Context, imagePath string) (*domain.ClothingAnalysis, error) {
	if e.client == nil {
		return nil, domain.ErrExtractorUnavailable
	}

	imageURL, err := encodeImage(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e.logger.Info("analyzing clothing image",
			zap.Int("attempt", attempt),
			zap.String("model", e.model),
		)

		analysis, err := e.requestAnalysis(ctx, imageURL)
		if err == nil {
			return analysis, nil
		}
		lastErr = err

		if isQuotaError(err) {
			e.logger.Error("quota exhausted, aborting retries", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", domain.ErrQuotaExhausted, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < maxAttempts {
			e.logger.Warn("analysis attempt failed, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, lastErr)
}

func (e *Extractor) requestAnalysis(ctx context.Context, imageURL string) (*domain.ClothingAnalysis, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   1024,
		Temperature: 0.6,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: analysisPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var analysis domain.ClothingAnalysis
	if err := json.Unmarshal([]byte(jsonStr), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	normalize(&analysis)

	e.logger.Info("analysis complete",
		zap.String("category", analysis.Category),
		zap.Int("tags", len(analysis.Tags)),
	)
	return &analysis, nil
}

// extractJSON returns the outermost brace-delimited window of the text,
// tolerating stray prose around the JSON body.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// normalize fills the required fields the rest of the pipeline assumes.
func normalize(a *domain.ClothingAnalysis) {
	if a.Category == "" {
		a.Category = "unknown"
	}
	if a.Colors == nil {
		a.Colors = []string{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
}

// isQuotaError recognizes rate-limit/quota responses worth aborting on.
func isQuotaError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted")
}

// encodeImage renders the image reference for the chat completion image
// part: remote URLs pass through, local files become base64 data URLs.
func encodeImage(imagePath string) (string, error) {
	if strings.HasPrefix(imagePath, "http://") || strings.HasPrefix(imagePath, "https://") {
		return imagePath, nil
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	mime := "image/jpeg"
	switch strings.ToLower(filepath.Ext(imagePath)) {
	case ".png":
		mime = "image/png"
	case ".webp":
		mime = "image/webp"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
