// Package ai implements the generative-text collaborators over the
// generative language HTTP API. Both operations are best-effort: retries and
// a circuit breaker sit in front of the endpoint, and every failure path
// degrades to a neutral result instead of surfacing an error.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/fasterr/marketplace/internal/observability/metrics"
	"github.com/fasterr/marketplace/internal/reliability/circuitbreaker"
	"github.com/fasterr/marketplace/internal/reliability/retry"
	"github.com/fasterr/marketplace/internal/service"
)

// FallbackDescription is returned whenever a description cannot be generated
const FallbackDescription = "Please provide more details about your item."

// Config holds the collaborator endpoint settings
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
}

// Client calls the generative endpoint. It implements both
// service.DescriptionGenerator and service.QueryParser.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	retry   *retry.Config
	logger  *slog.Logger
}

// NewClient creates a collaborator client. An empty API key yields a client
// that always degrades, which keeps the rest of the engine functional.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://generativelanguage.googleapis.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-3-flash-preview"
	}

	breaker := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("collaborator circuit state changed",
			slog.Int("from", int(from)),
			slog.Int("to", int(to)),
		)
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: breaker,
		retry:   retry.DefaultConfig(),
		logger:  logger,
	}
}

// GenerateDescription writes a short sales description for a listing. Any
// failure returns the generic fallback.
func (c *Client) GenerateDescription(ctx context.Context, title, category, features string) string {
	if c.cfg.APIKey == "" {
		c.logger.Warn("description generation skipped: API key missing")
		return FallbackDescription
	}

	prompt := fmt.Sprintf(`You are an expert copywriter for an online classifieds marketplace.
Write a compelling, short, and professional sales description (approx 50-70 words) for a product.

Product Title: %s
Category: %s
Key Features/Condition: %s

Do not use markdown formatting like bolding or headers. Just plain text.
Focus on benefits and condition.`, title, category, features)

	text, err := c.generate(ctx, "description", prompt, false)
	if err != nil || text == "" {
		c.logger.Error("description generation failed", slog.String("error", errString(err)))
		metrics.ObserveCollaborator("description", "error")
		return FallbackDescription
	}
	metrics.ObserveCollaborator("description", "success")
	return text
}

// ParseQuery extracts a structured filter from a free-text search. A nil
// result means the caller applies no filter change.
func (c *Client) ParseQuery(ctx context.Context, query string) *service.SmartFilter {
	if c.cfg.APIKey == "" {
		return nil
	}

	prompt := fmt.Sprintf(`Extract search filters from this query: %q.
If a category is mentioned (like 'phone', 'car'), map it to one of these: Mobiles, Cars, Bikes, Properties for Sale, Properties for Rent, Electronics & Appliances, Furniture, Fashion, Books, Sports & Hobbies, Pets, Services. If unsure, ignore category.
Map 'cheap' to price sort asc, 'expensive' to price sort desc.
Extract locations (cities, areas).
Respond with only a JSON object with optional keys: category, location, minPrice, maxPrice, sortBy (one of price_asc, price_desc, date_desc).`, query)

	text, err := c.generate(ctx, "query_parse", prompt, true)
	if err != nil || text == "" {
		c.logger.Error("query parsing failed", slog.String("error", errString(err)))
		metrics.ObserveCollaborator("query_parse", "error")
		return nil
	}

	var sf service.SmartFilter
	if err := json.Unmarshal([]byte(text), &sf); err != nil {
		c.logger.Warn("query parser returned malformed JSON", slog.String("error", err.Error()))
		metrics.ObserveCollaborator("query_parse", "malformed")
		return nil
	}
	metrics.ObserveCollaborator("query_parse", "success")
	return &sf
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate performs one guarded endpoint call and returns the first
// candidate's text.
func (c *Client) generate(ctx context.Context, op, prompt string, jsonResponse bool) (string, error) {
	if !c.breaker.AllowRequest() {
		return "", fmt.Errorf("collaborator circuit open")
	}

	reqBody := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	if jsonResponse {
		reqBody.GenerationConfig = &generationConfig{ResponseMIMEType: "application/json"}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.Endpoint, c.cfg.Model, c.cfg.APIKey)

	text, err := retry.Do(ctx, c.retry, c.logger, op, func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("collaborator returned status %d", resp.StatusCode)
		}

		var gr generateResponse
		if err := json.Unmarshal(body, &gr); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("collaborator returned no candidates")
		}
		return gr.Candidates[0].Content.Parts[0].Text, nil
	})
	if err != nil {
		c.breaker.RecordFailure()
		return "", err
	}
	c.breaker.RecordSuccess()
	return text, nil
}

func errString(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
