package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"homeval/server/config"
	"homeval/server/internal/models"
)

// AugmentationError reports a failed or timed-out narrative generation. It is
// always absorbed at the augmenter boundary and never reaches the caller of
// the numeric estimate.
type AugmentationError struct {
	Reason string
	Err    error
}

func (e *AugmentationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("narrative generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("narrative generation failed: %s", e.Reason)
}

func (e *AugmentationError) Unwrap() error {
	return e.Err
}

// Request carries everything the text-generation capability needs for one
// narrative.
type Request struct {
	Subject     models.UnitSpec
	Estimate    models.EstimateResult
	Comparables []models.AdjustedComparable
	APIKey      string
}

// Client talks to an external chat-completion style text-generation service.
type Client struct {
	endpoint       string
	model          string
	maxComparables int
	client         *http.Client
	logger         *logrus.Logger
}

func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		endpoint:       cfg.Insight.Endpoint,
		model:          cfg.Insight.Model,
		maxComparables: cfg.Insight.MaxComparables,
		client: &http.Client{
			Timeout: cfg.Insight.Timeout,
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate requests a short narrative for the estimate. The caller's context
// bounds the call; any fault maps to an AugmentationError.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", &AugmentationError{Reason: "no credential configured"}
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a concise real-estate analyst. Summarize the estimate in at most three sentences for a homeowner. Do not invent numbers."},
			{Role: "user", Content: c.prompt(req)},
		},
		MaxTokens: 200,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", &AugmentationError{Reason: "marshal request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(body))
	if err != nil {
		return "", &AugmentationError{Reason: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &AugmentationError{Reason: "call text-generation service", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", &AugmentationError{Reason: "invalid credential"}
		case http.StatusTooManyRequests:
			return "", &AugmentationError{Reason: "rate limited"}
		default:
			return "", &AugmentationError{Reason: fmt.Sprintf("service returned status %d: %s", resp.StatusCode, string(raw))}
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &AugmentationError{Reason: "malformed response", Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &AugmentationError{Reason: "empty response", Err: errors.New("no choices returned")}
	}

	narrative := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if narrative == "" {
		return "", &AugmentationError{Reason: "empty narrative"}
	}
	return narrative, nil
}

// prompt renders the subject, the estimate and the top comparables into a
// compact plain-text summary for the model.
func (c *Client) prompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s %s, %s parking spaces: %d, locker: %t.\n",
		req.Subject.Category, req.Subject.SubCategory, req.Subject.Direction,
		req.Subject.Parking, req.Subject.HasLocker)
	if req.Subject.Bedrooms != nil {
		fmt.Fprintf(&b, "Bedrooms: %d.\n", *req.Subject.Bedrooms)
	}
	if req.Subject.Bathrooms != nil {
		fmt.Fprintf(&b, "Bathrooms: %d.\n", *req.Subject.Bathrooms)
	}
	if req.Subject.AreaSqft != nil {
		fmt.Fprintf(&b, "Living area: %.0f sqft.\n", *req.Subject.AreaSqft)
	} else if req.Subject.AreaRange != nil {
		fmt.Fprintf(&b, "Living area: %.0f-%.0f sqft.\n", req.Subject.AreaRange.Low, req.Subject.AreaRange.High)
	}

	fmt.Fprintf(&b, "Estimate: %d (range %d-%d), confidence %s, based on %d comparables at the %s tier.\n",
		req.Estimate.EstimatedPrice, req.Estimate.PriceRange.Low, req.Estimate.PriceRange.High,
		req.Estimate.Confidence, req.Estimate.SampleCount, req.Estimate.Tier.Name)

	limit := c.maxComparables
	if limit > len(req.Comparables) {
		limit = len(req.Comparables)
	}
	for i := 0; i < limit; i++ {
		comp := req.Comparables[i]
		fmt.Fprintf(&b, "Comparable %d: closed %s for %d (adjusted %d).\n",
			i+1, comp.CloseDate.Format(time.DateOnly), comp.ClosePrice, comp.AdjustedPrice)
	}

	return b.String()
}
