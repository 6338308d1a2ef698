// Package gemini implements domain.AIClient backed by the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"

	"log/slog"

	"github.com/fairyhunter13/ai-interview-coach/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-coach/internal/config"
	"github.com/fairyhunter13/ai-interview-coach/internal/domain"
)

// Client implements domain.AIClient using the Gemini generateContent API.
// It is constructed once at process start and shared across requests.
type Client struct {
	cfg    config.Config
	client *genai.Client
	model  string
}

// New constructs a Gemini client. The API key is required; the model name
// falls back to the configured default.
func New(ctx context.Context, cfg config.Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY missing", domain.ErrInvalidArgument)
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("op=gemini.new: %w", err)
	}
	return &Client{cfg: cfg, client: cli, model: cfg.GeminiModel}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

func (c *Client) backoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// GenerateContent sends one prompt to Gemini with fixed sampling temperature
// and bounded output length, retrying transient failures with exponential
// backoff. Client errors (4xx) and empty replies are permanent.
func (c *Client) GenerateContent(ctx domain.Context, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt must not be empty", domain.ErrInvalidArgument)
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.GeminiMaxOutputTokens
	}

	gcfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.GeminiTemperature)),
		MaxOutputTokens: int32(maxTokens),
	}

	var text string
	op := func() error {
		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.GeminiTimeout)
		defer cancel()

		resp, err := c.client.Models.GenerateContent(attemptCtx, c.model, genai.Text(prompt), gcfg)
		observability.AIRequestsTotal.WithLabelValues("gemini", "generate_content").Inc()
		observability.AIRequestDuration.WithLabelValues("gemini", "generate_content").Observe(time.Since(start).Seconds())
		if err != nil {
			return classify(err, ctx)
		}
		text = collectText(resp)
		if text == "" {
			slog.Warn("gemini returned empty response", slog.String("model", c.model))
			return backoff.Permanent(fmt.Errorf("%w: empty response from model", domain.ErrSchemaInvalid))
		}
		return nil
	}

	expo := c.backoffConfig()
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		slog.Error("gemini call failed after retries",
			slog.String("model", c.model),
			slog.Any("error", err))
		return "", fmt.Errorf("op=gemini.generate_content: %w", err)
	}
	return text, nil
}

// classify maps a genai error to the domain taxonomy and decides
// retryability. 429 and 5xx are retryable; other 4xx are permanent.
func classify(err error, ctx context.Context) error {
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		// The per-attempt deadline fired, not the caller's; retry.
		slog.Warn("gemini request timed out", slog.Any("error", err))
		return fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			slog.Warn("gemini rate limited", slog.Int("status", apiErr.Code))
			return fmt.Errorf("%w: %v", domain.ErrUpstreamRateLimit, err)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			slog.Warn("gemini 4xx", slog.Int("status", apiErr.Code), slog.String("status_text", apiErr.Status))
			return backoff.Permanent(fmt.Errorf("gemini status %d: %v", apiErr.Code, err))
		default:
			slog.Error("gemini non-2xx", slog.Int("status", apiErr.Code))
			return fmt.Errorf("gemini status %d: %v", apiErr.Code, err)
		}
	}
	// Transport-level failure: retryable.
	return err
}

// collectText concatenates the textual parts of all candidates.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			t := strings.TrimSpace(part.Text)
			if t == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(t)
		}
	}
	return strings.TrimSpace(sb.String())
}
