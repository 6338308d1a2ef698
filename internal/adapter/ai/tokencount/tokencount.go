// Package tokencount provides token counting for prompts sent to the
// generative model, used to keep prompts inside a configured budget.
package tokencount

import (
	"strings"
	"sync"

	"log/slog"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Counter provides thread-safe token counting with cached encodings.
type Counter struct {
	encodingCache map[string]*tiktoken.Tiktoken
	mu            sync.RWMutex
}

// NewCounter creates a new token counter instance.
func NewCounter() *Counter {
	return &Counter{encodingCache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is a process-wide token counter instance.
var DefaultCounter = NewCounter()

// getEncodingForModel returns a cached tiktoken encoding for a model,
// falling back to cl100k_base for models tiktoken does not know (Gemini
// included; the count is then an approximation, which is fine for a budget
// guard).
func (c *Counter) getEncodingForModel(model string) (*tiktoken.Tiktoken, error) {
	normalized := normalizeModelName(model)

	c.mu.RLock()
	if enc, ok := c.encodingCache[normalized]; ok {
		c.mu.RUnlock()
		return enc, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encodingCache[normalized]; ok {
		return enc, nil
	}

	enc, err := tiktoken.EncodingForModel(normalized)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding",
			slog.String("model", model),
			slog.Any("error", err))
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	c.encodingCache[normalized] = enc
	return enc, nil
}

// Count returns the number of tokens in text for the given model. On
// encoding failure it returns a word-count estimate rather than an error so
// callers never fail a request over a budget check.
func (c *Counter) Count(model, text string) int {
	enc, err := c.getEncodingForModel(model)
	if err != nil {
		return len(strings.Fields(text))
	}
	return len(enc.Encode(text, nil, nil))
}

// Truncate returns text cut down to at most maxTokens tokens for the given
// model. Text within budget is returned unchanged.
func (c *Counter) Truncate(model, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	enc, err := c.getEncodingForModel(model)
	if err != nil {
		// Mirror the Count fallback so budget enforcement still happens.
		words := strings.Fields(text)
		if len(words) <= maxTokens {
			return text
		}
		return strings.Join(words[:maxTokens], " ")
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

func normalizeModelName(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	// Strip provider prefixes like "google/gemini-1.5-flash".
	if i := strings.LastIndex(m, "/"); i >= 0 {
		m = m[i+1:]
	}
	return m
}
