// Package tokencount estimates token usage for LLM calls when the provider
// omits usage data. It wraps tiktoken-go and caches encodings per model.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// Usage is the token accounting for one chat completion.
type Usage struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// Counter provides thread-safe token counting.
type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewCounter creates a Counter with an empty encoding cache.
func NewCounter() *Counter {
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// DefaultCounter is the process-wide counter.
var DefaultCounter = NewCounter()

func (c *Counter) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	name := normalizeModelName(model)

	c.mu.RLock()
	enc, ok := c.cache[name]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[name]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		slog.Debug("falling back to cl100k_base encoding",
			slog.String("model", model), slog.Any("error", err))
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	c.cache[name] = enc
	return enc, nil
}

// normalizeModelName maps provider model IDs onto tiktoken-known families.
func normalizeModelName(model string) string {
	model = strings.ToLower(model)
	if i := strings.LastIndex(model, "/"); i >= 0 {
		model = model[i+1:]
	}
	switch {
	case strings.Contains(model, "gpt-3.5"):
		return "gpt-3.5-turbo"
	case strings.Contains(model, "gpt-4o"), strings.Contains(model, "gpt-4"):
		return "gpt-4"
	default:
		// cl100k_base is a reasonable approximation for everything else
		return "gpt-4"
	}
}

// CountTokens counts tokens in text for the given model.
func (c *Counter) CountTokens(text, model string) (int, error) {
	enc, err := c.encodingFor(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// EstimateUsage counts prompt and completion tokens, falling back to a
// chars/4 estimate when the tokenizer is unavailable.
func (c *Counter) EstimateUsage(prompt, completion, model string) Usage {
	pt, err := c.CountTokens(prompt, model)
	if err != nil {
		slog.Warn("prompt token count failed, estimating", slog.String("model", model), slog.Any("error", err))
		pt = len(prompt) / 4
	}
	// Per-message framing overhead for OpenAI-compatible chat APIs.
	pt += 7
	ct, err := c.CountTokens(completion, model)
	if err != nil {
		slog.Warn("completion token count failed, estimating", slog.String("model", model), slog.Any("error", err))
		ct = len(completion) / 4
	}
	return Usage{PromptTokens: pt, CompletionTokens: ct, TotalTokens: pt + ct, Model: model}
}

// EstimateUsageDefault uses the process-wide counter.
func EstimateUsageDefault(prompt, completion, model string) Usage {
	return DefaultCounter.EstimateUsage(prompt, completion, model)
}
