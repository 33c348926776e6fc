// Package openai implements the LLM gateway against any OpenAI-compatible
// chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tailorhq/resume-tailor/internal/adapter/observability"
	"github.com/tailorhq/resume-tailor/internal/config"
	"github.com/tailorhq/resume-tailor/internal/domain"
)

// bodySnippetLimit caps how much of an upstream error body is carried in
// diagnostics.
const bodySnippetLimit = 500

// Client performs exactly one round trip per ChatJSON call. It never
// retries: the normalizers own all fallback decisions.
type Client struct {
	cfg config.Config
	hc  *http.Client
}

// New constructs a gateway client with the configured wall-clock timeout.
func New(cfg config.Config) *Client {
	return &Client{
		cfg: cfg,
		hc: &http.Client{
			Timeout:   cfg.LLMTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ChatJSON posts the prompt in JSON mode and returns the raw message content
// plus response metadata.
func (c *Client) ChatJSON(ctx domain.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	if c.cfg.OpenAIAPIKey == "" {
		return domain.ChatResponse{}, fmt.Errorf("%w: OPENAI_API_KEY missing", domain.ErrServerMisconfig)
	}

	body := map[string]any{
		"model":           req.Model,
		"temperature":     req.Temperature,
		"max_tokens":      req.MaxTokens,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
	}
	b, err := json.Marshal(body)
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: marshal chat request: %v", domain.ErrInternal, err)
	}

	endpoint := c.cfg.OpenAIBaseURL + "/chat/completions"
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return domain.ChatResponse{}, fmt.Errorf("%w: build request: %v", domain.ErrInternal, err)
	}
	hr.Header.Set("Authorization", "Bearer "+c.cfg.OpenAIAPIKey)
	hr.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(hr)
	observability.AIRequestDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues("chat", "transport_error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || isClientTimeout(err) {
			slog.Warn("llm call timed out", slog.Duration("timeout", c.cfg.LLMTimeout), slog.String("model", req.Model))
			return domain.ChatResponse{}, fmt.Errorf("%w: after %s", domain.ErrUpstreamTimeout, c.cfg.LLMTimeout)
		}
		return domain.ChatResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.AIRequestsTotal.WithLabelValues("chat", "read_error").Inc()
		return domain.ChatResponse{}, fmt.Errorf("%w: read body: %v", domain.ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.AIRequestsTotal.WithLabelValues("chat", "upstream_error").Inc()
		snippet := string(raw)
		if len(snippet) > bodySnippetLimit {
			snippet = snippet[:bodySnippetLimit]
		}
		slog.Warn("llm provider non-2xx",
			slog.Int("status", resp.StatusCode),
			slog.String("model", req.Model),
			slog.String("endpoint", endpoint),
			slog.String("x_request_id", resp.Header.Get("X-Request-Id")),
			slog.String("body", snippet))
		return domain.ChatResponse{}, fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, resp.StatusCode, snippet)
	}

	var out struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		observability.AIRequestsTotal.WithLabelValues("chat", "decode_error").Inc()
		return domain.ChatResponse{}, fmt.Errorf("%w: decode envelope: %v", domain.ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		observability.AIRequestsTotal.WithLabelValues("chat", "empty_choices").Inc()
		return domain.ChatResponse{}, fmt.Errorf("%w: empty choices", domain.ErrUpstream)
	}

	observability.AIRequestsTotal.WithLabelValues("chat", "ok").Inc()
	observability.ObserveTokens(out.Usage.PromptTokens, out.Usage.CompletionTokens)

	model := out.Model
	if model == "" {
		model = req.Model
	}
	return domain.ChatResponse{
		Content: out.Choices[0].Message.Content,
		Model:   model,
		Usage: domain.ChatUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

// isClientTimeout matches net/http's client-side deadline error, which is a
// *url.Error wrapping an error whose Timeout() is true.
func isClientTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
