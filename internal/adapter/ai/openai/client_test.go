package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailorhq/resume-tailor/internal/config"
	"github.com/tailorhq/resume-tailor/internal/domain"
)

func gatewayCfg(baseURL string) config.Config {
	return config.Config{
		OpenAIAPIKey:  "test-key",
		OpenAIBaseURL: baseURL,
		OpenAIModel:   "gpt-4o",
		LLMTimeout:    2 * time.Second,
	}
}

func chatReq() domain.ChatRequest {
	return domain.ChatRequest{Prompt: "analyze this", Model: "gpt-4o", Temperature: 0.1, MaxTokens: 2000}
}

func TestChatJSONSuccess(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-2024",
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"overall_score":50}`}},
			},
			"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
		})
	}))
	defer ts.Close()

	resp, err := New(gatewayCfg(ts.URL)).ChatJSON(context.Background(), chatReq())
	require.NoError(t, err)
	assert.Equal(t, `{"overall_score":50}`, resp.Content)
	assert.Equal(t, "gpt-4o-2024", resp.Model)
	assert.Equal(t, 150, resp.Usage.TotalTokens)

	// JSON mode and a single user message are always requested.
	rf := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_object", rf["type"])
	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestChatJSONMissingKey(t *testing.T) {
	cfg := gatewayCfg("http://localhost:1")
	cfg.OpenAIAPIKey = ""
	_, err := New(cfg).ChatJSON(context.Background(), chatReq())
	require.ErrorIs(t, err, domain.ErrServerMisconfig)
}

func TestChatJSONUpstreamStatusCarriesSnippet(t *testing.T) {
	body := strings.Repeat("e", 600)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	_, err := New(gatewayCfg(ts.URL)).ChatJSON(context.Background(), chatReq())
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "status 429")
	// Body snippet is capped at 500 characters.
	assert.Contains(t, err.Error(), strings.Repeat("e", 500))
	assert.NotContains(t, err.Error(), strings.Repeat("e", 501))
}

func TestChatJSONTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer ts.Close()

	cfg := gatewayCfg(ts.URL)
	cfg.LLMTimeout = 50 * time.Millisecond
	_, err := New(cfg).ChatJSON(context.Background(), chatReq())
	require.ErrorIs(t, err, domain.ErrUpstreamTimeout)
}

func TestChatJSONEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer ts.Close()

	_, err := New(gatewayCfg(ts.URL)).ChatJSON(context.Background(), chatReq())
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Contains(t, err.Error(), "empty choices")
}

func TestChatJSONSingleRoundTrip(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := New(gatewayCfg(ts.URL)).ChatJSON(context.Background(), chatReq())
	require.Error(t, err)
	assert.Equal(t, int64(1), calls.Load())
}
