// Package stub provides a deterministic AI client for tests and local runs.
package stub

import (
	"encoding/json"
	"sync/atomic"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

// Client returns canned responses without any network traffic. Responses are
// consumed in order; the last one repeats. A non-nil Err is returned on every
// call instead.
type Client struct {
	Responses []string
	Err       error
	calls     atomic.Int64
}

// New returns a stub serving the given responses in order.
func New(responses ...string) *Client {
	if len(responses) == 0 {
		responses = []string{DefaultScorerResponse()}
	}
	return &Client{Responses: responses}
}

// NewErr returns a stub that fails every call with err.
func NewErr(err error) *Client { return &Client{Err: err} }

// Calls reports how many times ChatJSON has been invoked.
func (c *Client) Calls() int { return int(c.calls.Load()) }

// ChatJSON returns the next canned response.
func (c *Client) ChatJSON(_ domain.Context, req domain.ChatRequest) (domain.ChatResponse, error) {
	n := int(c.calls.Add(1)) - 1
	if c.Err != nil {
		return domain.ChatResponse{}, c.Err
	}
	if n >= len(c.Responses) {
		n = len(c.Responses) - 1
	}
	return domain.ChatResponse{
		Content: c.Responses[n],
		Model:   req.Model,
		Usage:   domain.ChatUsage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

// DefaultScorerResponse is a minimal valid scoring payload.
func DefaultScorerResponse() string {
	payload := map[string]any{
		"overall_score": 50,
		"keyword_coverage": map[string]any{
			"score":            25,
			"matched_keywords": []string{"Figma"},
			"missing_keywords": []any{
				map[string]any{"keyword": "usability testing", "importance": "high"},
			},
		},
		"language_alignment": map[string]any{"score": 30},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}
