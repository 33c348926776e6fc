package tokencount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeModelName(t *testing.T) {
	assert.Equal(t, "gpt-4", normalizeModelName("gpt-4o"))
	assert.Equal(t, "gpt-4", normalizeModelName("openai/gpt-4o-mini"))
	assert.Equal(t, "gpt-3.5-turbo", normalizeModelName("GPT-3.5-Turbo"))
	assert.Equal(t, "gpt-4", normalizeModelName("some-unknown-model"))
}

func TestEstimateUsage(t *testing.T) {
	c := NewCounter()
	u := c.EstimateUsage("hello world, this is a prompt", "and this is a completion", "gpt-4o")
	assert.Greater(t, u.PromptTokens, 7) // framing overhead alone is 7
	assert.Greater(t, u.CompletionTokens, 0)
	assert.Equal(t, u.PromptTokens+u.CompletionTokens, u.TotalTokens)
	assert.Equal(t, "gpt-4o", u.Model)
}

func TestEstimateUsageDeterministic(t *testing.T) {
	a := EstimateUsageDefault("same prompt", "same completion", "gpt-4o")
	b := EstimateUsageDefault("same prompt", "same completion", "gpt-4o")
	assert.Equal(t, a, b)
}
