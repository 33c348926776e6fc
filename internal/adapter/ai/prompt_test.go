package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

func TestBuildScorerPromptDeterministic(t *testing.T) {
	a := BuildScorerPrompt("jd text", "resume text", domain.SchemaRisk)
	b := BuildScorerPrompt("jd text", "resume text", domain.SchemaRisk)
	assert.Equal(t, a, b)
}

func TestBuildScorerPromptContract(t *testing.T) {
	p := BuildScorerPrompt("jd text", "resume text", domain.SchemaRisk)
	assert.Contains(t, p, "jd text")
	assert.Contains(t, p, "resume text")
	assert.Contains(t, p, "15-20")
	assert.Contains(t, p, "multi-word phrases")
	assert.Contains(t, p, "never fabricate")
	assert.Contains(t, p, `"overall_score"`)
	assert.Contains(t, p, `"risk"`)
	assert.NotContains(t, p, `"confidence"`)
}

func TestBuildScorerPromptConfidenceSchema(t *testing.T) {
	p := BuildScorerPrompt("jd", "resume", domain.SchemaConfidence)
	assert.Contains(t, p, `"confidence"`)
	assert.Contains(t, p, `"jd_quote"`)
	assert.NotContains(t, p, `"risk"`)
}

func TestBuildWriterPromptCapsKeywords(t *testing.T) {
	kws := []string{"a", "b", "c", "d", "e", "f", "g"}
	p := BuildWriterPrompt("jd", "resume", kws)
	assert.Contains(t, p, "a, b, c, d, e")
	assert.NotContains(t, p, "f, g")
}

func TestBuildWriterPromptTruncatesJD(t *testing.T) {
	jd := strings.Repeat("x", 2000)
	p := BuildWriterPrompt(jd, "resume", []string{"Figma"})
	assert.NotContains(t, p, strings.Repeat("x", 1001))
	assert.Contains(t, p, strings.Repeat("x", 1000))
}

func TestBuildWriterPromptRules(t *testing.T) {
	p := BuildWriterPrompt("jd", "resume", []string{"Figma"})
	assert.Contains(t, p, "don't fabricate")
	assert.Contains(t, p, "Preserve all original content")
	assert.Contains(t, p, `"newScore"`)
}
