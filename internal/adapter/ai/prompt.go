// Package ai provides the prompt builder, response cleaning, and caching
// wrappers shared by both LLM pipelines.
package ai

import (
	"fmt"
	"strings"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

// MaxWriterKeywords caps how many gaps a single rewrite may target.
const MaxWriterKeywords = 5

// writerJDContextLimit bounds how much of the job description is echoed into
// the writer prompt; the full text adds cost without improving edits.
const writerJDContextLimit = 1000

const riskSchemaBlock = `{
  "overall_score": <number 0-100>,
  "keyword_coverage": {
    "score": <number 0-50>,
    "matched_keywords": [
      "<exact phrase from JD that appears in resume>",
      "<another exact phrase>"
    ],
    "missing_keywords": [
      {
        "keyword": "<exact phrase from JD>",
        "importance": "critical|high|medium",
        "risk": "placeholder",
        "points": 0
      }
    ]
  },
  "language_alignment": {
    "score": <number 0-50>
  }
}`

const confidenceSchemaBlock = `{
  "overall_score": <number 0-100>,
  "keyword_coverage": {
    "score": <number 0-50>,
    "matched_keywords": [
      "<exact phrase from JD that appears in resume>"
    ],
    "missing_keywords": [
      {
        "keyword": "<exact phrase from JD>",
        "importance": "critical|high|medium",
        "confidence": <number 0.4-1.0>,
        "reasoning": ["<short evidence bullet>", "<short evidence bullet>"],
        "jd_quote": "<verbatim JD sentence containing the phrase, max 200 chars>"
      }
    ]
  },
  "language_alignment": {
    "score": <number 0-50>
  }
}`

// BuildScorerPrompt produces the deterministic scoring instruction set.
// It is a pure function of its inputs; callers must have validated that
// neither input is empty.
func BuildScorerPrompt(jobDescription, resume string, schema domain.GapSchema) string {
	block := riskSchemaBlock
	if schema == domain.SchemaConfidence {
		block = confidenceSchemaBlock
	}
	var b strings.Builder
	b.WriteString("You are an expert at analyzing job descriptions and resumes for keyword alignment and language matching.\n\n")
	b.WriteString("TASK: Analyze how well this resume matches the job description's language and terminology.\n\n")
	fmt.Fprintf(&b, "Job Description:\n%s\n\n", jobDescription)
	fmt.Fprintf(&b, "Resume:\n%s\n\n", resume)
	b.WriteString("CRITICAL: Be consistent in your keyword extraction. Extract the most specific, multi-word phrases rather than single words when possible. Focus on exact phrases from the JD.\n\n")
	b.WriteString("Provide your analysis in the following JSON structure (respond with ONLY valid JSON, no markdown):\n\n")
	b.WriteString(block)
	b.WriteString("\n\nRules for keyword extraction:\n")
	b.WriteString("1. Extract 15-20 total keywords/phrases from the JD\n")
	b.WriteString("2. Prefer multi-word phrases over single words (e.g., \"AI-driven insights\" not just \"AI\")\n")
	b.WriteString("3. Extract exact phrases as they appear in the JD\n")
	b.WriteString("4. Focus on: required skills, specific methodologies, tools, domain expertise, and key responsibilities\n")
	b.WriteString("5. Never claim a keyword matches unless it appears in the resume; never fabricate evidence\n")
	b.WriteString("6. Be consistent - extract the same keywords every time for the same JD\n\n")
	b.WriteString("Focus on extracting keywords from the ENTIRE job description consistently.")
	return b.String()
}

// BuildWriterPrompt produces the resume-editing instruction set for the given
// target keywords. Keywords beyond MaxWriterKeywords are dropped in caller
// order; the JD context is truncated to keep the prompt bounded.
func BuildWriterPrompt(jobDescription, resume string, keywords []string) string {
	if len(keywords) > MaxWriterKeywords {
		keywords = keywords[:MaxWriterKeywords]
	}
	jdContext := jobDescription
	if len(jdContext) > writerJDContextLimit {
		jdContext = jdContext[:writerJDContextLimit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite this resume to naturally incorporate these keywords from the job description: %s\n\n", strings.Join(keywords, ", "))
	b.WriteString("RULES:\n")
	b.WriteString("- Only modify existing content, don't fabricate experience, titles, companies, dates, or metrics\n")
	b.WriteString("- Only reframe or append truthful content; add keywords naturally in context\n")
	b.WriteString("- Preserve all original content and keep the same resume structure\n")
	b.WriteString("- Be concise\n\n")
	fmt.Fprintf(&b, "JOB DESCRIPTION (for context):\n%s\n\n", jdContext)
	fmt.Fprintf(&b, "CURRENT RESUME:\n%s\n\n", resume)
	b.WriteString("Return ONLY valid JSON with this structure (no markdown, no code blocks):\n")
	b.WriteString(`{"text":"optimized resume text here","newScore":85,"changes":[{"keyword":"added keyword","location":"where","before":"original line","after":"modified line"}]}`)
	return b.String()
}
