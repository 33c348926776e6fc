// Package riskrules classifies how speculative it would be to add a missing
// keyword to a resume. Classification is purely rule-based: seniority and
// credential terms are high risk, common tools and process terms are low, and
// everything else defaults to medium. The term lists live in rules.yaml.
package riskrules

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailorhq/resume-tailor/internal/domain"
)

// Points awarded per risk level when scoring a gap.
const (
	PointsHigh   = 5
	PointsMedium = 3
	PointsLow    = 2
)

//go:embed rules.yaml
var rulesYAML []byte

type ruleSet struct {
	High map[string][]string `yaml:"high"`
	Low  map[string][]string `yaml:"low"`
}

var (
	highRe *regexp.Regexp
	lowRe  *regexp.Regexp
	// Explicit years-of-experience claims ("5+ years", "3 yrs") are always
	// high risk regardless of the term lists.
	yearsRe = regexp.MustCompile(`(?i)\b\d+\+?\s*(?:years?|yrs?)\b`)
)

func init() {
	var rs ruleSet
	if err := yaml.Unmarshal(rulesYAML, &rs); err != nil {
		panic(fmt.Sprintf("riskrules: embedded rules.yaml invalid: %v", err))
	}
	highRe = compileTerms(rs.High)
	lowRe = compileTerms(rs.Low)
}

// compileTerms builds one case-insensitive alternation from every term in the
// given groups. Word boundaries are applied only where the term starts or
// ends with a word character, so entries like "sr." still match.
func compileTerms(groups map[string][]string) *regexp.Regexp {
	var alts []string
	for _, terms := range groups {
		for _, t := range terms {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			p := regexp.QuoteMeta(t)
			if isWordChar(t[0]) {
				p = `\b` + p
			}
			if isWordChar(t[len(t)-1]) {
				p += `\b`
			}
			alts = append(alts, p)
		}
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Classify returns the risk level and points for a keyword. High risk wins
// over low when both pattern sets match.
func Classify(keyword string) (string, int) {
	if highRe.MatchString(keyword) || yearsRe.MatchString(keyword) {
		return domain.RiskHigh, PointsHigh
	}
	if lowRe.MatchString(keyword) {
		return domain.RiskLow, PointsLow
	}
	return domain.RiskMedium, PointsMedium
}
