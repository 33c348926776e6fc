package gapwalker

import (
	"regexp"
	"sort"
	"strings"
)

// Highlight wraps every case-insensitive occurrence of the matched and
// applied keywords in text using mark. Longer keywords are applied first so
// a phrase is never split by one of its own words. Keyword text is treated
// literally; word boundaries are enforced only where the keyword edge is a
// word character, so entries like "C++" or "A/B testing" still match.
func (s *Session) Highlight(text string, mark func(string) string) string {
	keywords := make([]string, 0, len(s.analysis.KeywordCoverage.MatchedKeywords)+len(s.applied))
	keywords = append(keywords, s.analysis.KeywordCoverage.MatchedKeywords...)
	for _, a := range s.applied {
		keywords = append(keywords, a.Keyword)
	}
	return HighlightKeywords(text, keywords, mark)
}

// HighlightKeywords is the session-independent form of Highlight.
func HighlightKeywords(text string, keywords []string, mark func(string) string) string {
	cleaned := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		lower := strings.ToLower(kw)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		cleaned = append(cleaned, kw)
	}
	if len(cleaned) == 0 {
		return text
	}
	// One combined pass: longer alternatives first so a phrase is preferred
	// over any keyword it contains.
	sort.SliceStable(cleaned, func(i, j int) bool { return len(cleaned[i]) > len(cleaned[j]) })
	patterns := make([]string, 0, len(cleaned))
	for _, kw := range cleaned {
		patterns = append(patterns, boundaryPattern(kw))
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(patterns, "|") + `)`)
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, mark)
}

func boundaryPattern(keyword string) string {
	p := regexp.QuoteMeta(keyword)
	if isWordByte(keyword[0]) {
		p = `\b` + p
	}
	if isWordByte(keyword[len(keyword)-1]) {
		p += `\b`
	}
	return p
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
