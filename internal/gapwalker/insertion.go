package gapwalker

import (
	"regexp"
	"strings"
)

// Role is a resume line that reads like a job title.
type Role struct {
	Title string `json:"title"`
	Line  int    `json:"line"`
}

var (
	roleTermsRe = regexp.MustCompile(`(?i)designer|lead|senior|consultant|developer|engineer|manager|director`)
	headingRe   = regexp.MustCompile(`(?i)summary|profile|about|objective`)
)

// ExtractRoles scans resume lines for short, non-bullet lines containing role
// or seniority terms.
func ExtractRoles(resume string) []Role {
	var roles []Role
	for i, line := range strings.Split(resume, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || len(trimmed) >= 100 || isBullet(trimmed) {
			continue
		}
		if roleTermsRe.MatchString(trimmed) {
			roles = append(roles, Role{Title: trimmed, Line: i})
		}
	}
	return roles
}

func isBullet(trimmed string) bool {
	return strings.HasPrefix(trimmed, "•") || strings.HasPrefix(trimmed, "-") || strings.HasPrefix(trimmed, "*")
}

// FindInsertionPoint scores each line and returns the index of the best
// candidate for weaving in a keyword. Bullet lines score +2, role and
// seniority terms +1 per occurrence, lines longer than 40 characters +1.
// The first highest-scoring line wins. When nothing scores above zero, the
// line after a summary-style heading is used, or index 2 as a last resort.
func FindInsertionPoint(lines []string) int {
	best, bestScore := -1, 0
	for i, line := range lines {
		score := scoreLine(line)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return best
	}
	for i, line := range lines {
		if headingRe.MatchString(line) && i+1 < len(lines) {
			return i + 1
		}
	}
	if len(lines) > 2 {
		return 2
	}
	return len(lines) - 1
}

func scoreLine(line string) int {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return 0
	}
	score := 0
	if isBullet(trimmed) {
		score += 2
	}
	score += len(roleTermsRe.FindAllString(trimmed, -1))
	if len(trimmed) > 40 {
		score++
	}
	return score
}

// applyKeyword inserts keyword into text at the given impact level and
// reports the location chosen.
func applyKeyword(text, keyword string, impact Impact) (string, string) {
	switch impact {
	case ImpactHigh:
		return applyHigh(text, keyword)
	case ImpactMedium:
		return applyMedium(text, keyword)
	default:
		return applyLow(text, keyword)
	}
}

// applyHigh weaves the keyword into the best experience line as an
// ", incorporating <keyword>" clause, placed before a trailing period when
// one exists.
func applyHigh(text, keyword string) (string, string) {
	lines := strings.Split(text, "\n")
	idx := FindInsertionPoint(lines)
	if idx < 0 || idx >= len(lines) {
		return applyLow(text, keyword)
	}
	line := strings.TrimRight(lines[idx], " ")
	clause := ", incorporating " + keyword
	if strings.HasSuffix(line, ".") {
		line = strings.TrimSuffix(line, ".") + clause + "."
	} else {
		line += clause
	}
	lines[idx] = line
	return strings.Join(lines, "\n"), "experience line"
}

// mediumInsertIndex is the fixed offset near the top of the document where a
// synthesized summary sentence lands.
const mediumInsertIndex = 3

func applyMedium(text, keyword string) (string, string) {
	lines := strings.Split(text, "\n")
	sentence := "Professional with a focus on " + keyword + "."
	idx := mediumInsertIndex
	if idx > len(lines) {
		idx = len(lines)
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, sentence)
	out = append(out, lines[idx:]...)
	return strings.Join(out, "\n"), "summary"
}

func applyLow(text, keyword string) (string, string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), "skills") {
			continue
		}
		if i+1 < len(lines) && strings.TrimSpace(lines[i+1]) != "" {
			lines[i+1] = strings.TrimRight(lines[i+1], " ") + ", " + keyword
		} else {
			lines[i] = strings.TrimRight(line, " ") + " " + keyword
		}
		return strings.Join(lines, "\n"), "skills line"
	}
	return strings.TrimRight(text, "\n") + "\n\nSKILLS:\n" + keyword, "new skills section"
}
