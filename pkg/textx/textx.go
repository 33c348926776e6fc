// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	// strip control chars outside tab/newline/carriage return
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ControlByteRatio reports the fraction of bytes that are control characters
// outside tab/newline/CR. Plain-text resumes sit near zero; binary formats
// and PDFs do not.
func ControlByteRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	n := 0
	for _, c := range data {
		if c < 32 && c != '\n' && c != '\r' && c != '\t' {
			n++
		}
	}
	return float64(n) / float64(len(data))
}

// LooksLikeRichFormat detects RTF, LaTeX, HTML, and DOCX payloads that users
// paste or upload as if they were plain text.
func LooksLikeRichFormat(data []byte) (string, bool) {
	s := string(data)
	head := s
	if len(head) > 512 {
		head = head[:512]
	}
	lower := strings.ToLower(head)
	switch {
	case strings.HasPrefix(s, "{\\rtf") || strings.Contains(head, "\\rtf1"):
		return "rtf", true
	case strings.Contains(head, "\\documentclass") || strings.Contains(head, "\\begin{document}"):
		return "latex", true
	case strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html"):
		return "html", true
	case strings.HasPrefix(s, "PK\x03\x04"):
		// DOCX (and any other OOXML zip container)
		return "docx", true
	}
	return "", false
}
