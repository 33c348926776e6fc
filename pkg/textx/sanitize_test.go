// Package textx contains tests for the text utilities.
package textx

import "testing"

func TestSanitizeText(t *testing.T) {
	in := "he\x00llo\nwo\x7frld\t!"
	got := SanitizeText(in)
	if got != "hello\nworld\t!" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestControlByteRatio(t *testing.T) {
	if r := ControlByteRatio([]byte("plain text\nwith lines\t.")); r != 0 {
		t.Fatalf("want 0, got %v", r)
	}
	if r := ControlByteRatio([]byte{0x00, 0x01, 'a', 'b'}); r != 0.5 {
		t.Fatalf("want 0.5, got %v", r)
	}
}

func TestLooksLikeRichFormat(t *testing.T) {
	cases := []struct {
		in   string
		kind string
		ok   bool
	}{
		{"{\\rtf1\\ansi hello}", "rtf", true},
		{"\\documentclass{article}", "latex", true},
		{"<!DOCTYPE html><html>", "html", true},
		{"PK\x03\x04zipbytes", "docx", true},
		{"Experienced UX designer.", "", false},
	}
	for _, c := range cases {
		kind, ok := LooksLikeRichFormat([]byte(c.in))
		if kind != c.kind || ok != c.ok {
			t.Fatalf("%q: got (%q,%v), want (%q,%v)", c.in, kind, ok, c.kind, c.ok)
		}
	}
}
