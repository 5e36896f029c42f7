// Package headings derives a table of contents from a post body.
package headings

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Heading is a single table of contents entry.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})[ \t]+(.+)$`)
	fencePattern   = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

var lower = cases.Lower(language.Und)

// Extract returns the headings of body in document order. Lines inside fenced
// code blocks are ignored. Duplicate slugs are kept as-is.
func Extract(body string) []Heading {
	out := []Heading{}
	var fence string

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")

		if m := fencePattern.FindStringSubmatch(line); m != nil {
			marker := m[1]
			switch {
			case fence == "":
				fence = marker
			case marker[0] == fence[0] && len(marker) >= len(fence) && strings.TrimSpace(line[strings.Index(line, marker)+len(marker):]) == "":
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}
		out = append(out, Heading{
			Level: len(m[1]),
			Text:  text,
			Slug:  Slugify(text),
		})
	}
	return out
}

// Slugify lowercases text and collapses every run of characters that are not
// letters, numbers or combining marks into a single hyphen.
func Slugify(text string) string {
	text = lower.String(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text))
	pendingDash := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
