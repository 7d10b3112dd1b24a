package sanitizer

import (
	"strings"
	"unicode"
)

// Strategy transforms one string. Pipelines apply strategies in order.
type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// TrimAndNormalize trims s and collapses every run of whitespace into a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}
	return result.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func NormalizeTitle(title string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(title)
}

func NormalizeLocation(location string) string {
	return Pipeline{stripControl, TrimAndNormalize}.Apply(location)
}

// NormalizeCategory lowercases so that "Pottery" and "pottery " group
// together in listings.
func NormalizeCategory(category string) string {
	return Pipeline{stripControl, TrimAndNormalize, strings.ToLower}.Apply(category)
}

// NormalizeText cleans multi-line text such as descriptions and comments.
// Line breaks survive but at most one blank line is kept between
// paragraphs, and trailing spaces on each line are dropped.
func NormalizeText(text string) string {
	text = stripControl(strings.ReplaceAll(text, "\r\n", "\n"))

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
