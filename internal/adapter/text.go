package adapter

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// MaxTextLength caps every free-text field stored on a canonical screen (in runes).
const MaxTextLength = 200

var (
	scriptSchemePattern  = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandlerPattern  = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
	angleBracketReplacer = strings.NewReplacer("<", "", ">", "")
	titleCaser           = cases.Title(language.Und)
)

// SanitizeText makes upstream text safe to render verbatim: it normalizes to NFC, drops
// control characters, strips angle brackets, the javascript: scheme and inline event
// handlers, collapses whitespace and truncates to MaxTextLength runes.
func SanitizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	// Removal can splice new matches together ("javajavascript:script:"), so run to a fixed point.
	for {
		prev := s
		s = angleBracketReplacer.Replace(s)
		s = scriptSchemePattern.ReplaceAllString(s, "")
		s = eventHandlerPattern.ReplaceAllString(s, "")
		if s == prev {
			break
		}
	}

	s = strings.Join(strings.Fields(s), " ")
	if runes := []rune(s); len(runes) > MaxTextLength {
		s = strings.TrimSpace(string(runes[:MaxTextLength]))
	}
	return s
}

// sanitizeCity title-cases all-lowercase city names ("new york" -> "New York").
func sanitizeCity(s string) string {
	s = SanitizeText(s)
	if s != "" && s == strings.ToLower(s) {
		return titleCaser.String(s)
	}
	return s
}

// sanitizeURL keeps only absolute http(s) URLs.
func sanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > 2048 {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
