package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxURLCandidates bounds how many URL-looking substrings are parsed per input.
const MaxURLCandidates = 20

var (
	urlPattern    = regexp.MustCompile(`(?i)\bhttps?://[^\s'")]+`)
	schemePattern = regexp.MustCompile(`(?i)^https?://`)
)

// ExtractDomains returns the lowercase hostnames of the first
// MaxURLCandidates URLs in text, deduplicated in first-seen order.
// Candidates that do not parse are skipped.
func ExtractDomains(text string) []string {
	candidates := urlPattern.FindAllString(text, MaxURLCandidates)
	if len(candidates) == 0 {
		return []string{}
	}

	hosts := make([]string, 0, len(candidates))
	for _, raw := range candidates {
		parsed, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := parsed.Hostname()
		if host == "" {
			continue
		}
		hosts = append(hosts, host)
	}
	return Domains(hosts)
}

// Domain strips the scheme and any path from s and lowercases the rest, so
// "HTTPS://API.Example.com/v1" and "api.example.com" compare equal.
func Domain(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	s = schemePattern.ReplaceAllString(s, "")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// Domains normalizes every entry with Domain and drops empties and
// duplicates, preserving first-seen order.
func Domains(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if d := Domain(s); d != "" {
			out = append(out, d)
		}
	}
	return Unique(out)
}

// Unique drops empty strings and case-insensitive duplicates, keeping the
// first spelling seen.
func Unique(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
