// Package sanitize normalizes and validates untrusted form input. Every
// public form field passes through one pipeline: trim, length cap, markup
// handling (strip or escape, per sanitizer instance), dangerous-pattern
// removal, then a semantic validator chosen by field name. Cleaning is
// idempotent: feeding a cleaned value back through yields the same value.
package sanitize

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Options tune a Sanitizer instance. MaxLength caps field length in runes.
// EscapeHTML switches markup handling from stripping tags to escaping the
// five HTML-significant characters.
type Options struct {
	MaxLength  int
	EscapeHTML bool
}

// Result carries the cleaned value and any accumulated validation
// messages. The value is returned even when Errors is non-empty; callers
// decide whether to block on errors.
type Result struct {
	Value  string
	Errors []string
}

// Sanitizer applies the field pipeline with a fixed set of options.
// Instances are immutable and safe for concurrent use.
type Sanitizer struct {
	opts Options
}

// DefaultMaxLength bounds fields when Options.MaxLength is zero.
const DefaultMaxLength = 1000

// New creates a Sanitizer.
func New(opts Options) *Sanitizer {
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	return &Sanitizer{opts: opts}
}

var (
	tagPattern = regexp.MustCompile(`<[^>]*>`)

	// Substrings removed outright regardless of mode. Removal iterates to a
	// fixed point so fragments reassembled by an earlier removal cannot
	// survive a single pass.
	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed|form)\b[^>]*>`),
		regexp.MustCompile(`(?i)\bon\w+\s*=`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)vbscript\s*:`),
		regexp.MustCompile(`(?i)data\s*:\s*text/html`),
	}
)

// Clean runs the pipeline for one field. The field name selects the
// semantic validator: names containing "email", "phone"/"tel", or
// "url"/"website"/"link" get the matching format check.
func (s *Sanitizer) Clean(field, value string) Result {
	var out Result

	v := strings.TrimSpace(value)
	if s.opts.EscapeHTML {
		// Escape mode re-escapes from a canonical unescaped form; without
		// this, already-escaped input would double-escape on re-entry.
		v = html.UnescapeString(v)
	}
	v = truncateRunes(v, s.opts.MaxLength)

	if s.opts.EscapeHTML {
		v = removeToFixedPoint(v, dangerousPatterns)
		v = strings.TrimSpace(v)
		v = escapeHTML(v)
	} else {
		v = stripToFixedPoint(v)
		v = strings.TrimSpace(v)
	}
	out.Value = v

	if validate := validatorFor(field); validate != nil && v != "" {
		if msg := validate(v); msg != "" {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return out
}

func truncateRunes(v string, max int) string {
	runes := []rune(v)
	if len(runes) <= max {
		return v
	}
	return string(runes[:max])
}

// stripToFixedPoint removes complete tags and dangerous substrings until
// nothing changes. Removing one span can butt a stray "<" against a later
// ">" and form a new tag, so a single pass is not enough.
func stripToFixedPoint(v string) string {
	for i := 0; i < 32; i++ {
		next := tagPattern.ReplaceAllString(v, "")
		for _, p := range dangerousPatterns {
			next = p.ReplaceAllString(next, "")
		}
		if next == v {
			return v
		}
		v = next
	}
	return v
}

func removeToFixedPoint(v string, patterns []*regexp.Regexp) string {
	for i := 0; i < 32; i++ {
		next := v
		for _, p := range patterns {
			next = p.ReplaceAllString(next, "")
		}
		if next == v {
			return v
		}
		v = next
	}
	return v
}

// escapeHTML escapes the five HTML-significant characters. Matches
// html.EscapeString's output so UnescapeString reverses it exactly.
func escapeHTML(v string) string {
	return html.EscapeString(v)
}
