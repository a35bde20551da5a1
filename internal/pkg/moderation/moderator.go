// Package moderation screens transcript text before it can be used as a
// generative prompt. Sanitize is a pure function: no I/O, deterministic.
package moderation

import (
	"regexp"
	"strings"
)

// MinUsableLength is the minimum text length after sanitization.
// Anything shorter is treated as over-sanitized, equivalent to no usable content.
const MinUsableLength = 10

// Blocked topic keywords, scanned case-insensitively. A single match rejects
// the whole text.
var blockedKeywords = []string{
	// violence / weapons
	"kill", "murder", "bomb", "gun", "weapon", "shoot", "stab", "explosive", "massacre",
	// explicit sexual content
	"porn", "explicit sex", "nsfw", "nude",
	// hate speech
	"hate speech", "racial slur", "genocide", "ethnic cleansing",
	// self-harm
	"suicide", "self-harm", "kill myself", "hurt myself",
	// illegal activity
	"cocaine", "heroin", "meth lab", "launder money", "hack into",
}

// PII patterns: SSN-shaped 3-2-4 runs and 16-digit card-shaped runs.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	regexp.MustCompile(`\b\d{16}\b`),
}

// Prompt-injection phrases are stripped (deleted), not grounds for rejection.
var injectionPhrases = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"disregard the above",
	"forget everything",
	"new instructions:",
	"system prompt:",
}

// Matched case-insensitively via regexp so multi-byte runes around a phrase
// never shift byte offsets (ToLower is not length-preserving).
var injectionRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(injectionPhrases))
	for i, phrase := range injectionPhrases {
		res[i] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(phrase))
	}
	return res
}()

var (
	blockedCharsRe = regexp.MustCompile("[<>{}\\[\\]\\\\`]")
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Sanitize screens and cleans text for use as an image prompt.
// ok is false when the text is rejected entirely: empty input, a blocked
// topic match, or too little usable content left after stripping.
func Sanitize(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}

	lowered := strings.ToLower(text)
	for _, kw := range blockedKeywords {
		if strings.Contains(lowered, kw) {
			return "", false
		}
	}
	for _, re := range piiPatterns {
		if re.MatchString(text) {
			return "", false
		}
	}

	// Strip injection phrases case-insensitively, preserving the rest.
	cleaned := text
	for _, re := range injectionRes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	cleaned = blockedCharsRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if len(cleaned) < MinUsableLength {
		return "", false
	}

	return cleaned, true
}
