// Package sentence turns markdown-flavored text into plain speakable text
// and splits it into segments small enough for a single worker request.
package sentence

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer strips markup from text before synthesis.
type Normalizer interface {
	Normalize(text string) string
}

// RegexNormalizer removes common markdown markup with regular expressions.
// It never fails: markup that matches no pattern passes through unchanged.
type RegexNormalizer struct {
	codeBlockRegex  *regexp.Regexp
	inlineCodeRegex *regexp.Regexp
	headingRegex    *regexp.Regexp
	strongRegex     *regexp.Regexp
	asteriskRegex   *regexp.Regexp
	emphasisRegex   *regexp.Regexp
	imageRegex      *regexp.Regexp
	linkRegex       *regexp.Regexp
	whitespaceRegex *regexp.Regexp
}

// NewRegexNormalizer creates a normalizer with compiled patterns.
func NewRegexNormalizer() *RegexNormalizer {
	return &RegexNormalizer{
		codeBlockRegex:  regexp.MustCompile("(?s)```.*?```|~~~.*?~~~"),
		inlineCodeRegex: regexp.MustCompile("`[^`]*`"),
		headingRegex:    regexp.MustCompile(`(?m)^[ \t]*#+[ \t]+`),
		strongRegex:     regexp.MustCompile(`\*\*|__`),
		asteriskRegex:   regexp.MustCompile(`\*`),
		// _word_ between non-word characters; snake_case is left alone.
		emphasisRegex:   regexp.MustCompile(`(^|[^\pL\pN_])_([^_\s](?:[^_]*[^_\s])?)_($|[^\pL\pN_])`),
		imageRegex:      regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`),
		linkRegex:       regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`),
		whitespaceRegex: regexp.MustCompile(`\s+`),
	}
}

var defaultNormalizer = NewRegexNormalizer()

// Normalize strips markup from text using the default regex normalizer.
func Normalize(text string) string {
	return defaultNormalizer.Normalize(text)
}

// Normalize returns text with code removed, header and emphasis markers
// dropped, links reduced to their labels and whitespace collapsed.
//
// Removing one marker can expose another (a nested link, an emphasis span
// that shared a delimiter with its neighbor), so the passes are repeated
// until the text stops changing. This makes Normalize idempotent.
func (n *RegexNormalizer) Normalize(text string) string {
	out := text
	for {
		next := n.pass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func (n *RegexNormalizer) pass(text string) string {
	text = norm.NFC.String(text)

	// Code is not speakable; drop it before anything else can match inside.
	text = n.codeBlockRegex.ReplaceAllString(text, "")
	text = n.inlineCodeRegex.ReplaceAllString(text, "")

	text = n.headingRegex.ReplaceAllString(text, "")

	text = n.strongRegex.ReplaceAllString(text, "")
	text = n.asteriskRegex.ReplaceAllString(text, "")
	text = n.emphasisRegex.ReplaceAllString(text, "${1}${2}${3}")

	text = n.imageRegex.ReplaceAllString(text, "$1")
	text = n.linkRegex.ReplaceAllString(text, "$1")

	text = n.whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
