package sentence

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bold and link",
			input:    "**bold** and [link](http://x)",
			expected: "bold and link",
		},
		{
			name:     "headers on every line",
			input:    "# Title\n\nSome text.\n## Section\nMore.",
			expected: "Title Some text. Section More.",
		},
		{
			name:     "hashtag without space is kept",
			input:    "#golang is fun",
			expected: "#golang is fun",
		},
		{
			name:     "italic asterisks",
			input:    "an *important* point",
			expected: "an important point",
		},
		{
			name:     "underscore emphasis",
			input:    "__strong__ and _soft_ words",
			expected: "strong and soft words",
		},
		{
			name:     "adjacent underscore spans",
			input:    "_a_ _b_ _c_",
			expected: "a b c",
		},
		{
			name:     "snake case survives",
			input:    "call parse_input_file now",
			expected: "call parse_input_file now",
		},
		{
			name:     "fenced code removed",
			input:    "Before.\n```go\nfmt.Println(\"x\")\n```\nAfter.",
			expected: "Before. After.",
		},
		{
			name:     "inline code removed",
			input:    "Run `make build` first.",
			expected: "Run first.",
		},
		{
			name:     "image keeps alt text",
			input:    "See ![a diagram](img.png) here.",
			expected: "See a diagram here.",
		},
		{
			name:     "nested brackets",
			input:    "[[inner](a)](b)",
			expected: "inner",
		},
		{
			name:     "whitespace collapsed and trimmed",
			input:    "  lots \t of\n\n space  ",
			expected: "lots of space",
		},
		{
			name:     "malformed link passes through",
			input:    "a [broken](link",
			expected: "a [broken](link",
		},
		{
			name:     "lone backtick passes through",
			input:    "it`s fine",
			expected: "it`s fine",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "composed unicode",
			input:    "café",
			expected: "café",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"**bold** and [link](http://x)",
		"# Title\nbody _x_ _y_ text",
		"[[a](b)](c)",
		"e*́ and `code` # not a header",
		"***triple*** __under__score__",
		"![[x](y)](z) `a`b` c",
		"  \n\t ",
		"_[label](url)_ and _",
	}

	n := NewRegexNormalizer()
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestMarkdownNormalizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bold and link",
			input:    "**bold** and [link](http://x)",
			expected: "bold and link",
		},
		{
			name:     "heading gets a period",
			input:    "# Introduction\n\nThis is the body.",
			expected: "Introduction. This is the body.",
		},
		{
			name:     "heading with punctuation",
			input:    "## Why?\n\nBecause.",
			expected: "Why? Because.",
		},
		{
			name:     "code is skipped",
			input:    "Text.\n\n```\ncode here\n```\n\nMore `inline` text.",
			expected: "Text. More text.",
		},
		{
			name:     "list items",
			input:    "- first\n- second\n",
			expected: "first. second.",
		},
		{
			name:     "soft line breaks",
			input:    "one\ntwo\nthree",
			expected: "one two three",
		},
	}

	n := NewMarkdownNormalizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
