package sentence

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the largest segment, in characters, sent to the
// worker in a single request.
const DefaultMaxLength = 1000

// Segmenter packs period-delimited sentences into bounded segments.
type Segmenter struct {
	MaxLength int
}

// NewSegmenter creates a segmenter. A non-positive max selects
// DefaultMaxLength.
func NewSegmenter(maxLength int) *Segmenter {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Segmenter{MaxLength: maxLength}
}

var defaultSegmenter = NewSegmenter(DefaultMaxLength)

// Segment splits text using the default maximum length.
func Segment(text string) []string {
	return defaultSegmenter.Segment(text)
}

// Segment splits text on '.' and greedily packs the sentences, each with
// its period restored, into segments of at most MaxLength characters. A
// single sentence longer than MaxLength becomes its own oversized segment.
// Empty input yields no segments.
func (s *Segmenter) Segment(text string) []string {
	var (
		segments []string
		current  strings.Builder
		curLen   int
	)

	for _, piece := range sentences(text) {
		pieceLen := utf8.RuneCountInString(piece)
		if curLen+pieceLen+1 > s.MaxLength {
			if current.Len() > 0 {
				segments = append(segments, current.String())
			}
			current.Reset()
			curLen = 0
		}
		current.WriteString(piece)
		current.WriteByte('.')
		curLen += pieceLen + 1
	}

	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

// sentences splits on '.', dropping the empty remainder after a final
// period.
func sentences(text string) []string {
	if text == "" {
		return nil
	}
	pieces := strings.Split(text, ".")
	if pieces[len(pieces)-1] == "" {
		pieces = pieces[:len(pieces)-1]
	}
	return pieces
}
