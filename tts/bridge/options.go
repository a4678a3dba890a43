package bridge

import (
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/audio"
	"github.com/dgnsrekt/ttsbridge/tts/sentence"
)

// SegmentCache stores synthesized segments by key.
type SegmentCache interface {
	Get(key string) (tts.Samples, bool)
	Put(key string, samples tts.Samples) error
}

// Option customizes a Bridge.
type Option func(*Bridge)

// WithSynthesizer replaces the worker process with s.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(b *Bridge) { b.synth = s }
}

// WithPlayer replaces the audio device player.
func WithPlayer(p audio.Player) Option {
	return func(b *Bridge) { b.player = p }
}

// WithCache enables segment caching. The caller keeps ownership of c.
func WithCache(c SegmentCache) Option {
	return func(b *Bridge) { b.cache = c }
}

// WithNormalizer replaces the configured normalizer.
func WithNormalizer(n sentence.Normalizer) Option {
	return func(b *Bridge) { b.normalizer = n }
}

// WithLogger sets the bridge logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}
