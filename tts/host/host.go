// Package host adapts a bridge to embedders that only understand success or
// failure. Every failure is logged with its full context before it is
// reduced to false.
package host

import (
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/audio"
	"github.com/dgnsrekt/ttsbridge/tts/bridge"
)

// Speaker is the bridge surface the adapter needs.
type Speaker interface {
	Initialize(modelPath string) error
	TextToSpeech(text, outputPath string) error
	PlayText(text string) (*audio.Playback, error)
	Close() error
}

var _ Speaker = (*bridge.Bridge)(nil)

// Bridge exposes the three host operations with boolean results.
type Bridge struct {
	speaker Speaker
	logger  *log.Logger
}

// New wraps speaker.
func New(speaker Speaker) *Bridge {
	return &Bridge{speaker: speaker, logger: log.WithPrefix("host")}
}

// Open builds a bridge from cfg and wraps it. It returns nil when the
// configuration is invalid.
func Open(cfg tts.Config, opts ...bridge.Option) *Bridge {
	b, err := bridge.New(cfg, opts...)
	if err != nil {
		log.WithPrefix("host").Error("cannot create bridge", "err", err)
		return nil
	}
	return New(b)
}

// Initialize loads the model and reports success.
func (h *Bridge) Initialize(modelPath string) bool {
	return h.check("initialize", h.speaker.Initialize(modelPath))
}

// TextToSpeech writes the audio for text to outputPath and reports success.
func (h *Bridge) TextToSpeech(text, outputPath string) bool {
	return h.check("text to speech", h.speaker.TextToSpeech(text, outputPath), "output", outputPath)
}

// PlayText starts playback of text and reports success. It does not wait
// for playback to finish.
func (h *Bridge) PlayText(text string) bool {
	_, err := h.speaker.PlayText(text)
	return h.check("play text", err)
}

// Close shuts the bridge down.
func (h *Bridge) Close() {
	_ = h.check("close", h.speaker.Close())
}

func (h *Bridge) check(op string, err error, keyvals ...interface{}) bool {
	if err == nil {
		return true
	}
	keyvals = append(keyvals, "err", err, "recoverable", tts.IsRecoverableError(err))
	h.logger.Error(op+" failed", keyvals...)
	return false
}
