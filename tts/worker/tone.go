package worker

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/dgnsrekt/ttsbridge/tts"
)

// ToneEngine renders one short sine tone per word. It needs no model and
// no external runtime, which makes it useful for checking an audio setup
// end to end and as a stand-in worker in tests.
type ToneEngine struct {
	SampleRate    int
	BaseFrequency float64
	WordDuration  time.Duration
	Amplitude     float64
}

// NewToneEngine creates a tone engine for the given sample rate.
func NewToneEngine(sampleRate int) *ToneEngine {
	if sampleRate <= 0 {
		sampleRate = tts.DefaultSampleRate
	}
	return &ToneEngine{
		SampleRate:    sampleRate,
		BaseFrequency: 220,
		WordDuration:  180 * time.Millisecond,
		Amplitude:     0.3,
	}
}

// Load accepts an empty path or any existing file.
func (e *ToneEngine) Load(modelPath string) error {
	if modelPath == "" {
		return nil
	}
	if _, err := os.Stat(modelPath); err != nil {
		return fmt.Errorf("model %s: %w", modelPath, err)
	}
	return nil
}

// Synthesize returns a tone followed by a short gap for every word. Speed
// shortens the tones, pitch raises their frequency.
func (e *ToneEngine) Synthesize(text string, s tts.VoiceSettings) (tts.Samples, error) {
	speed := s.Speed
	if speed == 0 {
		speed = 1.0
	}
	pitch := s.Pitch
	if pitch == 0 {
		pitch = 1.0
	}

	toneLen := int(float64(e.SampleRate) * e.WordDuration.Seconds() / speed)
	gapLen := toneLen / 4

	words := strings.Fields(text)
	out := make(tts.Samples, 0, len(words)*(toneLen+gapLen))
	for _, word := range words {
		// Vary the pitch a little per word so speech rhythm is audible.
		freq := e.BaseFrequency * pitch * (1 + float64(len(word)%5)*0.1)
		for i := 0; i < toneLen; i++ {
			env := envelope(i, toneLen)
			v := e.Amplitude * env * math.Sin(2*math.Pi*freq*float64(i)/float64(e.SampleRate))
			out = append(out, float32(v))
		}
		out = append(out, make(tts.Samples, gapLen)...)
	}
	return out, nil
}

// envelope fades the first and last 10% of a tone to avoid clicks.
func envelope(i, n int) float64 {
	ramp := n / 10
	if ramp == 0 {
		return 1
	}
	switch {
	case i < ramp:
		return float64(i) / float64(ramp)
	case i >= n-ramp:
		return float64(n-1-i) / float64(ramp)
	default:
		return 1
	}
}
