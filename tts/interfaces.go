package tts

import "time"

// Samples holds mono audio as normalized floats, nominally in [-1, 1].
type Samples []float32

// Duration returns the playing time of the samples at the given rate.
func (s Samples) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s)) * time.Second / time.Duration(sampleRate)
}

// Synthesizer turns text into samples. The worker process manager is the
// production implementation; tests substitute fakes.
type Synthesizer interface {
	// Start launches the backend. It is called once, before Initialize.
	Start() error

	// Initialize loads the acoustic model. Calls after the first success
	// return nil without doing any work.
	Initialize(modelPath string) error

	// Synthesize converts one bounded segment of text to samples.
	Synthesize(text string) (Samples, error)

	// Shutdown stops the backend and releases its resources.
	Shutdown() error
}

// VoiceSettings are per-request synthesis parameters.
type VoiceSettings struct {
	Voice string
	Speed float64
	Pitch float64
}

// Tunable is implemented by synthesizers that accept voice settings.
type Tunable interface {
	SetVoice(voice string)
	SetSpeed(speed float64)
	SetPitch(pitch float64)
	Settings() VoiceSettings
}

const (
	MinSpeed = 0.5
	MaxSpeed = 2.0
	MinPitch = 0.5
	MaxPitch = 2.0
)

// ClampSpeed limits a speed multiplier to the supported range.
func ClampSpeed(v float64) float64 { return clamp(v, MinSpeed, MaxSpeed) }

// ClampPitch limits a pitch multiplier to the supported range.
func ClampPitch(v float64) float64 { return clamp(v, MinPitch, MaxPitch) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
