// Package audio converts synthesized samples to PCM and delivers them to a
// file or an output device.
package audio

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/dgnsrekt/ttsbridge/tts"
)

// The fixed output profile: signed 16-bit little-endian mono PCM.
const (
	BytesPerSample = 2
	Channels       = 1
	BitDepth       = 16
)

// EncodePCM16LE converts samples to signed 16-bit little-endian PCM. Each
// sample is scaled by 32767, saturated to the int16 range and truncated
// toward zero. NaN encodes as silence.
func EncodePCM16LE(samples tts.Samples) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*BytesPerSample:], uint16(PCM16(s)))
	}
	return out
}

// PCM16 converts one sample to a 16-bit value.
func PCM16(s float32) int16 {
	if s != s {
		return 0
	}
	v := s * 32767.0
	switch {
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// PCMDuration returns the playing time of a PCM buffer.
func PCMDuration(pcm []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	frames := len(pcm) / (BytesPerSample * Channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
