package audio_test

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/audio"
)

func TestPCM16(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want int16
	}{
		{"silence", 0, 0},
		{"full scale", 1, 32767},
		{"negative full scale", -1, -32767},
		{"half", 0.5, 16383},
		{"negative half truncates toward zero", -0.5, -16383},
		{"clips high", 2, 32767},
		{"clips low", -2, -32768},
		{"infinity", float32(math.Inf(1)), 32767},
		{"negative infinity", float32(math.Inf(-1)), -32768},
		{"nan", float32(math.NaN()), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := audio.PCM16(tt.in); got != tt.want {
				t.Errorf("PCM16(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodePCM16LE(t *testing.T) {
	got := audio.EncodePCM16LE(tts.Samples{0, 0.5, -0.5})
	want := []byte{0x00, 0x00, 0xff, 0x3f, 0x01, 0xc0}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodePCM16LE() = % x, want % x", got, want)
	}

	if len(audio.EncodePCM16LE(nil)) != 0 {
		t.Error("no samples should encode to no bytes")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	samples := tts.Samples{0.1, -0.2, 0.3, 0.99, -1}
	a := audio.EncodePCM16LE(samples)
	b := audio.EncodePCM16LE(samples)
	if !bytes.Equal(a, b) {
		t.Error("encoding the same samples twice gave different bytes")
	}
}

func TestEncodeRoundTripPrecision(t *testing.T) {
	for i := -100; i <= 100; i++ {
		s := float32(i) / 100
		pcm := audio.EncodePCM16LE(tts.Samples{s})
		decoded := float64(int16(binary.LittleEndian.Uint16(pcm))) / 32767
		if diff := math.Abs(decoded - float64(s)); diff > 1.0/32767 {
			t.Fatalf("sample %v decoded as %v (off by %v)", s, decoded, diff)
		}
	}
}

func TestPCMDuration(t *testing.T) {
	pcm := make([]byte, 2*22050)
	if got := audio.PCMDuration(pcm, 22050); got != time.Second {
		t.Errorf("PCMDuration() = %v, want 1s", got)
	}
	if got := audio.PCMDuration(pcm, 0); got != 0 {
		t.Errorf("PCMDuration() with no rate = %v, want 0", got)
	}
}
