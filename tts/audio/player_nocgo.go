//go:build nocgo || (linux && !cgo)

package audio

import (
	"errors"

	"github.com/dgnsrekt/ttsbridge/tts"
)

var errNoAudio = errors.New("audio not available in nocgo build")

// OtoPlayer is a stub for builds without cgo. Every Play fails.
type OtoPlayer struct{}

// NewPlayer returns the stub player.
func NewPlayer(sampleRate int, volume float64) *OtoPlayer {
	return &OtoPlayer{}
}

func (p *OtoPlayer) Play(pcm []byte) (*Playback, error) {
	return nil, &tts.PlaybackError{Err: errNoAudio}
}

func (p *OtoPlayer) Stop() error {
	return nil
}

func (p *OtoPlayer) Close() error {
	return nil
}
