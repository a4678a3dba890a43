//go:build !nocgo && (cgo || !linux)

package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/ttsbridge/tts"
)

const pollInterval = 10 * time.Millisecond

// oto allows a single context per process.
var (
	otoCtx     *oto.Context
	otoRate    int
	otoOnce    sync.Once
	otoInitErr error
)

func getContext(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-readyChan
			otoRate = sampleRate
		}
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio device already opened at %d Hz, cannot play %d Hz", otoRate, sampleRate)
	}
	return otoCtx, nil
}

// OtoPlayer plays PCM through the system audio device. The device is opened
// on the first Play, so a player that never plays never touches it.
type OtoPlayer struct {
	sampleRate int
	volume     float64
	logger     *log.Logger

	mu      sync.Mutex
	current *Playback
	closed  bool
}

// NewPlayer returns a player for mono PCM16LE at sampleRate.
func NewPlayer(sampleRate int, volume float64) *OtoPlayer {
	return &OtoPlayer{
		sampleRate: sampleRate,
		volume:     volume,
		logger:     log.WithPrefix("audio"),
	}
}

// Play stops any current playback and starts pcm.
func (p *OtoPlayer) Play(pcm []byte) (*Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, &tts.PlaybackError{Err: fmt.Errorf("player is closed")}
	}
	if len(pcm) == 0 {
		return FinishedPlayback(), nil
	}

	ctx, err := getContext(p.sampleRate)
	if err != nil {
		return nil, &tts.PlaybackError{Err: err}
	}

	p.stopLocked()

	// The reader keeps the buffer alive until the player is closed.
	data := bytes.Clone(pcm)
	player := ctx.NewPlayer(bytes.NewReader(data))
	player.SetVolume(p.volume)
	player.Play()

	pb := newPlayback(PCMDuration(data, p.sampleRate))
	p.current = pb
	go p.monitor(player, pb)

	p.logger.Debug("playback started", "duration", pb.Duration())
	return pb, nil
}

func (p *OtoPlayer) monitor(player *oto.Player, pb *Playback) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

loop:
	for player.IsPlaying() {
		select {
		case <-pb.stopped():
			player.Pause()
			break loop
		case <-ticker.C:
		}
	}

	if err := player.Err(); err != nil {
		p.logger.Warn("playback failed", "err", err)
	}
	if err := player.Close(); err != nil {
		p.logger.Debug("closing player", "err", err)
	}
	pb.finish()

	p.mu.Lock()
	if p.current == pb {
		p.current = nil
	}
	p.mu.Unlock()
}

// Stop halts the current playback and waits for it to wind down.
func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	pb := p.current
	p.stopLocked()
	p.mu.Unlock()

	if pb != nil {
		pb.Wait()
	}
	return nil
}

func (p *OtoPlayer) stopLocked() {
	if p.current != nil {
		p.current.Stop()
		p.current = nil
	}
}

// Close stops playback. The shared device context stays open for the
// lifetime of the process.
func (p *OtoPlayer) Close() error {
	if err := p.Stop(); err != nil {
		return err
	}
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}
