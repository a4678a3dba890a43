package audio

import (
	"errors"
	"sync"
	"time"
)

// MockPlayer implements Player for testing. It simulates playback timing
// without producing sound.
type MockPlayer struct {
	mu         sync.Mutex
	sampleRate int
	current    *Playback
	closed     bool

	// Test control
	speedMultiplier float64 // Allows tests to speed up/slow down playback
	history         []PlaybackEvent
	onPlay          func(pcm []byte)

	// Error injection for testing
	playError error
	stopError error
}

// PlaybackEvent records an event for testing verification.
type PlaybackEvent struct {
	Type      string
	Timestamp time.Time
	PCM       []byte
}

// NewMockPlayer creates a mock player that treats PCM as mono at
// sampleRate.
func NewMockPlayer(sampleRate int) *MockPlayer {
	return &MockPlayer{
		sampleRate:      sampleRate,
		speedMultiplier: 1.0,
	}
}

// Play records pcm and finishes after its simulated duration.
func (mp *MockPlayer) Play(pcm []byte) (*Playback, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.playError != nil {
		return nil, mp.playError
	}
	if mp.closed {
		return nil, errors.New("player is closed")
	}

	if mp.current != nil {
		mp.current.Stop()
	}

	data := append([]byte(nil), pcm...)
	pb := newPlayback(PCMDuration(data, mp.sampleRate))
	mp.current = pb
	mp.recordEvent("play", data)
	if mp.onPlay != nil {
		mp.onPlay(data)
	}

	wait := time.Duration(float64(pb.Duration()) / mp.speedMultiplier)
	go mp.simulate(pb, wait)
	return pb, nil
}

func (mp *MockPlayer) simulate(pb *Playback, wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		mp.mu.Lock()
		mp.recordEvent("finish", nil)
		mp.mu.Unlock()
	case <-pb.stopped():
	}
	pb.finish()

	mp.mu.Lock()
	if mp.current == pb {
		mp.current = nil
	}
	mp.mu.Unlock()
}

// Stop halts the current playback.
func (mp *MockPlayer) Stop() error {
	mp.mu.Lock()
	if mp.stopError != nil {
		mp.mu.Unlock()
		return mp.stopError
	}
	pb := mp.current
	mp.current = nil
	if pb != nil {
		pb.Stop()
		mp.recordEvent("stop", nil)
	}
	mp.mu.Unlock()

	if pb != nil {
		pb.Wait()
	}
	return nil
}

// Close stops playback and rejects further Play calls.
func (mp *MockPlayer) Close() error {
	if err := mp.Stop(); err != nil {
		return err
	}
	mp.mu.Lock()
	mp.closed = true
	mp.mu.Unlock()
	return nil
}

// IsPlaying reports whether a playback is in progress.
func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.current != nil
}

// Test helper methods

// SetSpeedMultiplier sets the playback speed for testing.
func (mp *MockPlayer) SetSpeedMultiplier(multiplier float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if multiplier > 0 {
		mp.speedMultiplier = multiplier
	}
}

// SetPlayError makes every Play call fail with err.
func (mp *MockPlayer) SetPlayError(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.playError = err
}

// SetStopError makes every Stop call fail with err.
func (mp *MockPlayer) SetStopError(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.stopError = err
}

// OnPlay registers a callback run for every Play.
func (mp *MockPlayer) OnPlay(fn func(pcm []byte)) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.onPlay = fn
}

// GetHistory returns the playback history.
func (mp *MockPlayer) GetHistory() []PlaybackEvent {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	history := make([]PlaybackEvent, len(mp.history))
	copy(history, mp.history)
	return history
}

// Played returns the buffers passed to Play, in order.
func (mp *MockPlayer) Played() [][]byte {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	var played [][]byte
	for _, e := range mp.history {
		if e.Type == "play" {
			played = append(played, e.PCM)
		}
	}
	return played
}

// recordEvent must be called with mu held.
func (mp *MockPlayer) recordEvent(eventType string, pcm []byte) {
	mp.history = append(mp.history, PlaybackEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		PCM:       pcm,
	})
}
