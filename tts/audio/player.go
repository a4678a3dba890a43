package audio

import (
	"context"
	"sync"
	"time"
)

// Player hands PCM16LE mono bytes to an output device.
type Player interface {
	// Play starts playback and returns once it is underway. The returned
	// Playback reports completion.
	Play(pcm []byte) (*Playback, error)
	// Stop halts the current playback, if any.
	Stop() error
	// Close stops playback and releases the device.
	Close() error
}

// Playback is the completion handle of one Play call.
type Playback struct {
	duration time.Duration

	done     chan struct{}
	doneOnce sync.Once

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newPlayback(duration time.Duration) *Playback {
	return &Playback{
		duration: duration,
		done:     make(chan struct{}),
		stopCh:   make(chan struct{}),
	}
}

// FinishedPlayback returns a handle that is already done. It stands in for
// playing nothing.
func FinishedPlayback() *Playback {
	pb := newPlayback(0)
	pb.finish()
	return pb
}

// Done is closed when playback has finished or was stopped.
func (p *Playback) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until playback is done.
func (p *Playback) Wait() {
	<-p.done
}

// WaitContext blocks until playback is done or ctx ends. When ctx ends
// first, playback is stopped.
func (p *Playback) WaitContext(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.Stop()
		<-p.done
		return ctx.Err()
	}
}

// Duration is the playing time of the audio.
func (p *Playback) Duration() time.Duration {
	return p.duration
}

// Stop asks the playback to end early.
func (p *Playback) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *Playback) stopped() <-chan struct{} {
	return p.stopCh
}

func (p *Playback) finish() {
	p.doneOnce.Do(func() { close(p.done) })
}
