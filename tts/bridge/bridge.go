// Package bridge runs the text-to-audio pipeline: normalize, segment,
// synthesize each segment through the worker, concatenate, encode, and
// deliver to a file or the audio device.
package bridge

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/audio"
	"github.com/dgnsrekt/ttsbridge/tts/cache"
	"github.com/dgnsrekt/ttsbridge/tts/sentence"
	"github.com/dgnsrekt/ttsbridge/tts/worker"
)

// Bridge owns one synthesizer and serializes every call through it.
type Bridge struct {
	cfg        tts.Config
	synth      tts.Synthesizer
	player     audio.Player
	cache      SegmentCache
	normalizer sentence.Normalizer
	segmenter  *sentence.Segmenter
	logger     *log.Logger

	state     *tts.StateMachine
	launchErr error
	modelPath string

	mu         sync.Mutex
	processing atomic.Bool
	closeOnce  sync.Once
	closeErr   error
	closers    []io.Closer

	stats struct {
		requests  atomic.Int64
		failures  atomic.Int64
		segments  atomic.Int64
		cacheHits atomic.Int64
		bytes     atomic.Int64
	}
}

// Stats is a snapshot of bridge activity.
type Stats struct {
	State     tts.StateType
	Requests  int64
	Failures  int64
	Segments  int64
	CacheHits int64
	Bytes     int64
}

// New validates cfg, builds the pipeline, and starts the worker. A worker
// that fails to launch does not fail New: the error is kept and returned
// by Initialize.
func New(cfg tts.Config, opts ...Option) (*Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	b := &Bridge{
		cfg:       cfg,
		segmenter: sentence.NewSegmenter(cfg.MaxSegmentLength),
		state:     tts.NewStateMachine(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = log.WithPrefix("bridge")
	}
	if b.normalizer == nil {
		b.normalizer = newNormalizer(cfg.Normalizer)
	}
	if b.player == nil {
		b.player = audio.NewPlayer(cfg.SampleRate, cfg.Volume)
	}
	if b.cache == nil && cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			b.logger.Warn("segment cache disabled", "err", err)
		} else {
			b.cache = c
			b.closers = append(b.closers, c)
		}
	}
	if b.synth == nil {
		wc, err := worker.ConfigFrom(cfg.Worker)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tts.ErrInvalidConfig, err)
		}
		b.synth = worker.NewManager(wc)
	}

	if err := b.synth.Start(); err != nil {
		b.launchErr = err
		b.logger.Warn("worker failed to start", "err", err)
	}

	return b, nil
}

func newNormalizer(kind string) sentence.Normalizer {
	if kind == tts.NormalizerMarkdown {
		return sentence.NewMarkdownNormalizer()
	}
	return sentence.NewRegexNormalizer()
}

// Initialize loads the model. A worker that failed to launch is reported
// here and never relaunched. Calls on a ready bridge return nil.
func (b *Bridge) Initialize(modelPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state.Current() {
	case tts.StateClosed:
		return tts.NewTTSError(tts.ErrBridgeClosed, tts.StageInitialize)
	case tts.StateReady:
		return nil
	}

	if b.launchErr != nil {
		return tts.NewTTSError(b.launchErr, tts.StageLaunch)
	}

	if err := b.synth.Initialize(modelPath); err != nil {
		b.logger.Error("initialize failed", "model", modelPath, "err", err)
		return tts.NewTTSError(err, tts.StageInitialize)
	}

	b.modelPath = modelPath
	b.state.Transition(tts.StateReady)
	b.logger.Info("bridge ready", "model", modelPath)
	return nil
}

// Synthesize runs the shared pipeline and returns the concatenated samples
// of every segment.
func (b *Bridge) Synthesize(text string) (tts.Samples, error) {
	return b.run(func() (tts.Samples, error) {
		return b.synthesize(text, true)
	})
}

// TextToSpeech synthesizes text and writes it to outputPath as raw PCM16LE,
// or as WAV when output.container is wav.
func (b *Bridge) TextToSpeech(text, outputPath string) error {
	_, err := b.run(func() (tts.Samples, error) {
		samples, err := b.synthesize(text, true)
		if err != nil {
			return nil, err
		}
		return samples, b.save(samples, outputPath)
	})
	return err
}

// PlayText synthesizes text and starts playback. It returns once playback
// has begun; the Playback reports completion.
func (b *Bridge) PlayText(text string) (*audio.Playback, error) {
	var pb *audio.Playback
	_, err := b.run(func() (tts.Samples, error) {
		samples, err := b.synthesize(text, b.cfg.SegmentPlayback)
		if err != nil {
			return nil, err
		}
		pcm := audio.EncodePCM16LE(samples)
		b.stats.bytes.Add(int64(len(pcm)))
		if len(pcm) == 0 {
			pb = audio.FinishedPlayback()
			return samples, nil
		}
		if pb, err = b.player.Play(pcm); err != nil {
			return nil, tts.NewTTSError(err, tts.StagePlay)
		}
		return samples, nil
	})
	return pb, err
}

// run serializes fn, checks the bridge is ready, and keeps the counters.
func (b *Bridge) run(fn func() (tts.Samples, error)) (tts.Samples, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stats.requests.Add(1)

	switch b.state.Current() {
	case tts.StateClosed:
		b.stats.failures.Add(1)
		return nil, tts.NewTTSError(tts.ErrBridgeClosed, tts.StageSynthesize)
	case tts.StateUninitialized:
		b.stats.failures.Add(1)
		return nil, tts.NewTTSError(tts.ErrNotInitialized, tts.StageSynthesize)
	}

	b.processing.Store(true)
	defer b.processing.Store(false)

	samples, err := fn()
	if err != nil {
		b.stats.failures.Add(1)
		b.logger.Error("request failed", "err", err)
	}
	return samples, err
}

// synthesize normalizes text and synthesizes it, split into segments or as
// a single request.
func (b *Bridge) synthesize(text string, segmented bool) (tts.Samples, error) {
	start := time.Now()

	normalized := b.normalizer.Normalize(text)
	var segments []string
	switch {
	case segmented:
		segments = b.segmenter.Segment(normalized)
	case normalized != "":
		segments = []string{normalized}
	}

	var out tts.Samples
	for i, seg := range segments {
		samples, err := b.synthesizeSegment(seg)
		if err != nil {
			return nil, tts.NewTTSError(err, tts.StageSynthesize).WithSegment(i)
		}
		out = append(out, samples...)
	}
	b.stats.segments.Add(int64(len(segments)))

	b.logger.Info("synthesized",
		"text", truncate.StringWithTail(normalized, 40, "…"),
		"segments", len(segments),
		"audio", out.Duration(b.cfg.SampleRate),
		"took", time.Since(start))
	return out, nil
}

func (b *Bridge) synthesizeSegment(seg string) (tts.Samples, error) {
	if b.cache == nil {
		return b.synth.Synthesize(seg)
	}

	key := cache.Key(b.modelPath, b.voiceSettings(), seg)
	if samples, ok := b.cache.Get(key); ok {
		b.stats.cacheHits.Add(1)
		b.logger.Debug("cache hit", "segment", truncate.StringWithTail(seg, 30, "…"))
		return samples, nil
	}

	samples, err := b.synth.Synthesize(seg)
	if err != nil {
		return nil, err
	}
	if err := b.cache.Put(key, samples); err != nil {
		b.logger.Warn("cache store failed", "err", err)
	}
	return samples, nil
}

func (b *Bridge) voiceSettings() tts.VoiceSettings {
	if t, ok := b.synth.(tts.Tunable); ok {
		return t.Settings()
	}
	return b.cfg.Worker.Settings()
}

func (b *Bridge) save(samples tts.Samples, path string) error {
	var err error
	var size int
	if b.cfg.Output.Container == tts.ContainerWAV {
		err = audio.SaveWAV(samples, path, b.cfg.SampleRate)
		size = len(samples) * audio.BytesPerSample
	} else {
		pcm := audio.EncodePCM16LE(samples)
		err = audio.SaveToFile(pcm, path)
		size = len(pcm)
	}
	if err != nil {
		return tts.NewTTSError(err, tts.StageSave)
	}

	b.stats.bytes.Add(int64(size))
	b.logger.Info("saved", "path", path, "size", humanize.Bytes(uint64(size)))
	return nil
}

// Stop halts any playback started by PlayText.
func (b *Bridge) Stop() error {
	return b.player.Stop()
}

// Tunable returns the synthesizer's voice controls, if it has any.
func (b *Bridge) Tunable() (tts.Tunable, bool) {
	t, ok := b.synth.(tts.Tunable)
	return t, ok
}

// IsInitialized reports whether the bridge is ready to synthesize.
func (b *Bridge) IsInitialized() bool {
	return b.state.Current() == tts.StateReady
}

// IsProcessing reports whether a request is in progress.
func (b *Bridge) IsProcessing() bool {
	return b.processing.Load()
}

// ModelPath returns the model loaded by Initialize.
func (b *Bridge) ModelPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modelPath
}

// Stats returns a snapshot of bridge activity.
func (b *Bridge) Stats() Stats {
	return Stats{
		State:     b.state.Current(),
		Requests:  b.stats.requests.Load(),
		Failures:  b.stats.failures.Load(),
		Segments:  b.stats.segments.Load(),
		CacheHits: b.stats.cacheHits.Load(),
		Bytes:     b.stats.bytes.Load(),
	}
}

// Close stops playback and shuts the worker down. Only the first call does
// any work.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		b.state.Transition(tts.StateClosed)

		var errs []error
		if err := b.player.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close player: %w", err))
		}
		if err := b.synth.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown worker: %w", err))
		}
		for _, c := range b.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		b.closeErr = errors.Join(errs...)

		stats := b.Stats()
		b.logger.Debug("bridge closed",
			"requests", stats.Requests,
			"failures", stats.Failures,
			"segments", stats.Segments,
			"cache_hits", stats.CacheHits,
			"bytes", humanize.Bytes(uint64(stats.Bytes)))
	})
	return b.closeErr
}
