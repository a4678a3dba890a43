package tts

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Config contains all bridge configuration options.
type Config struct {
	// Model passed to the worker's init command. Empty lets the worker
	// pick its built-in default.
	ModelPath string `yaml:"model_path"`

	// Audio settings
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`

	// Text pipeline settings
	MaxSegmentLength int    `yaml:"max_segment_length"`
	SegmentPlayback  bool   `yaml:"segment_playback"`
	Normalizer       string `yaml:"normalizer"`

	Output  OutputConfig  `yaml:"output"`
	Worker  WorkerConfig  `yaml:"worker"`
	Cache   CacheConfig   `yaml:"cache"`
	History HistoryConfig `yaml:"history"`
}

// OutputConfig controls how synthesized audio is written to disk.
type OutputConfig struct {
	Container string `yaml:"container"`
}

// WorkerConfig contains the synthesis worker process settings.
type WorkerConfig struct {
	Command     string   `yaml:"command"`
	Script      string   `yaml:"script"`
	SearchPaths []string `yaml:"search_paths"`

	StartupTimeout  time.Duration `yaml:"startup_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Voice string  `yaml:"voice"`
	Speed float64 `yaml:"speed"`
	Pitch float64 `yaml:"pitch"`
}

// CacheConfig contains the segment cache settings.
type CacheConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Dir              string `yaml:"dir"`
	MemoryMB         int    `yaml:"memory_mb"`
	DiskMB           int    `yaml:"disk_mb"`
	CompressionLevel int    `yaml:"compression_level"`
}

// HistoryConfig controls the job history database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

const (
	ContainerRaw = "raw"
	ContainerWAV = "wav"

	NormalizerRegex    = "regex"
	NormalizerMarkdown = "markdown"

	DefaultMaxSegmentLength = 1000
	DefaultSampleRate       = 22050
	DefaultWorkerScript     = "tts_server.py"
)

// DefaultSearchPaths lists where the worker script is looked for, in
// order. ${exe} is the directory of the running binary, ${cwd} the working
// directory.
var DefaultSearchPaths = []string{
	"${exe}/../src/" + DefaultWorkerScript,
	"${exe}/src/" + DefaultWorkerScript,
	"${cwd}/src/" + DefaultWorkerScript,
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		Volume:     1.0,

		MaxSegmentLength: DefaultMaxSegmentLength,
		SegmentPlayback:  true,
		Normalizer:       NormalizerRegex,

		Output:  OutputConfig{Container: ContainerRaw},
		Worker:  DefaultWorkerConfig(),
		Cache:   DefaultCacheConfig(),
		History: HistoryConfig{Enabled: true},
	}
}

// DefaultWorkerConfig returns default worker process settings.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Command:         "python3",
		SearchPaths:     slices.Clone(DefaultSearchPaths),
		StartupTimeout:  5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ReadTimeout:     5 * time.Second,
		ShutdownTimeout: time.Second,
		Speed:           1.0,
		Pitch:           1.0,
	}
}

// DefaultCacheConfig returns default segment cache settings.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:          false,
		MemoryMB:         32,
		DiskMB:           256,
		CompressionLevel: 3,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Volume < 0.0 || c.Volume > 2.0 {
		return fmt.Errorf("%w: volume must be between 0.0 and 2.0, got %f", ErrInvalidConfig, c.Volume)
	}

	validSampleRates := []int{8000, 16000, 22050, 24000, 44100, 48000}
	if !slices.Contains(validSampleRates, c.SampleRate) {
		return fmt.Errorf("%w: sample rate %d must be one of %v", ErrInvalidConfig, c.SampleRate, validSampleRates)
	}

	if c.MaxSegmentLength < 1 {
		return fmt.Errorf("%w: max_segment_length must be positive, got %d", ErrInvalidConfig, c.MaxSegmentLength)
	}

	c.Normalizer = strings.ToLower(c.Normalizer)
	if c.Normalizer != NormalizerRegex && c.Normalizer != NormalizerMarkdown {
		return fmt.Errorf("%w: normalizer %q must be %q or %q", ErrInvalidConfig, c.Normalizer, NormalizerRegex, NormalizerMarkdown)
	}

	c.Output.Container = strings.ToLower(c.Output.Container)
	if c.Output.Container != ContainerRaw && c.Output.Container != ContainerWAV {
		return fmt.Errorf("%w: output container %q must be %q or %q", ErrInvalidConfig, c.Output.Container, ContainerRaw, ContainerWAV)
	}

	if err := c.Worker.Validate(); err != nil {
		return fmt.Errorf("worker config: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	return nil
}

// Validate checks if the worker configuration is valid.
func (c *WorkerConfig) Validate() error {
	if c.Script == "" && len(c.SearchPaths) == 0 {
		return fmt.Errorf("%w: either script or search_paths must be set", ErrInvalidConfig)
	}

	timeouts := map[string]time.Duration{
		"startup_timeout":  c.StartupTimeout,
		"write_timeout":    c.WriteTimeout,
		"read_timeout":     c.ReadTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, d)
		}
	}

	if c.Speed < MinSpeed || c.Speed > MaxSpeed {
		return fmt.Errorf("%w: speed must be between %.1f and %.1f, got %f", ErrInvalidConfig, MinSpeed, MaxSpeed, c.Speed)
	}
	if c.Pitch < MinPitch || c.Pitch > MaxPitch {
		return fmt.Errorf("%w: pitch must be between %.1f and %.1f, got %f", ErrInvalidConfig, MinPitch, MaxPitch, c.Pitch)
	}

	return nil
}

// Validate checks if the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.MemoryMB < 1 {
		return fmt.Errorf("%w: memory_mb must be at least 1, got %d", ErrInvalidConfig, c.MemoryMB)
	}
	if c.DiskMB < 0 {
		return fmt.Errorf("%w: disk_mb cannot be negative, got %d", ErrInvalidConfig, c.DiskMB)
	}
	if c.CompressionLevel < 1 || c.CompressionLevel > 22 {
		return fmt.Errorf("%w: compression_level must be between 1 and 22, got %d", ErrInvalidConfig, c.CompressionLevel)
	}
	return nil
}

// Settings returns the voice settings configured for the worker.
func (c *WorkerConfig) Settings() VoiceSettings {
	return VoiceSettings{Voice: c.Voice, Speed: c.Speed, Pitch: c.Pitch}
}
