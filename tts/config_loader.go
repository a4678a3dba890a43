package tts

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoadConfigFromViper loads the bridge configuration from Viper.
func LoadConfigFromViper() (Config, error) {
	cfg := DefaultConfig()

	if viper.IsSet("model_path") {
		cfg.ModelPath = viper.GetString("model_path")
	}

	// Audio settings
	if viper.IsSet("sample_rate") {
		cfg.SampleRate = viper.GetInt("sample_rate")
	}
	if viper.IsSet("volume") {
		cfg.Volume = viper.GetFloat64("volume")
	}

	// Text pipeline settings
	if viper.IsSet("max_segment_length") {
		cfg.MaxSegmentLength = viper.GetInt("max_segment_length")
	}
	if viper.IsSet("segment_playback") {
		cfg.SegmentPlayback = viper.GetBool("segment_playback")
	}
	if viper.IsSet("normalizer") {
		cfg.Normalizer = viper.GetString("normalizer")
	}
	if viper.IsSet("output.container") {
		cfg.Output.Container = viper.GetString("output.container")
	}

	cfg.Worker = loadWorkerConfig()
	cfg.Cache = loadCacheConfig()

	if viper.IsSet("history.enabled") {
		cfg.History.Enabled = viper.GetBool("history.enabled")
	}
	if viper.IsSet("history.path") {
		cfg.History.Path = viper.GetString("history.path")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadWorkerConfig loads worker process settings from Viper.
func loadWorkerConfig() WorkerConfig {
	cfg := DefaultWorkerConfig()

	if viper.IsSet("worker.command") {
		cfg.Command = viper.GetString("worker.command")
	}
	if viper.IsSet("worker.script") {
		cfg.Script = viper.GetString("worker.script")
	}
	if viper.IsSet("worker.search_paths") {
		cfg.SearchPaths = viper.GetStringSlice("worker.search_paths")
	}

	durations := map[string]*time.Duration{
		"worker.startup_timeout":  &cfg.StartupTimeout,
		"worker.write_timeout":    &cfg.WriteTimeout,
		"worker.read_timeout":     &cfg.ReadTimeout,
		"worker.shutdown_timeout": &cfg.ShutdownTimeout,
	}
	for key, dst := range durations {
		if !viper.IsSet(key) {
			continue
		}
		if d, err := time.ParseDuration(viper.GetString(key)); err == nil {
			*dst = d
		}
	}

	if viper.IsSet("worker.voice") {
		cfg.Voice = viper.GetString("worker.voice")
	}
	if viper.IsSet("worker.speed") {
		cfg.Speed = viper.GetFloat64("worker.speed")
	}
	if viper.IsSet("worker.pitch") {
		cfg.Pitch = viper.GetFloat64("worker.pitch")
	}

	return cfg
}

// loadCacheConfig loads segment cache settings from Viper.
func loadCacheConfig() CacheConfig {
	cfg := DefaultCacheConfig()

	if viper.IsSet("cache.enabled") {
		cfg.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.memory_mb") {
		cfg.MemoryMB = viper.GetInt("cache.memory_mb")
	}
	if viper.IsSet("cache.disk_mb") {
		cfg.DiskMB = viper.GetInt("cache.disk_mb")
	}
	if viper.IsSet("cache.compression_level") {
		cfg.CompressionLevel = viper.GetInt("cache.compression_level")
	}

	return cfg
}

// SetDefaults sets default values in Viper for the bridge configuration.
func SetDefaults() {
	defaults := DefaultConfig()

	viper.SetDefault("sample_rate", defaults.SampleRate)
	viper.SetDefault("volume", defaults.Volume)
	viper.SetDefault("max_segment_length", defaults.MaxSegmentLength)
	viper.SetDefault("segment_playback", defaults.SegmentPlayback)
	viper.SetDefault("normalizer", defaults.Normalizer)
	viper.SetDefault("output.container", defaults.Output.Container)

	// Worker defaults
	viper.SetDefault("worker.command", defaults.Worker.Command)
	viper.SetDefault("worker.search_paths", defaults.Worker.SearchPaths)
	viper.SetDefault("worker.startup_timeout", defaults.Worker.StartupTimeout.String())
	viper.SetDefault("worker.write_timeout", defaults.Worker.WriteTimeout.String())
	viper.SetDefault("worker.read_timeout", defaults.Worker.ReadTimeout.String())
	viper.SetDefault("worker.shutdown_timeout", defaults.Worker.ShutdownTimeout.String())
	viper.SetDefault("worker.speed", defaults.Worker.Speed)
	viper.SetDefault("worker.pitch", defaults.Worker.Pitch)

	// Cache defaults
	viper.SetDefault("cache.enabled", defaults.Cache.Enabled)
	viper.SetDefault("cache.memory_mb", defaults.Cache.MemoryMB)
	viper.SetDefault("cache.disk_mb", defaults.Cache.DiskMB)
	viper.SetDefault("cache.compression_level", defaults.Cache.CompressionLevel)

	viper.SetDefault("history.enabled", defaults.History.Enabled)
}
