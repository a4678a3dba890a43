package worker

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-shellwords"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/utils"
)

// Config contains the settings of a worker process manager.
type Config struct {
	// Interpreter is the argv prefix used to run the script, e.g.
	// ["python3"]. When empty the script is executed directly.
	Interpreter []string

	// Script is an explicit worker path. When empty, SearchPaths is probed.
	Script      string
	SearchPaths []string

	// Env is appended to the parent environment.
	Env []string

	StartupTimeout  time.Duration
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration

	Settings tts.VoiceSettings

	Logger *log.Logger
}

// ConfigFrom converts the user-facing worker configuration. The command
// line is split with shell quoting rules.
func ConfigFrom(wc tts.WorkerConfig) (Config, error) {
	interpreter, err := shellwords.Parse(wc.Command)
	if err != nil {
		return Config{}, fmt.Errorf("parse worker command %q: %w", wc.Command, err)
	}

	script := wc.Script
	if script != "" {
		script = utils.ExpandPath(script)
	}

	searchPaths := make([]string, 0, len(wc.SearchPaths))
	for _, p := range wc.SearchPaths {
		searchPaths = append(searchPaths, utils.ExpandHome(p))
	}

	return Config{
		Interpreter:     interpreter,
		Script:          script,
		SearchPaths:     searchPaths,
		StartupTimeout:  wc.StartupTimeout,
		WriteTimeout:    wc.WriteTimeout,
		ReadTimeout:     wc.ReadTimeout,
		ShutdownTimeout: wc.ShutdownTimeout,
		Settings: tts.VoiceSettings{
			Voice: wc.Voice,
			Speed: tts.ClampSpeed(wc.Speed),
			Pitch: tts.ClampPitch(wc.Pitch),
		},
	}, nil
}

func (c *Config) setDefaults() {
	defaults := tts.DefaultWorkerConfig()
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = defaults.StartupTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaults.ReadTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.Script == "" && len(c.SearchPaths) == 0 {
		c.SearchPaths = defaults.SearchPaths
	}
	if c.Settings.Speed == 0 {
		c.Settings.Speed = 1.0
	}
	if c.Settings.Pitch == 0 {
		c.Settings.Pitch = 1.0
	}
	if c.Logger == nil {
		c.Logger = log.WithPrefix("worker")
	}
}
