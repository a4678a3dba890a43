package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsbridge/internal/history"
	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/bridge"
	"github.com/dgnsrekt/ttsbridge/utils"
)

const previewWidth = 60

// loadConfig reads the bridge configuration and applies CLI-only switches.
func loadConfig() (tts.Config, error) {
	cfg, err := tts.LoadConfigFromViper()
	if err != nil {
		return cfg, err
	}

	if viper.GetBool("tone") {
		exe, err := os.Executable()
		if err != nil {
			return cfg, fmt.Errorf("unable to locate executable: %w", err)
		}
		// The script argument is required by discovery; the worker command ignores it.
		cfg.Worker.Command = fmt.Sprintf("%q worker", exe)
		cfg.Worker.Script = exe
	}
	return cfg, nil
}

// session is one bridge, initialized and ready, plus the job history.
type session struct {
	cfg    tts.Config
	bridge *bridge.Bridge
	logger *log.Logger
}

func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	b, err := bridge.New(cfg)
	if err != nil {
		return nil, err
	}

	modelPath := utils.ExpandPath(cfg.ModelPath)
	if err := b.Initialize(modelPath); err != nil {
		_ = b.Close()
		return nil, err
	}

	return &session{cfg: cfg, bridge: b, logger: log.WithPrefix("cli")}, nil
}

// run executes fn against the bridge and records the outcome as a job.
func (s *session) run(kind, input, output string, fn func(b *bridge.Bridge) error) error {
	before := s.bridge.Stats()
	start := time.Now()

	err := fn(s.bridge)

	after := s.bridge.Stats()
	job := history.Job{
		Time:     start,
		Kind:     kind,
		Input:    input,
		Output:   output,
		Segments: after.Segments - before.Segments,
		Bytes:    after.Bytes - before.Bytes,
		Duration: time.Since(start),
	}
	if err != nil {
		job.Err = err.Error()
	}
	s.record(job)
	return err
}

func (s *session) record(job history.Job) {
	if !s.cfg.History.Enabled {
		return
	}

	store, err := openHistory(s.cfg.History)
	if err != nil {
		s.logger.Warn("history unavailable", "err", err)
		return
	}
	defer store.Close() //nolint:errcheck

	if _, err := store.Record(job); err != nil {
		s.logger.Warn("could not record job", "err", err)
	}
}

func (s *session) Close() error {
	return s.bridge.Close()
}

func openHistory(cfg tts.HistoryConfig) (*history.Store, error) {
	path := utils.ExpandPath(cfg.Path)
	if path == "" {
		var err error
		if path, err = history.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}

// preview shortens text to one line for job records.
func preview(text string) string {
	return truncate.StringWithTail(strings.Join(strings.Fields(text), " "), previewWidth, "…")
}
