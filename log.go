package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/ttsbridge/utils"
)

// logConfig is read from the environment before anything else runs.
type logConfig struct {
	Debug  bool   `env:"TTSBRIDGE_DEBUG"`
	File   string `env:"TTSBRIDGE_LOG_FILE"`
	Format string `env:"TTSBRIDGE_LOG_FORMAT" envDefault:"text"`
}

func logFormatter(format string) (log.Formatter, error) {
	switch format {
	case "", "text":
		return log.TextFormatter, nil
	case "json":
		return log.JSONFormatter, nil
	case "logfmt":
		return log.LogfmtFormatter, nil
	default:
		return 0, fmt.Errorf("unknown log format %q: use text, json or logfmt", format)
	}
}

// setupLog configures the default logger. Logs go to stderr at warn level,
// or to TTSBRIDGE_LOG_FILE at debug level.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}

	formatter, err := logFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}
	log.SetFormatter(formatter)
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.File == "" {
		return func() error { return nil }, nil
	}

	path := utils.ExpandPath(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	log.SetReportTimestamp(true)
	return f.Close, nil
}
