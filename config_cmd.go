package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfig = `# path to the voice model passed to the worker on init
model_path: ""
# sample rate of the worker output, in Hz
sample_rate: 22050
# playback volume (0.0 to 2.0)
volume: 1.0
# longest text segment sent to the worker in one request, in characters
max_segment_length: 1000
# split text into segments for playback too
segment_playback: true
# text cleanup: regex or markdown
normalizer: "regex"

output:
  # container for saved audio: raw (PCM16LE) or wav
  container: "raw"

worker:
  # interpreter command line used to run the worker script
  command: "python3"
  # explicit worker script; when empty search_paths is probed
  # script: "~/ttsbridge/src/tts_server.py"
  startup_timeout: "5s"
  write_timeout: "5s"
  read_timeout: "5s"
  shutdown_timeout: "1s"
  # voice: ""
  speed: 1.0
  pitch: 1.0

cache:
  # reuse audio for segments that were synthesized before
  enabled: false
  # dir: "~/.cache/ttsbridge/audio"
  memory_mb: 32
  disk_mb: 256
  compression_level: 3

history:
  # record every job in a local database
  enabled: true
  # path: "~/.local/share/ttsbridge/history.db"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Hidden:  false,
	Short:   "Edit the ttsbridge config file",
	Long:    paragraph(fmt.Sprintf("\n%s the ttsbridge config file. We’ll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("ttsbridge config\nttsbridge config --config path/to/config.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("ttsbridge", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("unable to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func ensureConfigFile() error {
	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
