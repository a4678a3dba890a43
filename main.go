// Package main provides the entry point for the ttsbridge CLI application.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsbridge/tts"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "ttsbridge",
		Short: "Turn text into speech with a local synthesis worker",
		Long: paragraph(
			fmt.Sprintf("\nTurn text and markdown into %s through a local synthesis worker.", keyword("speech")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
	}
)

func validateOptions(cmd *cobra.Command) error {
	if cmd.Flags().Changed("config") {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
		log.Debug("Using configuration file", "path", configFile)
	}

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	speed := viper.GetFloat64("worker.speed")
	if speed < tts.MinSpeed || speed > tts.MaxSpeed {
		return fmt.Errorf("speed must be between %.1f and %.1f, got %.2f", tts.MinSpeed, tts.MaxSpeed, speed)
	}
	pitch := viper.GetFloat64("worker.pitch")
	if pitch < tts.MinPitch || pitch > tts.MaxPitch {
		return fmt.Errorf("pitch must be between %.1f and %.1f, got %.2f", tts.MinPitch, tts.MaxPitch, pitch)
	}
	return nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tts.SetDefaults()
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	flags.Float64("speed", tts.DefaultWorkerConfig().Speed, "speech rate multiplier (0.5-2.0)")
	flags.Float64("pitch", tts.DefaultWorkerConfig().Pitch, "pitch multiplier (0.5-2.0)")
	flags.String("voice", "", "voice name passed to the worker")
	flags.Bool("tone", false, "use the built-in tone worker instead of a worker script")

	// Config bindings
	_ = viper.BindPFlag("worker.speed", flags.Lookup("speed"))
	_ = viper.BindPFlag("worker.pitch", flags.Lookup("pitch"))
	_ = viper.BindPFlag("worker.voice", flags.Lookup("voice"))
	_ = viper.BindPFlag("tone", flags.Lookup("tone"))

	rootCmd.AddCommand(saveCmd, sayCmd, batchCmd, watchCmd, historyCmd, configCmd, manCmd, workerCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "ttsbridge")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "ttsbridge")}, dirs...)
	}

	if c := os.Getenv("TTSBRIDGE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("ttsbridge")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("ttsbridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		configFile = used
		return
	}

	configFile = filepath.Join(dirs[0], "ttsbridge.yml")
}
