package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsbridge/tts/worker"
)

var workerCmd = &cobra.Command{
	Use:    "worker [SCRIPT]",
	Short:  "Run the built-in tone worker on stdin and stdout",
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	RunE: func(*cobra.Command, []string) error {
		engine := worker.NewToneEngine(viper.GetInt("sample_rate"))
		return worker.Serve(os.Stdin, os.Stdout, engine)
	},
}
