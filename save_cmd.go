package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/ttsbridge/tts"
	"github.com/dgnsrekt/ttsbridge/tts/bridge"
)

var (
	saveOutput    string
	saveWAV       bool
	saveClipboard bool

	saveCmd = &cobra.Command{
		Use:   "save [TEXT|FILE|-]",
		Short: "Synthesize text into an audio file",
		Long: paragraph(fmt.Sprintf("\n%s text to raw 16-bit PCM, or WAV with --wav. Text comes from the arguments, a file, stdin or the clipboard.",
			keyword("Synthesize"))),
		Example: paragraph("ttsbridge save \"Hello world.\" -o hello.pcm\nttsbridge save README.md --wav -o readme.wav\necho hi | ttsbridge save -o hi.pcm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyCommandFlags(cmd)
			if saveWAV {
				viper.Set("output.container", tts.ContainerWAV)
			}

			text, label, err := defaultInputSource().read(args, saveClipboard)
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck

			var written int64
			err = s.run("save", label, saveOutput, func(b *bridge.Bridge) error {
				before := b.Stats().Bytes
				if err := b.TextToSpeech(text, saveOutput); err != nil {
					return err
				}
				written = b.Stats().Bytes - before
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s to %s\n", humanize.Bytes(uint64(written)), keyword(saveOutput)) //nolint:gosec
			return nil
		},
	}
)

// applyCommandFlags copies per-command flags into the configuration.
func applyCommandFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("model"); f != nil && f.Changed {
		viper.Set("model_path", f.Value.String())
	}
}

func init() {
	saveCmd.Flags().StringVarP(&saveOutput, "output", "o", "", "output file")
	saveCmd.Flags().BoolVar(&saveWAV, "wav", false, "write a WAV file instead of raw PCM")
	saveCmd.Flags().String("model", "", "voice model path")
	saveCmd.Flags().BoolVar(&saveClipboard, "clipboard", false, "read text from the clipboard")
	_ = saveCmd.MarkFlagRequired("output")
}
